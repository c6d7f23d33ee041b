package content

import "strconv"

// OptionSet is the options resource. Each list is kept raw because its
// entries may be strings, numbers or objects.
type OptionSet struct {
	Rues     Value `json:"rues"`
	Periodes Value `json:"periodes"`
	Familles Value `json:"familles"`
	Themes   Value `json:"themes"`
}

// Place is one normalized "rues" entry.
type Place struct {
	Index string `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// Table is the normalized option set shared by filtering, resolution and
// rendering.
type Table struct {
	Places   []Place
	Periods  []Value
	Families []Value
	Themes   []Value
}

// Normalize turns the option set into a Table. Non-array lists become empty;
// no "rues" entry is dropped or reordered.
func (o OptionSet) Normalize() Table {
	rues := o.Rues.Items()
	places := make([]Place, 0, len(rues))
	for i, r := range rues {
		places = append(places, normalizePlace(i, r))
	}
	return Table{
		Places:   places,
		Periods:  o.Periodes.Items(),
		Families: o.Familles.Items(),
		Themes:   o.Themes.Items(),
	}
}

func normalizePlace(i int, r Value) Place {
	idx := Int(i)
	switch r.Kind() {
	case KindObject, KindArray:
		var rec PlaceRecord
		if r.Kind() == KindObject {
			_ = r.Decode(&rec)
		}
		return Place{
			Index: strconv.Itoa(i),
			ID:    rec.ID.Or(idx).String(),
			Name:  rec.Nom.Or(rec.Name).Or(String("")).String(),
		}
	}
	return Place{
		Index: strconv.Itoa(i),
		ID:    idx.String(),
		Name:  r.Or(String("")).String(),
	}
}

// Labels returns the label list of a non-place category.
func (t Table) Labels(c Category) []Value {
	switch c {
	case CategoryPeriod:
		return t.Periods
	case CategoryFamily:
		return t.Families
	case CategoryTheme:
		return t.Themes
	}
	return nil
}

// Label looks the article value up as a position in the category's list.
// A value that is not a valid position, or that points at a falsy entry,
// yields an empty label.
func (t Table) Label(c Category, v Value) string {
	if v.IsNil() {
		return ""
	}
	labels := t.Labels(c)
	i, ok := v.Index(len(labels))
	if !ok || !labels[i].Truthy() {
		return ""
	}
	return labels[i].String()
}
