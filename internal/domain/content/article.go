package content

import "strings"

// Article is one record of the articles resource. Field types differ between
// producers, so every field keeps its raw JSON kind.
type Article struct {
	Title  Value `json:"title"`
	File   Value `json:"file"`
	Image  Value `json:"image"`
	Video  Value `json:"video"`
	RueID  Value `json:"rueId"`
	Period Value `json:"periode"`
	Family Value `json:"famille"`
	Theme  Value `json:"theme"`
}

type Category string

const (
	CategoryPlace  Category = "rue"
	CategoryPeriod Category = "periode"
	CategoryFamily Category = "famille"
	CategoryTheme  Category = "theme"
)

// Categories lists the filterable categories in display order.
var Categories = []Category{CategoryPlace, CategoryPeriod, CategoryFamily, CategoryTheme}

// Field returns the article field a category filters on.
func (a Article) Field(c Category) Value {
	switch c {
	case CategoryPlace:
		return a.RueID
	case CategoryPeriod:
		return a.Period
	case CategoryFamily:
		return a.Family
	case CategoryTheme:
		return a.Theme
	}
	return Value{}
}

// PlaceRecord is an entry of the places resource, or an object entry of the
// options "rues" list.
type PlaceRecord struct {
	ID   Value `json:"id"`
	Nom  Value `json:"nom"`
	Name Value `json:"name"`
}

// DisplayName is nom, else name, else empty, skipping falsy values.
func (p PlaceRecord) DisplayName() string {
	switch {
	case p.Nom.Truthy():
		return p.Nom.String()
	case p.Name.Truthy():
		return p.Name.String()
	}
	return ""
}

// Reference is the resolved place of an article. Both fields are empty when
// nothing matched.
type Reference struct {
	Name      string `json:"name"`
	LinkParam string `json:"linkParam"`
}

func (r Reference) IsZero() bool { return r.Name == "" && r.LinkParam == "" }

// Registry is the optional places resource keyed by stringified id.
type Registry struct {
	byID    map[string]PlaceRecord
	records []PlaceRecord
}

// NewRegistry keeps every record for name search and keys the ones that
// carry an id. A later record with the same id replaces an earlier one.
func NewRegistry(records []PlaceRecord) *Registry {
	r := &Registry{
		byID:    make(map[string]PlaceRecord, len(records)),
		records: records,
	}
	for _, rec := range records {
		if rec.ID.IsNil() {
			continue
		}
		r.byID[rec.ID.String()] = rec
	}
	return r
}

func (r *Registry) Lookup(id string) (PlaceRecord, bool) {
	if r == nil {
		return PlaceRecord{}, false
	}
	rec, ok := r.byID[id]
	return rec, ok
}

// FindByName matches trimmed, case-folded names.
func (r *Registry) FindByName(name string) (PlaceRecord, bool) {
	if r == nil {
		return PlaceRecord{}, false
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, rec := range r.records {
		if strings.ToLower(strings.TrimSpace(rec.DisplayName())) == want {
			return rec, true
		}
	}
	return PlaceRecord{}, false
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Dataset is everything loaded for one page view. It is read-only once
// loaded.
type Dataset struct {
	Options  OptionSet
	Articles []Article
	Places   []PlaceRecord
	// Hash fingerprints the raw resources the dataset was decoded from.
	Hash string
}
