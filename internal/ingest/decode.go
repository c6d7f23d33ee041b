package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"ruesite/internal/domain/content"
)

type Warning struct {
	Resource string
	Msg      string
}

func (w Warning) String() string {
	return w.Resource + ": " + w.Msg
}

// DecodeOptions accepts any JSON document. Anything but an object yields an
// empty option set.
func DecodeOptions(name string, data []byte) (content.OptionSet, []Warning, error) {
	var root content.Value
	if err := json.Unmarshal(data, &root); err != nil {
		return content.OptionSet{}, nil, err
	}
	if root.Kind() != content.KindObject {
		return content.OptionSet{}, []Warning{{Resource: name, Msg: "not an object, using empty options"}}, nil
	}
	var opts content.OptionSet
	if err := root.Decode(&opts); err != nil {
		return content.OptionSet{}, nil, err
	}

	var warns []Warning
	lists := []struct {
		key string
		v   content.Value
	}{
		{"rues", opts.Rues},
		{"periodes", opts.Periodes},
		{"familles", opts.Familles},
		{"themes", opts.Themes},
	}
	for _, l := range lists {
		if !l.v.IsNil() && l.v.Kind() != content.KindArray {
			warns = append(warns, Warning{Resource: name, Msg: l.key + " is not a list, treated as empty"})
		}
	}
	return opts, warns, nil
}

// DecodeArticles keeps every object entry of a JSON array.
func DecodeArticles(name string, data []byte) ([]content.Article, []Warning, error) {
	var root content.Value
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, nil, err
	}
	if root.Kind() != content.KindArray {
		return nil, []Warning{{Resource: name, Msg: "not a list, no articles loaded"}}, nil
	}

	var warns []Warning
	items := root.Items()
	out := make([]content.Article, 0, len(items))
	for i, it := range items {
		if it.Kind() != content.KindObject {
			warns = append(warns, Warning{Resource: name, Msg: fmt.Sprintf("entry %d is not an object, skipped", i)})
			continue
		}
		var a content.Article
		if err := it.Decode(&a); err != nil {
			warns = append(warns, Warning{Resource: name, Msg: fmt.Sprintf("entry %d: %v", i, err)})
			continue
		}
		out = append(out, a)
	}
	return out, warns, nil
}

// DecodePlaces accepts a list of records or an object whose values are
// records. Object members keep their document order.
func DecodePlaces(name string, data []byte) ([]content.PlaceRecord, []Warning, error) {
	var root content.Value
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, nil, err
	}

	var items []content.Value
	switch root.Kind() {
	case content.KindArray:
		items = root.Items()
	case content.KindObject:
		vals, err := objectValues(root.Raw())
		if err != nil {
			return nil, nil, err
		}
		items = vals
	case content.KindNull:
		return nil, nil, nil
	default:
		return nil, []Warning{{Resource: name, Msg: "neither a list nor an object, no places loaded"}}, nil
	}

	var warns []Warning
	out := make([]content.PlaceRecord, 0, len(items))
	for i, it := range items {
		if it.Kind() != content.KindObject {
			warns = append(warns, Warning{Resource: name, Msg: fmt.Sprintf("entry %d is not an object, skipped", i)})
			continue
		}
		var rec content.PlaceRecord
		if err := it.Decode(&rec); err != nil {
			warns = append(warns, Warning{Resource: name, Msg: fmt.Sprintf("entry %d: %v", i, err)})
			continue
		}
		out = append(out, rec)
	}
	return out, warns, nil
}

func objectValues(raw []byte) ([]content.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var out []content.Value
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var v content.Value
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
