// Package resolve maps an article's place reference to a display name and a
// map link parameter.
//
// Producers encoded the same reference three ways: as a position in the
// options "rues" list, as a place id, or as a place name. The Resolver tries
// each reading in a fixed order and stops at the first match. Whenever an id
// can be derived, the places registry is preferred over the options entry.
package resolve

import (
	"ruesite/internal/domain/content"
)

// step is one reading of a reference. ok is false when the reading does not
// apply or finds nothing, in which case the next step runs.
type step func(r *Resolver, ref content.Value) (content.Reference, bool)

var steps = []step{
	(*Resolver).byPosition,
	(*Resolver).byRegistryID,
	(*Resolver).byOptionEntry,
	(*Resolver).byRegistryName,
}

type Resolver struct {
	places   []content.Place
	registry *content.Registry
}

// New returns a Resolver over the normalized places and an optional registry.
func New(places []content.Place, registry *content.Registry) *Resolver {
	if registry == nil {
		registry = content.NewRegistry(nil)
	}
	return &Resolver{places: places, registry: registry}
}

// Resolve never fails: an unmatched or missing reference yields the zero
// Reference.
func (r *Resolver) Resolve(a content.Article) content.Reference {
	return r.ResolveValue(a.RueID)
}

func (r *Resolver) ResolveValue(ref content.Value) content.Reference {
	if ref.IsNil() {
		return content.Reference{}
	}
	for _, s := range steps {
		if out, ok := s(r, ref); ok {
			return out
		}
	}
	return content.Reference{}
}

// byPosition reads numbers and digit strings as an index into the places.
// An index with no entry falls through to the string readings.
func (r *Resolver) byPosition(ref content.Value) (content.Reference, bool) {
	if !ref.Digits() {
		return content.Reference{}, false
	}
	i, ok := ref.Position()
	if !ok || i >= len(r.places) {
		return content.Reference{}, false
	}
	return r.fromPlace(r.places[i]), true
}

func (r *Resolver) byRegistryID(ref content.Value) (content.Reference, bool) {
	rid := ref.String()
	rec, ok := r.registry.Lookup(rid)
	if !ok {
		return content.Reference{}, false
	}
	return content.Reference{Name: rec.DisplayName(), LinkParam: rid}, true
}

func (r *Resolver) byOptionEntry(ref content.Value) (content.Reference, bool) {
	rid := ref.String()
	for _, p := range r.places {
		if p.ID == rid || p.Name == rid {
			return r.fromPlace(p), true
		}
	}
	return content.Reference{}, false
}

func (r *Resolver) byRegistryName(ref content.Value) (content.Reference, bool) {
	rec, ok := r.registry.FindByName(ref.String())
	if !ok {
		return content.Reference{}, false
	}
	link := ""
	if !rec.ID.IsNil() {
		link = rec.ID.String()
	}
	return content.Reference{Name: rec.DisplayName(), LinkParam: link}, true
}

// fromPlace prefers the registry record carrying the place's id and falls
// back to the options entry, linked by its id. Entries without an id of
// their own carry their position as id.
func (r *Resolver) fromPlace(p content.Place) content.Reference {
	if rec, ok := r.registry.Lookup(p.ID); ok {
		name := rec.DisplayName()
		if name == "" {
			name = p.Name
		}
		return content.Reference{Name: name, LinkParam: rec.ID.String()}
	}
	name := p.Name
	if name == "" {
		name = p.ID
	}
	return content.Reference{Name: name, LinkParam: p.ID}
}
