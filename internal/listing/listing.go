// Package listing owns a loaded dataset and turns filter selections into
// rendered cards.
package listing

import (
	"path"
	"ruesite/internal/domain/config"
	"ruesite/internal/domain/content"
	"ruesite/internal/filter"
	"ruesite/internal/render"
	"ruesite/internal/resolve"
	"strconv"
)

// Listing is built once per loaded dataset and never mutated afterwards, so
// it can be shared by concurrent requests.
type Listing struct {
	table    content.Table
	registry *content.Registry
	articles []content.Article
	resolver *resolve.Resolver
	labels   config.Labels
	links    render.Links
}

// New normalizes the options before anything else reads them.
func New(ds content.Dataset, site config.SiteConfig) *Listing {
	table := ds.Options.Normalize()
	registry := content.NewRegistry(ds.Places)
	return &Listing{
		table:    table,
		registry: registry,
		articles: ds.Articles,
		resolver: resolve.New(table.Places, registry),
		labels:   site.Labels,
		links:    render.Links{BasePath: site.Base()},
	}
}

func (l *Listing) Table() content.Table { return l.table }

func (l *Listing) Articles() []content.Article { return l.articles }

func (l *Listing) Links() render.Links { return l.links }

// WithLinks returns a copy of the listing whose cards use links.
func (l *Listing) WithLinks(links render.Links) *Listing {
	c := *l
	c.links = links
	return &c
}

func (l *Listing) Registry() *content.Registry { return l.registry }

// Apply runs the filter and renders the matching cards.
func (l *Listing) Apply(sel filter.Selection) []render.Card {
	return l.Cards(filter.Apply(l.articles, sel))
}

func (l *Listing) Cards(articles []content.Article) []render.Card {
	return render.Cards(articles, l, render.CardOptions{
		Untitled: l.labels.Untitled,
		Links:    l.links,
	})
}

// ResolvePlace is recomputed on every call; the dataset is immutable so
// there is nothing to invalidate.
func (l *Listing) ResolvePlace(a content.Article) content.Reference {
	return l.resolver.Resolve(a)
}

func (l *Listing) Label(c content.Category, v content.Value) string {
	return l.table.Label(c, v)
}

// AtPlace returns the articles whose resolved place links to param, and the
// place name.
func (l *Listing) AtPlace(param string) (string, []content.Article) {
	var (
		name string
		out  []content.Article
	)
	for _, a := range l.articles {
		ref := l.resolver.Resolve(a)
		if ref.Name == "" || ref.LinkParam != param {
			continue
		}
		if name == "" {
			name = ref.Name
		}
		out = append(out, a)
	}
	return name, out
}

// MapParams lists the link parameters of every card place link, in
// document order, repeats included.
func (l *Listing) MapParams() []string {
	var out []string
	for _, a := range l.articles {
		if ref := l.resolver.Resolve(a); ref.Name != "" {
			out = append(out, ref.LinkParam)
		}
	}
	return out
}

// Files lists the article files the cards link to, in document order.
func (l *Listing) Files() []string {
	var out []string
	for _, a := range l.articles {
		if a.File.Truthy() {
			out = append(out, a.File.String())
		}
	}
	return out
}

// ArticleTitle picks the detail page title of file: the first heading,
// then the listing title, then the file name.
func (l *Listing) ArticleTitle(file string, headings []render.Heading) string {
	if len(headings) > 0 && headings[0].Text != "" {
		return headings[0].Text
	}
	if l != nil {
		if a, ok := l.FindByFile(file); ok && a.Title.Truthy() {
			return a.Title.String()
		}
	}
	return path.Base(file)
}

// FindByFile returns the first article pointing at file.
func (l *Listing) FindByFile(file string) (content.Article, bool) {
	for _, a := range l.articles {
		if a.File.Truthy() && a.File.String() == file {
			return a, true
		}
	}
	return content.Article{}, false
}

// Controls builds the four filter selects, marking the current selection.
func (l *Listing) Controls(sel filter.Selection) []render.Control {
	controls := make([]render.Control, 0, len(content.Categories))
	for _, c := range content.Categories {
		var opts []render.ControlOption
		if c == content.CategoryPlace {
			opts = l.placeOptions()
		} else {
			opts = labelOptions(l.table.Labels(c))
		}
		all := render.ControlOption{Value: "", Text: l.wildcard(c)}
		opts = append([]render.ControlOption{all}, opts...)

		current := sel.Get(c)
		for i := range opts {
			opts[i].Selected = opts[i].Value == current
		}
		controls = append(controls, render.Control{Name: string(c), Options: opts})
	}
	return controls
}

func (l *Listing) placeOptions() []render.ControlOption {
	out := make([]render.ControlOption, 0, len(l.table.Places))
	for _, p := range l.table.Places {
		text := p.Name
		if text == "" {
			text = p.ID
		}
		if text == "" {
			text = l.labels.PlacePrefix + " " + p.Index
		}
		out = append(out, render.ControlOption{Value: p.Index, Text: text})
	}
	return out
}

func labelOptions(items []content.Value) []render.ControlOption {
	out := make([]render.ControlOption, 0, len(items))
	for i, it := range items {
		if it.Kind() == content.KindObject {
			var rec content.PlaceRecord
			_ = it.Decode(&rec)
			out = append(out, render.ControlOption{
				Value: rec.ID.Or(content.Int(i)).String(),
				Text:  rec.Nom.Or(rec.Name).Or(it).String(),
			})
			continue
		}
		out = append(out, render.ControlOption{Value: strconv.Itoa(i), Text: it.String()})
	}
	return out
}

func (l *Listing) wildcard(c content.Category) string {
	switch c {
	case content.CategoryPlace:
		return l.labels.AllPlaces
	case content.CategoryPeriod:
		return l.labels.AllPeriods
	case content.CategoryFamily:
		return l.labels.AllFamilies
	default:
		return l.labels.AllThemes
	}
}
