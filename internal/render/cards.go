package render

import (
	"ruesite/internal/domain/content"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

type Media struct {
	Kind MediaKind `json:"kind"`
	Src  string    `json:"src"`
	Alt  string    `json:"alt,omitempty"`
}

type PlaceLink struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// Card describes one article of the listing. Optional parts are nil or
// empty when the article has nothing to show for them.
type Card struct {
	Title       string     `json:"title"`
	Media       *Media     `json:"media,omitempty"`
	Place       *PlaceLink `json:"place,omitempty"`
	Period      string     `json:"periode,omitempty"`
	Family      string     `json:"famille,omitempty"`
	Theme       string     `json:"theme,omitempty"`
	ArticleHref string     `json:"articleHref,omitempty"`
}

func (c Card) HasMeta() bool {
	return c.Place != nil || c.Period != "" || c.Family != "" || c.Theme != ""
}

// CardContext supplies what a card needs beyond the article itself.
type CardContext interface {
	ResolvePlace(a content.Article) content.Reference
	Label(c content.Category, v content.Value) string
}

type CardOptions struct {
	Untitled string
	Links    Links
}

// Cards builds one card per article, in order.
func Cards(articles []content.Article, ctx CardContext, opt CardOptions) []Card {
	cards := make([]Card, 0, len(articles))
	for _, a := range articles {
		cards = append(cards, buildCard(a, ctx, opt))
	}
	return cards
}

func buildCard(a content.Article, ctx CardContext, opt CardOptions) Card {
	c := Card{Title: opt.Untitled}
	if a.Title.Truthy() {
		c.Title = a.Title.String()
	}

	switch {
	case a.Image.Truthy():
		alt := ""
		if a.Title.Truthy() {
			alt = a.Title.String()
		}
		c.Media = &Media{Kind: MediaImage, Src: a.Image.String(), Alt: alt}
	case a.Video.Truthy():
		c.Media = &Media{Kind: MediaVideo, Src: a.Video.String()}
	}

	if ref := ctx.ResolvePlace(a); ref.Name != "" {
		c.Place = &PlaceLink{Name: ref.Name, Href: opt.Links.Map(ref.LinkParam)}
	}
	c.Period = ctx.Label(content.CategoryPeriod, a.Period)
	c.Family = ctx.Label(content.CategoryFamily, a.Family)
	c.Theme = ctx.Label(content.CategoryTheme, a.Theme)

	if a.File.Truthy() {
		c.ArticleHref = opt.Links.Article(a.File.String())
	}
	return c
}
