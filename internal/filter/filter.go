package filter

import (
	"net/url"
	"ruesite/internal/domain/content"
	"strings"
)

// Selection holds at most one chosen value per category. An empty value
// matches every article.
type Selection struct {
	Place  string `json:"rue"`
	Period string `json:"periode"`
	Family string `json:"famille"`
	Theme  string `json:"theme"`
}

// FromQuery reads a selection from the rue, periode, famille and theme
// query parameters.
func FromQuery(q url.Values) Selection {
	return Selection{
		Place:  q.Get(string(content.CategoryPlace)),
		Period: q.Get(string(content.CategoryPeriod)),
		Family: q.Get(string(content.CategoryFamily)),
		Theme:  q.Get(string(content.CategoryTheme)),
	}
}

// Query is the inverse of FromQuery; wildcard categories are left out.
func (s Selection) Query() url.Values {
	q := url.Values{}
	for _, c := range content.Categories {
		if v := s.Get(c); v != "" {
			q.Set(string(c), v)
		}
	}
	return q
}

func (s Selection) Get(c content.Category) string {
	switch c {
	case content.CategoryPlace:
		return s.Place
	case content.CategoryPeriod:
		return s.Period
	case content.CategoryFamily:
		return s.Family
	case content.CategoryTheme:
		return s.Theme
	}
	return ""
}

func (s Selection) IsWildcard() bool {
	return s == Selection{}
}

func (s Selection) String() string {
	var parts []string
	for _, c := range content.Categories {
		if v := s.Get(c); v != "" {
			parts = append(parts, string(c)+"="+v)
		}
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// Match reports whether the article passes every active category. Values
// are compared as text, so 3 and "3" are equal.
func (s Selection) Match(a content.Article) bool {
	for _, c := range content.Categories {
		want := s.Get(c)
		if want == "" {
			continue
		}
		if a.Field(c).String() != want {
			return false
		}
	}
	return true
}

// Apply returns the matching articles in input order. The input is not
// modified.
func Apply(articles []content.Article, s Selection) []content.Article {
	out := make([]content.Article, 0, len(articles))
	for _, a := range articles {
		if s.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
