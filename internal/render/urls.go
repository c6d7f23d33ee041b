package render

import (
	"ruesite/internal/domain/site"
	"strings"
)

const (
	MapFile     = "carte.html"
	ArticleFile = "article.html"
)

// Links builds the outbound links of a card.
type Links struct {
	// BasePath prefixes every link; empty and "/" keep them relative.
	BasePath string
	// Static links point at the pre-rendered files of an export instead of
	// the query-string views of the server.
	Static bool
}

// Map links to the map view of a place.
func (l Links) Map(param string) string {
	if l.Static {
		return site.MapOutPath(param)
	}
	return l.page(MapFile) + "?rue=" + EncodeURIComponent(param)
}

// Article links to the detail view of an article file.
func (l Links) Article(file string) string {
	if l.Static {
		return site.ArticleOutPath(file)
	}
	return l.page(ArticleFile) + "?file=" + EncodeURIComponent(file)
}

// Listing links to the listing page with an encoded query.
func (l Links) Listing(query string) string {
	if l.Static {
		return "index.html"
	}
	p := l.base() + "/"
	if query == "" {
		return p
	}
	return p + "?" + query
}

func (l Links) page(name string) string {
	if l.base() == "" {
		return name
	}
	return l.base() + "/" + name
}

func (l Links) base() string {
	return strings.TrimSuffix(strings.TrimSpace(l.BasePath), "/")
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes everything except
// A-Z a-z 0-9 - _ . ! ~ * ' ( ), operating on UTF-8 bytes.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func keepUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
