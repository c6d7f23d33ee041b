package site

import (
	"strings"
)

type RouteKind string

const (
	RouteListing  RouteKind = "listing"
	RoutePlace    RouteKind = "place"
	RouteMap      RouteKind = "map"
	RouteArticle  RouteKind = "article"
	RouteData     RouteKind = "data"
	RouteNotFound RouteKind = "404"
)

// Route is one output file of a static export.
type Route struct {
	Kind RouteKind
	// Key is the place index a place route pre-selects, the link parameter
	// of a map route, or the file of an article route.
	Key     string
	OutPath string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	return strings.Join(parts, " ")
}

// PlaceOutPath is the pre-filtered listing of the place at index.
func PlaceOutPath(index string) string {
	return "rue-" + FileKey(index) + ".html"
}

// MapOutPath is the exported map view of a link parameter.
func MapOutPath(param string) string {
	return "carte-" + FileKey(param) + ".html"
}

// ArticleOutPath is the exported detail view of an article file.
func ArticleOutPath(file string) string {
	return "article-" + FileKey(file) + ".html"
}

const hexDigits = "0123456789abcdef"

// FileKey turns an arbitrary key into a flat file name part that needs no
// escaping in a URL. ASCII letters, digits and '-' are kept, every other
// byte becomes '_' followed by two hex digits, so distinct keys never
// collide.
func FileKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&15])
		}
	}
	return b.String()
}
