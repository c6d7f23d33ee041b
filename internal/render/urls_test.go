package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeURIComponent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"r1":            "r1",
		"a b":           "a%20b",
		"a&b=c":         "a%26b%3Dc",
		"Moyen Âge":     "Moyen%20%C3%82ge",
		"dir/file.html": "dir%2Ffile.html",
		"-_.!~*'()":     "-_.!~*'()",
		"?#":            "%3F%23",
		"":              "",
		"100%":          "100%25",
	}
	for in, want := range cases {
		require.Equal(t, want, EncodeURIComponent(in), in)
	}
}

func TestLinks(t *testing.T) {
	t.Parallel()

	rel := Links{}
	require.Equal(t, "carte.html?rue=r1", rel.Map("r1"))
	require.Equal(t, "article.html?file=a.html", rel.Article("a.html"))
	require.Equal(t, "/", rel.Listing(""))
	require.Equal(t, "/?rue=1", rel.Listing("rue=1"))

	based := Links{BasePath: "/archive"}
	require.Equal(t, "/archive/carte.html?rue=a%20b", based.Map("a b"))
	require.Equal(t, "/archive/article.html?file=x%2Fy.md", based.Article("x/y.md"))
	require.Equal(t, "/archive/", based.Listing(""))

	root := Links{BasePath: "/"}
	require.Equal(t, "carte.html?rue=r1", root.Map("r1"))
	require.Equal(t, "/", root.Listing(""))

	static := Links{BasePath: "/archive", Static: true}
	require.Equal(t, "carte-a_20b.html", static.Map("a b"))
	require.Equal(t, "article-x_2fy_2emd.html", static.Article("x/y.md"))
	require.Equal(t, "index.html", static.Listing("rue=1"))
}
