package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ruesite/internal/domain/config"
	domainerr "ruesite/internal/domain/errors"
)

func testConfig(t *testing.T, options, articles string) config.Config {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	writeJSON(t, data, "options.json", options)
	writeJSON(t, data, "articles.json", articles)
	writeJSON(t, data, "lieux.json", `[]`)
	require.NoError(t, os.MkdirAll(filepath.Join(data, "articles"), 0o755))
	writeJSON(t, filepath.Join(data, "articles"), "a.html", `<h1>Rue A</h1><p onclick="x()">Texte</p>`)

	cfg := config.Default()
	cfg.Data.Source = data
	cfg.Data.ContentDir = filepath.Join(data, "articles")
	cfg.Build.PublicDir = filepath.Join(root, "public")
	cfg.Build.IndexPath = filepath.Join(root, ".ruesite", "build.db")
	return cfg
}

func writeJSON(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func openOutput(t *testing.T, cfg config.Config, name string) *goquery.Document {
	t.Helper()
	f, err := os.Open(filepath.Join(cfg.Build.PublicDir, name))
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

var allOutputs = []string{
	"index.html",
	"rue-0.html",
	"rue-1.html",
	"carte-r1.html",
	"carte-1.html",
	"article-a_2ehtml.html",
	"listing.json",
	"404.html",
}

const (
	twoPlaces = `{"rues":[{"id":"r1","nom":"Rue A"},"Rue B"],"periodes":["Moyen Âge"]}`
	articles  = `[{"title":"T1","rueId":0,"periode":0,"file":"a.html"},{"title":"T2","rueId":1}]`
)

func TestBuildWritesEveryOutput(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, twoPlaces, articles)
	b := &Builder{Cfg: cfg, Logger: zap.NewNop()}

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Articles)
	require.ElementsMatch(t, allOutputs, res.Written)
	require.Empty(t, res.Skipped)

	index := openOutput(t, cfg, "index.html")
	require.Equal(t, 2, index.Find(".article-item").Length())
	href, _ := index.Find("a.place").First().Attr("href")
	require.Equal(t, "carte-r1.html", href)

	rue1 := openOutput(t, cfg, "rue-1.html")
	require.Equal(t, 1, rue1.Find(".article-item").Length())
	require.Equal(t, "T2", rue1.Find(".article-item h3").Text())
	require.Equal(t, "Rue B", rue1.Find("#filter-rue option[selected]").Text())

	raw, err := os.ReadFile(filepath.Join(cfg.Build.PublicDir, "listing.json"))
	require.NoError(t, err)
	var listing struct {
		Cards []json.RawMessage `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(raw, &listing))
	require.Len(t, listing.Cards, 2)

	_, err = os.Stat(filepath.Join(cfg.Build.PublicDir, "static", "css", "site.css"))
	require.NoError(t, err)
}

func TestBuildSkipsUnchangedOutputs(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, twoPlaces, articles)
	b := &Builder{Cfg: cfg}

	_, err := b.Run(context.Background())
	require.NoError(t, err)

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Written)
	require.Len(t, res.Skipped, len(allOutputs))

	// a deleted output is rendered again
	require.NoError(t, os.Remove(filepath.Join(cfg.Build.PublicDir, "rue-0.html")))
	res, err = b.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"rue-0.html"}, res.Written)

	// site labels are part of the fingerprint
	b.Cfg.Site.Labels.Untitled = "Sans titre"
	res, err = b.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Written, len(allOutputs))

	// an article edit only touches its own page
	writeJSON(t, cfg.Data.ContentDir, "a.html", `<p>Nouveau texte</p>`)
	res, err = b.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"article-a_2ehtml.html"}, res.Written)
}

func TestBuildRemovesStalePlacePages(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, twoPlaces, articles)
	b := &Builder{Cfg: cfg}

	_, err := b.Run(context.Background())
	require.NoError(t, err)

	writeJSON(t, cfg.Data.Source, "options.json", `{"rues":["Rue A"]}`)
	res, err := b.Run(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"rue-1.html", "carte-r1.html", "carte-1.html"}, res.Removed)
	require.Contains(t, res.Written, "carte-0.html")

	_, err = os.Stat(filepath.Join(cfg.Build.PublicDir, "rue-1.html"))
	require.True(t, os.IsNotExist(err))
}

func TestBuildAbortsOnLoadFailure(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, twoPlaces, articles)
	require.NoError(t, os.Remove(filepath.Join(cfg.Data.Source, "lieux.json")))

	_, err := (&Builder{Cfg: cfg}).Run(context.Background())
	require.ErrorIs(t, err, domainerr.ErrLoad)

	_, err = os.Stat(filepath.Join(cfg.Build.PublicDir, "index.html"))
	require.True(t, os.IsNotExist(err))
}

// localTarget maps an exported link to the file it needs, or "" for
// links leaving the export.
func localTarget(ref string) string {
	switch {
	case ref == "" || strings.Contains(ref, "://") || strings.HasPrefix(ref, "#"):
		return ""
	case ref == "/":
		return "index.html"
	}
	return strings.TrimPrefix(ref, "/")
}

func TestExportedLinksResolve(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, twoPlaces, articles)
	_, err := (&Builder{Cfg: cfg}).Run(context.Background())
	require.NoError(t, err)

	for _, page := range []string{"index.html", "rue-0.html", "rue-1.html", "carte-r1.html", "carte-1.html", "article-a_2ehtml.html"} {
		doc := openOutput(t, cfg, page)
		doc.Find("a[href], link[href], script[src]").Each(func(_ int, sel *goquery.Selection) {
			ref, ok := sel.Attr("href")
			if !ok {
				ref, _ = sel.Attr("src")
			}
			require.NotContains(t, ref, "?", "%s links to a server view: %s", page, ref)
			target := localTarget(ref)
			if target == "" {
				return
			}
			_, err := os.Stat(filepath.Join(cfg.Build.PublicDir, filepath.FromSlash(target)))
			require.NoError(t, err, "%s links to %s", page, ref)
		})
	}
}

func TestExportedDetailPages(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, twoPlaces, articles)
	_, err := (&Builder{Cfg: cfg}).Run(context.Background())
	require.NoError(t, err)

	carte := openOutput(t, cfg, "carte-r1.html")
	require.Equal(t, "📍 Rue A", carte.Find("h2.place-name").Text())
	require.Equal(t, "T1", carte.Find(".article-item h3").Text())
	back, _ := carte.Find("main a").First().Attr("href")
	require.Equal(t, "index.html", back)

	article := openOutput(t, cfg, "article-a_2ehtml.html")
	require.Equal(t, "Texte", article.Find(".article-body p").Text())
	_, hasClick := article.Find(".article-body p").Attr("onclick")
	require.False(t, hasClick)
	require.Contains(t, article.Find("title").Text(), "T1")
}

func TestExportedMissingArticleIsNotFoundPage(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := testConfig(t, twoPlaces, `[{"title":"T1","file":"gone.md"}]`)
	res, err := (&Builder{Cfg: cfg, Logger: zap.New(core)}).Run(context.Background())
	require.NoError(t, err)
	require.Contains(t, res.Written, "article-gone_2emd.html")

	doc := openOutput(t, cfg, "article-gone_2emd.html")
	require.Equal(t, "404", doc.Find("h1").Text())

	warned := logs.FilterMessage("article file not found").All()
	require.Len(t, warned, 1)
	require.Equal(t, "gone.md", warned[0].ContextMap()["file"])
}
