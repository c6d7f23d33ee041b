package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"ruesite/internal/domain/config"
	domainerr "ruesite/internal/domain/errors"
)

func writeData(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

var defaultNames = Names{Options: "options.json", Articles: "articles.json", Places: "lieux.json"}

func TestLoaderFromDirectory(t *testing.T) {
	t.Parallel()

	dir := writeData(t, map[string]string{
		"options.json":  `{"rues":[{"id":"r1","nom":"Rue A"}],"periodes":["Moyen Âge"]}`,
		"articles.json": `[{"title":"T1","rueId":0,"periode":0,"file":"a.html"}]`,
		"lieux.json":    `[]`,
	})

	l := &Loader{Source: DirSource{Root: dir}, Names: defaultNames}
	ds, warns, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, warns)
	require.Len(t, ds.Articles, 1)
	require.Empty(t, ds.Places)
	require.NotEmpty(t, ds.Hash)

	again, _, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, ds.Hash, again.Hash)
}

func TestLoaderFailsWhenAnyResourceFails(t *testing.T) {
	t.Parallel()

	dir := writeData(t, map[string]string{
		"options.json":  `{}`,
		"articles.json": `[]`,
	})

	l := &Loader{Source: DirSource{Root: dir}, Names: defaultNames}
	ds, _, err := l.Load(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, domainerr.ErrLoad))

	var le *domainerr.LoadError
	require.True(t, errors.As(err, &le))
	require.Equal(t, "lieux.json", le.Resource)
	require.Empty(t, ds.Articles)
}

func TestLoaderDecodeFailureIsLoadError(t *testing.T) {
	t.Parallel()

	dir := writeData(t, map[string]string{
		"options.json":  `{}`,
		"articles.json": `[{"title":`,
	})

	l := &Loader{Source: DirSource{Root: dir}, Names: Names{Options: "options.json", Articles: "articles.json"}}
	_, _, err := l.Load(context.Background())
	require.ErrorIs(t, err, domainerr.ErrLoad)
}

func TestLoaderWithoutRegistry(t *testing.T) {
	t.Parallel()

	dir := writeData(t, map[string]string{
		"options.json":  `{}`,
		"articles.json": `[]`,
	})

	l := &Loader{Source: DirSource{Root: dir}, Names: NamesFrom(config.DataConfig{
		Options:  "options.json",
		Articles: "articles.json",
		Places:   "  ",
	})}
	ds, _, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, ds.Places)
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/data/options.json":
			_, _ = w.Write([]byte(`{"rues":["A"]}`))
		case "/data/articles.json":
			_, _ = w.Write([]byte(`[{"title":"T"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL + "/data")
	require.NoError(t, err)
	src := &HTTPSource{Base: base, Client: srv.Client()}

	l := &Loader{Source: src, Names: Names{Options: "options.json", Articles: "articles.json"}}
	ds, _, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Articles, 1)

	l.Names.Places = "lieux.json"
	_, _, err = l.Load(context.Background())
	require.ErrorIs(t, err, domainerr.ErrLoad)
	require.GreaterOrEqual(t, hits.Load(), int32(3))
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	src, err := NewSource(config.DataConfig{Source: "data"})
	require.NoError(t, err)
	require.IsType(t, DirSource{}, src)

	src, err = NewSource(config.DataConfig{Source: "https://example.org/json/"})
	require.NoError(t, err)
	require.IsType(t, &HTTPSource{}, src)
	require.Equal(t, "https://example.org/json/", src.String())
}

func TestDirSourceHonoursCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DirSource{Root: t.TempDir()}.Fetch(ctx, "options.json")
	require.ErrorIs(t, err, context.Canceled)
}
