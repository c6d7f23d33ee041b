package index

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "build.db")
	st, err := Open(OpenOptions{Path: path})
	require.NoError(t, err)
	return st, path
}

func TestOutputHashes(t *testing.T) {
	t.Parallel()

	st, _ := openStore(t)
	t.Cleanup(func() { _ = st.Close() })

	_, err := st.OutputHash("index.html")
	require.True(t, errors.Is(err, ErrNotFound))
	_, err = st.OutputHash(" ")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.PutOutputHash("index.html", "h1"))
	require.NoError(t, st.PutOutputHash("rue-0.html", "h2"))
	require.NoError(t, st.PutOutputHash("index.html", "h3"))

	h, err := st.OutputHash("index.html")
	require.NoError(t, err)
	require.Equal(t, "h3", h)

	outs, err := st.Outputs()
	require.NoError(t, err)
	require.Equal(t, []string{"index.html", "rue-0.html"}, outs)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	st, _ := openStore(t)
	t.Cleanup(func() { _ = st.Close() })

	for _, p := range []string{"index.html", "rue-0.html", "rue-1.html", "rue-2.html"} {
		require.NoError(t, st.PutOutputHash(p, "h"))
	}

	removed, err := st.Prune(map[string]struct{}{"index.html": {}, "rue-1.html": {}})
	require.NoError(t, err)
	require.Equal(t, []string{"rue-0.html", "rue-2.html"}, removed)

	outs, err := st.Outputs()
	require.NoError(t, err)
	require.Equal(t, []string{"index.html", "rue-1.html"}, outs)
}

func TestBuildRecordPersists(t *testing.T) {
	t.Parallel()

	st, path := openStore(t)

	_, err := st.LastBuild()
	require.ErrorIs(t, err, ErrNotFound)

	when := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.RecordBuild(BuildRecord{Time: when, ContentHash: "c", Written: 3, Skipped: 1}))
	require.NoError(t, st.Close())

	st, err = Open(OpenOptions{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	rec, err := st.LastBuild()
	require.NoError(t, err)
	require.True(t, when.Equal(rec.Time))
	require.Equal(t, "c", rec.ContentHash)
	require.Equal(t, 3, rec.Written)
	require.Equal(t, 1, rec.Skipped)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(OpenOptions{})
	require.Error(t, err)
}
