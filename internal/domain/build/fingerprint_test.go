package build

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRouteHash(t *testing.T) {
	t.Parallel()

	fp := Fingerprint{ContentHash: "c", ThemeHash: "t", ConfigHash: "k", RendererHash: "v1"}
	fp.ComputeRenderHash()
	require.Len(t, fp.RenderHash, 64)

	same := fp
	same.ComputeRenderHash()
	require.Equal(t, fp.RouteHash("listing out=index.html"), same.RouteHash("listing out=index.html"))
	require.NotEqual(t, fp.RouteHash("place key=0"), fp.RouteHash("place key=1"))
	require.Equal(t, fp.RouteHash("article key=a.md", "h1"), fp.RouteHash("article key=a.md", "h1"))
	require.NotEqual(t, fp.RouteHash("article key=a.md", "h1"), fp.RouteHash("article key=a.md", "h2"))
	require.NotEqual(t, fp.RouteHash("article key=a.md"), fp.RouteHash("article key=a.md", ""))

	shifted := Fingerprint{ContentHash: "ct", ThemeHash: "", ConfigHash: "k", RendererHash: "v1"}
	shifted.ComputeRenderHash()
	require.NotEqual(t, fp.RenderHash, shifted.RenderHash)
}
