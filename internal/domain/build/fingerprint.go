package build

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint captures every input of a static export. An output whose
// route hash is unchanged does not need to be rendered again.
type Fingerprint struct {
	ContentHash  string
	ThemeHash    string
	ConfigHash   string
	RendererHash string
	RenderHash   string
}

func (f *Fingerprint) ComputeRenderHash() {
	f.RenderHash = sum(f.ContentHash, f.ThemeHash, f.ConfigHash, f.RendererHash)
}

// RouteHash combines the render hash with one route's identity and any
// input only that route reads, such as an article file.
func (f Fingerprint) RouteHash(route string, inputs ...string) string {
	return sum(append([]string{f.RenderHash, route}, inputs...)...)
}

// sum hashes the parts NUL-separated, so ("ab", "c") and ("a", "bc")
// differ.
func sum(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
