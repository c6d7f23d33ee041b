package ingest

import (
	"path/filepath"
	"strings"
)

// ArticlePath maps a file reference to an article inside contentDir.
// References escaping the directory, and files that are neither markdown
// nor HTML, are rejected.
func ArticlePath(contentDir, file string) (string, bool) {
	file = strings.TrimSpace(file)
	if file == "" || contentDir == "" {
		return "", false
	}
	rel := filepath.FromSlash(file)
	if !filepath.IsLocal(rel) {
		return "", false
	}
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".md", ".markdown", ".html", ".htm":
	default:
		return "", false
	}
	return filepath.Join(contentDir, rel), true
}
