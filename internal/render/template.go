package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

//go:embed theme
var embeddedTheme embed.FS

// DefaultTheme returns the theme bundled with the binary.
func DefaultTheme() fs.FS {
	sub, err := fs.Sub(embeddedTheme, "theme")
	if err != nil {
		panic(err)
	}
	return sub
}

// ThemeFS returns the theme directory when one is configured, the bundled
// theme otherwise.
func ThemeFS(themeDir string) fs.FS {
	if themeDir == "" {
		return DefaultTheme()
	}
	return os.DirFS(themeDir)
}

var requiredTemplates = []string{
	"listing.tmpl",
	"place.tmpl",
	"article.tmpl",
	"404.tmpl",
}

type TemplateRenderer struct {
	tpl *template.Template
}

// NewTemplateRenderer parses templates/*.tmpl of the theme. Every value is
// escaped by html/template according to where it lands in the markup.
func NewTemplateRenderer(theme fs.FS) (*TemplateRenderer, error) {
	if err := CheckThemeTemplates(theme); err != nil {
		return nil, err
	}
	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(theme, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"nowYear": func() int {
			return time.Now().Year()
		},
		"asset": func(base, name string) string {
			return base + "/static/" + name
		},
	}
}

func (r *TemplateRenderer) RenderListing(ctx context.Context, page ListingPage) ([]byte, error) {
	return r.exec("listing.tmpl", page)
}

func (r *TemplateRenderer) RenderPlace(ctx context.Context, page PlacePage) ([]byte, error) {
	return r.exec("place.tmpl", page)
}

func (r *TemplateRenderer) RenderArticle(ctx context.Context, page ArticlePage) ([]byte, error) {
	return r.exec("article.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data interface{}) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func CheckThemeTemplates(theme fs.FS) error {
	for _, name := range requiredTemplates {
		if _, err := fs.Stat(theme, filepath.ToSlash(filepath.Join("templates", name))); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}

// ThemeHash fingerprints every file of the theme.
func ThemeHash(theme fs.FS) (string, error) {
	var paths []string
	err := fs.WalkDir(theme, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		data, err := fs.ReadFile(theme, p)
		if err != nil {
			return "", err
		}
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
