package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"ruesite/internal/app"
	domainbuild "ruesite/internal/domain/build"
	"ruesite/internal/domain/config"
	"ruesite/internal/domain/site"
	"ruesite/internal/filter"
	"ruesite/internal/index"
	"ruesite/internal/ingest"
	"ruesite/internal/listing"
	"ruesite/internal/render"
	"time"
)

// rendererVersion invalidates every output when card or page rendering
// changes in a way the theme hash cannot see.
const rendererVersion = "cards-v1"

type Builder struct {
	Cfg    config.Config
	Logger *zap.Logger
	// Source overrides the configured data source.
	Source ingest.Source
}

type Result struct {
	Articles int
	Written  []string
	Skipped  []string
	Removed  []string
	Warnings []ingest.Warning
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	src := b.Source
	if src == nil {
		s, err := ingest.NewSource(b.Cfg.Data)
		if err != nil {
			return nil, err
		}
		src = s
	}
	loader := &ingest.Loader{Source: src, Names: ingest.NamesFrom(b.Cfg.Data)}

	loadCtx := ctx
	if b.Cfg.Data.Timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, b.Cfg.Data.Timeout)
		defer cancel()
	}
	ds, warns, err := loader.Load(loadCtx)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	for _, w := range warns {
		logger.Warn("data shape", zap.String("resource", w.Resource), zap.String("detail", w.Msg))
	}
	// an export has no server behind it, so cards link to exported files
	l := listing.New(ds, b.Cfg.Site).WithLinks(render.Links{Static: true})

	theme := render.ThemeFS(b.Cfg.Build.ThemeDir)
	tpl, err := render.NewTemplateRenderer(theme)
	if err != nil {
		return nil, fmt.Errorf("build: load theme: %w", err)
	}

	fp, err := b.fingerprint(ds.Hash, theme)
	if err != nil {
		return nil, fmt.Errorf("build: fingerprint: %w", err)
	}

	st, err := index.Open(index.OpenOptions{Path: b.Cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("build: failed to open index: %w", err)
	}
	defer st.Close()

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("build: mkdir public: %w", err)
	}

	res := &Result{Articles: len(ds.Articles), Warnings: warns}
	rb := &app.RouteBuilder{}
	routes := rb.BuildRoutes(app.Export{
		Places:    l.Table().Places,
		MapParams: l.MapParams(),
		Files:     l.Files(),
	})
	keep := make(map[string]struct{}, len(routes))
	pages := &pageRenderer{site: b.Cfg.Site, tpl: tpl, md: render.NewMarkdownRenderer(), listing: l}

	for _, rt := range routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keep[rt.OutPath] = struct{}{}

		var in routeInput
		if rt.Kind == site.RouteArticle {
			in, err = b.readArticle(rt.Key)
			if err != nil {
				return nil, fmt.Errorf("build %s: %w", rt, err)
			}
			if !in.found {
				logger.Warn("article file not found", zap.String("file", rt.Key), zap.String("out", rt.OutPath))
			}
		}
		hash := fp.RouteHash(rt.String(), in.hash())

		if prev, err := st.OutputHash(rt.OutPath); err == nil && prev == hash && exists(filepath.Join(outDir, rt.OutPath)) {
			res.Skipped = append(res.Skipped, rt.OutPath)
			continue
		}

		data, err := pages.render(ctx, rt, in)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", rt, err)
		}
		if err := writeFile(outDir, rt.OutPath, data); err != nil {
			return nil, fmt.Errorf("build %s: %w", rt, err)
		}
		if err := st.PutOutputHash(rt.OutPath, hash); err != nil {
			return nil, fmt.Errorf("build %s: %w", rt, err)
		}
		res.Written = append(res.Written, rt.OutPath)
	}

	removed, err := st.Prune(keep)
	if err != nil {
		return nil, fmt.Errorf("build: prune index: %w", err)
	}
	for _, p := range removed {
		if err := os.Remove(filepath.Join(outDir, filepath.FromSlash(p))); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("build: remove stale %s: %w", p, err)
		}
	}
	res.Removed = removed

	if err := copyStaticAssets(theme, outDir); err != nil {
		return nil, fmt.Errorf("build: copy static assets: %w", err)
	}

	if err := st.RecordBuild(index.BuildRecord{
		Time:        time.Now(),
		ContentHash: ds.Hash,
		Written:     len(res.Written),
		Skipped:     len(res.Skipped),
		Removed:     len(res.Removed),
	}); err != nil {
		return nil, fmt.Errorf("build: record: %w", err)
	}
	return res, nil
}

func (b *Builder) fingerprint(contentHash string, theme fs.FS) (domainbuild.Fingerprint, error) {
	themeHash, err := render.ThemeHash(theme)
	if err != nil {
		return domainbuild.Fingerprint{}, err
	}
	siteYAML, err := yaml.Marshal(b.Cfg.Site)
	if err != nil {
		return domainbuild.Fingerprint{}, err
	}
	fp := domainbuild.Fingerprint{
		ContentHash:  contentHash,
		ThemeHash:    themeHash,
		ConfigHash:   ingest.HashResources(siteYAML),
		RendererHash: rendererVersion,
	}
	fp.ComputeRenderHash()
	return fp, nil
}

// routeInput is what a route reads besides the dataset.
type routeInput struct {
	path  string
	src   []byte
	found bool
}

func (in routeInput) hash() string {
	if !in.found {
		return ""
	}
	return ingest.HashResources([]byte(in.path), in.src)
}

// readArticle reads the source of an exported article. A file that is
// missing or outside the content directory is not an error: its page
// becomes a not-found page so the card link still resolves.
func (b *Builder) readArticle(file string) (routeInput, error) {
	full, ok := ingest.ArticlePath(b.Cfg.Data.ContentDir, file)
	if !ok {
		return routeInput{}, nil
	}
	src, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return routeInput{}, nil
	}
	if err != nil {
		return routeInput{}, err
	}
	return routeInput{path: full, src: src, found: true}, nil
}

type listingData struct {
	Controls []render.Control `json:"controls"`
	Cards    []render.Card    `json:"cards"`
}

type pageRenderer struct {
	site    config.SiteConfig
	tpl     render.Renderer
	md      *render.MarkdownRenderer
	listing *listing.Listing
}

func (p *pageRenderer) render(ctx context.Context, rt site.Route, in routeInput) ([]byte, error) {
	l := p.listing
	switch rt.Kind {
	case site.RouteListing, site.RoutePlace:
		sel := filter.Selection{Place: rt.Key}
		return p.tpl.RenderListing(ctx, render.ListingPage{
			Site:      p.site,
			Controls:  l.Controls(sel),
			Cards:     l.Apply(sel),
			Static:    true,
			Generated: time.Now(),
		})
	case site.RouteMap:
		page := render.PlacePage{
			Site:      p.site,
			LinkParam: rt.Key,
			BackHref:  l.Links().Listing(""),
		}
		// same as the server: an empty parameter selects nothing
		if rt.Key != "" {
			name, arts := l.AtPlace(rt.Key)
			page.Name = name
			page.PageTitle = name
			page.Cards = l.Cards(arts)
		}
		return p.tpl.RenderPlace(ctx, page)
	case site.RouteArticle:
		if !in.found {
			return p.tpl.RenderNotFound(ctx, render.NotFoundPage{Site: p.site, Path: rt.Key})
		}
		res, err := p.md.RenderFile(in.path, in.src)
		if err != nil {
			return nil, err
		}
		return p.tpl.RenderArticle(ctx, render.ArticlePage{
			Site:      p.site,
			File:      rt.Key,
			HTML:      template.HTML(res.HTML),
			TOC:       res.Headings,
			BackHref:  l.Links().Listing(""),
			PageTitle: l.ArticleTitle(rt.Key, res.Headings),
		})
	case site.RouteData:
		sel := filter.Selection{}
		return json.MarshalIndent(listingData{
			Controls: l.Controls(sel),
			Cards:    l.Apply(sel),
		}, "", "  ")
	case site.RouteNotFound:
		return p.tpl.RenderNotFound(ctx, render.NotFoundPage{Site: p.site})
	}
	return nil, fmt.Errorf("unknown route kind %q", rt.Kind)
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyStaticAssets(theme fs.FS, outDir string) error {
	static, err := fs.Sub(theme, "static")
	if err != nil {
		return err
	}
	return fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == "." {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return err
		}
		return writeFile(filepath.Join(outDir, "static"), path, data)
	})
}
