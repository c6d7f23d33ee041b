package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"ruesite/internal/domain/config"
	"strings"
	"time"
)

// maxResourceSize bounds a single JSON resource.
const maxResourceSize = 32 << 20

// Source fetches a named resource relative to its root.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	String() string
}

// NewSource picks an HTTP source for http(s) URLs and a directory source
// otherwise.
func NewSource(cfg config.DataConfig) (Source, error) {
	if !cfg.IsRemote() {
		return DirSource{Root: cfg.Source}, nil
	}
	u, err := url.Parse(strings.TrimSpace(cfg.Source))
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid source URL: %w", err)
	}
	return &HTTPSource{
		Base:   u,
		Client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type DirSource struct {
	Root string
}

func (s DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(name)))
}

func (s DirSource) String() string { return s.Root }

type HTTPSource struct {
	Base   *url.URL
	Client *http.Client
}

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, err
	}
	base := *s.Base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	target := base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
}

func (s *HTTPSource) String() string { return s.Base.String() }
