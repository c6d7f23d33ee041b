package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"golang.org/x/sync/errgroup"
	"ruesite/internal/domain/config"
	"ruesite/internal/domain/content"
	domainerr "ruesite/internal/domain/errors"
	"strings"
)

// Names are the resource names relative to the source. An empty Places
// disables the registry.
type Names struct {
	Options  string
	Articles string
	Places   string
}

func NamesFrom(cfg config.DataConfig) Names {
	return Names{
		Options:  cfg.Options,
		Articles: cfg.Articles,
		Places:   strings.TrimSpace(cfg.Places),
	}
}

type Loader struct {
	Source Source
	Names  Names
}

// Load fetches every resource concurrently and decodes them. The first
// failure cancels the other fetches and fails the whole load with a
// *domainerr.LoadError; there is never a partial dataset.
func (l *Loader) Load(ctx context.Context) (content.Dataset, []Warning, error) {
	names := []string{l.Names.Options, l.Names.Articles}
	if l.Names.Places != "" {
		names = append(names, l.Names.Places)
	}
	raw := make([][]byte, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			data, err := l.Source.Fetch(gctx, name)
			if err != nil {
				return &domainerr.LoadError{Resource: name, Err: err}
			}
			raw[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return content.Dataset{}, nil, err
	}

	var (
		ds    content.Dataset
		warns []Warning
	)
	opts, w, err := DecodeOptions(l.Names.Options, raw[0])
	if err != nil {
		return content.Dataset{}, nil, &domainerr.LoadError{Resource: l.Names.Options, Err: err}
	}
	ds.Options = opts
	warns = append(warns, w...)

	arts, w, err := DecodeArticles(l.Names.Articles, raw[1])
	if err != nil {
		return content.Dataset{}, nil, &domainerr.LoadError{Resource: l.Names.Articles, Err: err}
	}
	ds.Articles = arts
	warns = append(warns, w...)

	if len(raw) > 2 {
		places, w, err := DecodePlaces(l.Names.Places, raw[2])
		if err != nil {
			return content.Dataset{}, nil, &domainerr.LoadError{Resource: l.Names.Places, Err: err}
		}
		ds.Places = places
		warns = append(warns, w...)
	}

	ds.Hash = HashResources(raw...)
	return ds, warns, nil
}

// HashResources fingerprints raw resources in order.
func HashResources(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
