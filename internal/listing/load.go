package listing

import (
	"context"
	"ruesite/internal/domain/config"
	"ruesite/internal/ingest"
)

// Load fetches the dataset and builds a Listing from it. Decoding warnings
// are returned alongside; only fetch and parse failures are errors.
func Load(ctx context.Context, loader *ingest.Loader, site config.SiteConfig) (*Listing, []ingest.Warning, error) {
	ds, warns, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return New(ds, site), warns, nil
}
