package render

import "context"

type Renderer interface {
	RenderListing(ctx context.Context, page ListingPage) ([]byte, error)
	RenderPlace(ctx context.Context, page PlacePage) ([]byte, error)
	RenderArticle(ctx context.Context, page ArticlePage) ([]byte, error)
	RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error)
}
