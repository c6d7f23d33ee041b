package app

import (
	"ruesite/internal/domain/content"
	"ruesite/internal/domain/site"
)

type RouteBuilder struct{}

// Export is what a static export has to cover.
type Export struct {
	Places []content.Place
	// MapParams are the link parameters the cards point at.
	MapParams []string
	// Files are the article files the cards point at.
	Files []string
}

// BuildRoutes lists the outputs of a static export: the unfiltered listing,
// one pre-filtered listing per place, one map view per linked place, one
// detail page per linked article, the listing data and the 404 page.
// Every output sits at the root so relative card links stay valid.
func (rb *RouteBuilder) BuildRoutes(ex Export) []site.Route {
	routes := []site.Route{
		{Kind: site.RouteListing, OutPath: "index.html"},
	}
	routes = append(routes, rb.BuildPlaceRoutes(ex.Places)...)
	routes = append(routes, rb.BuildMapRoutes(ex.MapParams)...)
	routes = append(routes, rb.BuildArticleRoutes(ex.Files)...)
	routes = append(routes,
		site.Route{Kind: site.RouteData, OutPath: "listing.json"},
		site.Route{Kind: site.RouteNotFound, OutPath: "404.html"},
	)
	return routes
}

func (rb *RouteBuilder) BuildPlaceRoutes(places []content.Place) []site.Route {
	routes := make([]site.Route, 0, len(places))
	for _, p := range places {
		routes = append(routes, site.Route{
			Kind:    site.RoutePlace,
			Key:     p.Index,
			OutPath: site.PlaceOutPath(p.Index),
		})
	}
	return routes
}

func (rb *RouteBuilder) BuildMapRoutes(params []string) []site.Route {
	return keyedRoutes(site.RouteMap, params, site.MapOutPath)
}

func (rb *RouteBuilder) BuildArticleRoutes(files []string) []site.Route {
	return keyedRoutes(site.RouteArticle, files, site.ArticleOutPath)
}

// keyedRoutes drops repeated keys, keeping the first.
func keyedRoutes(kind site.RouteKind, keys []string, out func(string) string) []site.Route {
	seen := make(map[string]struct{}, len(keys))
	routes := make([]site.Route, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		routes = append(routes, site.Route{Kind: kind, Key: k, OutPath: out(k)})
	}
	return routes
}
