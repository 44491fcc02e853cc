package ports

import "context"

// SitemapResolver flattens a sitemap hierarchy into page URLs.
type SitemapResolver interface {
	Resolve(ctx context.Context, rootURL string) []string
}
