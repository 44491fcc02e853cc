package sitemap

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/rojanmagar2001/sitemap404/internal/logger"
	"github.com/rojanmagar2001/sitemap404/internal/ports"
)

// Resolver walks a sitemap hierarchy breadth first.
type Resolver struct {
	client    ports.HTTPClient
	limiter   ports.Limiter
	log       logger.Logger
	userAgent string
	timeout   time.Duration
	maxDepth  int
}

// NewResolver creates a resolver. maxDepth counts the root as depth 1;
// zero or less means no limit.
func NewResolver(
	client ports.HTTPClient,
	limiter ports.Limiter,
	log logger.Logger,
	userAgent string,
	timeout time.Duration,
	maxDepth int,
) *Resolver {
	return &Resolver{
		client:    client,
		limiter:   limiter,
		log:       log,
		userAgent: userAgent,
		timeout:   timeout,
		maxDepth:  maxDepth,
	}
}

type job struct {
	url   string
	depth int
}

// Resolve returns the deduplicated, sorted page URLs reachable from rootURL.
// A branch that fails to fetch or parse contributes nothing; Resolve itself
// never fails, so an unreachable root yields an empty result.
func (r *Resolver) Resolve(ctx context.Context, rootURL string) []string {
	queue := []job{{url: rootURL, depth: 1}}
	visited := map[string]struct{}{}
	pages := map[string]struct{}{}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			break
		}

		j := queue[0]
		queue = queue[1:]

		if _, ok := visited[j.url]; ok {
			continue
		}
		visited[j.url] = struct{}{}

		doc, err := r.fetch(ctx, j.url)
		if err != nil {
			continue
		}

		if doc.Kind == KindLeaf {
			for _, p := range doc.Pages {
				pages[p] = struct{}{}
			}
			r.log.Debug("Sitemap leaf parsed",
				logger.String("url", j.url),
				logger.Int("depth", j.depth),
				logger.Int("pages", len(doc.Pages)))
			continue
		}

		if r.maxDepth > 0 && j.depth >= r.maxDepth {
			r.log.Warn("Sitemap index below depth limit not traversed",
				logger.String("url", j.url),
				logger.Int("depth", j.depth),
				logger.Int("max_depth", r.maxDepth))
			continue
		}
		for _, child := range doc.Sitemaps {
			queue = append(queue, job{url: child, depth: j.depth + 1})
		}
		r.log.Debug("Sitemap index parsed",
			logger.String("url", j.url),
			logger.Int("depth", j.depth),
			logger.Int("children", len(doc.Sitemaps)))
	}

	out := make([]string, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) (Document, error) {
	if err := r.limiter.Take(ctx, rawURL); err != nil {
		return Document{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		r.log.Error("Invalid sitemap URL", logger.String("url", rawURL), logger.Error(err))
		return Document{}, err
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("Sitemap fetch failed", logger.String("url", rawURL), logger.Error(err))
		return Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("sitemap: unexpected status %d", resp.StatusCode)
		r.log.Error("Sitemap fetch returned non-200",
			logger.String("url", rawURL),
			logger.Int("status", resp.StatusCode))
		return Document{}, err
	}

	doc, err := Parse(resp.Body)
	if err != nil {
		r.log.Error("Sitemap parse failed", logger.String("url", rawURL), logger.Error(err))
		return Document{}, err
	}
	return doc, nil
}
