package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
	"github.com/rojanmagar2001/sitemap404/internal/ports"
)

// maxPageBody bounds how much of a page is read for link extraction.
const maxPageBody = 10 << 20

// URLChecker reports whether a single URL exists.
type URLChecker interface {
	Check(ctx context.Context, url string) domain.Result
}

// PageOptions selects which checks PageChecker performs.
type PageOptions struct {
	// SelfCheck checks the page itself and reports it with the SELF marker
	// when it is missing.
	SelfCheck bool
	// LinkScan fetches the page and checks every link on it.
	LinkScan bool
	// InternalOnly restricts link checks to SiteHost.
	InternalOnly bool
	// SiteHost is the HostKey of the site under check.
	SiteHost string
}

// PageChecker finds dead links on, or of, a single page.
type PageChecker struct {
	checker   URLChecker
	client    ports.HTTPClient
	extractor ports.Extractor
	limiter   ports.Limiter
	log       logger.Logger

	userAgent string
	timeout   time.Duration
	opts      PageOptions
}

func NewPageChecker(
	checker URLChecker,
	client ports.HTTPClient,
	extractor ports.Extractor,
	limiter ports.Limiter,
	log logger.Logger,
	userAgent string,
	timeout time.Duration,
	opts PageOptions,
) *PageChecker {
	return &PageChecker{
		checker:   checker,
		client:    client,
		extractor: extractor,
		limiter:   limiter,
		log:       log,
		userAgent: userAgent,
		timeout:   timeout,
		opts:      opts,
	}
}

// CheckPage returns the dead links attributable to pageURL. If the page
// itself is missing the result is exactly [(pageURL, SELF)] and nothing else
// is requested. Checks that fail at the transport level are logged and left
// out; they are never reported as dead.
func (c *PageChecker) CheckPage(ctx context.Context, pageURL string) []domain.DeadLink {
	if c.opts.SelfCheck {
		res := c.checker.Check(ctx, pageURL)
		if !res.Determined() {
			c.log.Warn("Page check failed, skipping page",
				logger.String("page", pageURL),
				logger.Error(res.Err))
			return nil
		}
		if res.IsDead() {
			return []domain.DeadLink{{URL: pageURL, Parent: domain.SelfParent}}
		}
	}

	if !c.opts.LinkScan {
		return nil
	}

	links, err := c.fetchLinks(ctx, pageURL)
	if err != nil {
		c.log.Warn("Link extraction failed",
			logger.String("page", pageURL),
			logger.Error(err))
		return nil
	}

	var dead []domain.DeadLink
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		if c.opts.InternalOnly && HostKey(link) != c.opts.SiteHost {
			continue
		}

		res := c.checker.Check(ctx, link)
		if !res.Determined() {
			c.log.Warn("Link check failed",
				logger.String("page", pageURL),
				logger.String("link", link),
				logger.Error(res.Err))
			continue
		}
		if res.IsDead() {
			c.log.Debug("Dead link found",
				logger.String("page", pageURL),
				logger.String("link", link),
				logger.String("method", res.Method),
				logger.Duration("elapsed", res.Elapsed))
			dead = append(dead, domain.DeadLink{URL: link, Parent: pageURL})
		}
	}
	return dead
}

// fetchLinks downloads pageURL and extracts its links. A non-200 or
// non-HTML response yields no links and no error.
func (c *PageChecker) fetchLinks(ctx context.Context, pageURL string) ([]string, error) {
	if err := c.limiter.Take(ctx, pageURL); err != nil {
		return nil, err
	}

	pageCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(pageCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("Page not 200, links not scanned",
			logger.String("page", pageURL),
			logger.Int("status", resp.StatusCode))
		return nil, nil
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "text/html") && !strings.Contains(ct, "application/xhtml") {
		c.log.Debug("Page is not HTML, links not scanned",
			logger.String("page", pageURL),
			logger.String("content_type", ct))
		return nil, nil
	}

	links, err := c.extractor.Extract(pageURL, io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return nil, fmt.Errorf("extract links: %w", err)
	}
	return links, nil
}
