package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
)

// PageCheck finds dead links for one page.
type PageCheck interface {
	CheckPage(ctx context.Context, pageURL string) []domain.DeadLink
}

// ScanResult is the outcome of checking a set of pages.
type ScanResult struct {
	Checked    int
	Dead       []domain.DeadLink
	CapReached bool
}

// Scanner checks pages one after another.
type Scanner struct {
	pages   PageCheck
	log     logger.Logger
	maxDead int
}

// NewScanner creates a scanner. maxDead stops the scan once that many dead
// links have been found; zero or less means no cap.
func NewScanner(pages PageCheck, log logger.Logger, maxDead int) *Scanner {
	return &Scanner{pages: pages, log: log, maxDead: maxDead}
}

// Scan checks each page in order. When the cap is reached the links found
// so far are kept, truncated to exactly the cap.
func (s *Scanner) Scan(ctx context.Context, pages []string) ScanResult {
	var res ScanResult
	for _, page := range pages {
		if ctx.Err() != nil {
			break
		}

		found := s.pages.CheckPage(ctx, page)
		res.Checked++
		res.Dead = append(res.Dead, found...)

		if s.maxDead > 0 && len(res.Dead) >= s.maxDead {
			res.Dead = res.Dead[:s.maxDead]
			res.CapReached = true
			s.log.Info("Dead link cap reached, stopping scan",
				logger.Int("max_dead", s.maxDead),
				logger.Int("pages_checked", res.Checked),
				logger.Int("pages_total", len(pages)))
			break
		}
	}
	return res
}

// FilterScope keeps the pages whose URL starts with prefix, sorted.
// An empty prefix keeps every page.
func FilterScope(pages []string, prefix string) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if prefix == "" || strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
