package usecase

import (
	"context"
	"time"

	"github.com/rojanmagar2001/sitemap404/internal/check"
	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/ports"
)

// LinkCheckerService checks single URLs with rate limiting and a
// per-request timeout.
type LinkCheckerService struct {
	chk     *check.Checker
	limiter ports.Limiter
	timeout time.Duration
}

func NewLinkChecker(client ports.HTTPClient, timeout time.Duration, headFirst bool, userAgent string, limiter ports.Limiter) *LinkCheckerService {
	return &LinkCheckerService{
		chk:     check.NewChecker(client, headFirst, userAgent),
		limiter: limiter,
		timeout: timeout,
	}
}

func (s *LinkCheckerService) Check(ctx context.Context, url string) domain.Result {
	if err := s.limiter.Take(ctx, url); err != nil {
		return domain.Result{URL: url, Err: err}
	}

	// Per-link timeout
	linkCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.chk.Check(linkCtx, url)
}
