package limiter

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/rojanmagar2001/sitemap404/internal/ports"
)

// PerHost keeps one token bucket per host, each allowing rate requests per
// second with a burst of one.
type PerHost struct {
	limit rate.Limit

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// New returns a per-host limiter allowing rate requests per second to each
// host. A rate of zero or less disables limiting.
func New(r float64) ports.Limiter {
	if r <= 0 {
		return Unlimited{}
	}
	return &PerHost{
		limit: rate.Limit(r),
		hosts: make(map[string]*rate.Limiter),
	}
}

func (h *PerHost) Take(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil // invalid URL already handled elsewhere
	}
	host := strings.ToLower(u.Host)
	if host == "" {
		return nil
	}

	return h.forHost(host).Wait(ctx)
}

func (h *PerHost) forHost(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	lim, ok := h.hosts[host]
	if !ok {
		lim = rate.NewLimiter(h.limit, 1)
		h.hosts[host] = lim
	}
	return lim
}

// Unlimited never blocks.
type Unlimited struct{}

func (Unlimited) Take(context.Context, string) error { return nil }
