// Package check tests a single URL and reports its HTTP status.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/ports"
)

// defaultMaxBodyRead caps how much of a GET body is drained.
const defaultMaxBodyRead = 1 << 20

type Checker struct {
	Client      ports.HTTPClient
	HeadFirst   bool
	UserAgent   string
	MaxBodyRead int64
}

func NewChecker(client ports.HTTPClient, headFirst bool, userAgent string) *Checker {
	return &Checker{
		Client:      client,
		HeadFirst:   headFirst,
		UserAgent:   userAgent,
		MaxBodyRead: defaultMaxBodyRead,
	}
}

// Check tests link for existence. The caller owns the deadline via ctx.
// With HeadFirst a HEAD is sent and retried once as GET when the server
// rejects the method.
func (c *Checker) Check(ctx context.Context, link string) domain.Result {
	if !c.HeadFirst {
		return c.do(ctx, http.MethodGet, link)
	}

	res := c.do(ctx, http.MethodHead, link)
	if headRejected(res) {
		return c.do(ctx, http.MethodGet, link)
	}
	return res
}

// headRejected reports whether a HEAD result says nothing about the target
// and a GET should be tried instead.
func headRejected(res domain.Result) bool {
	if res.Err != nil {
		var pe *http.ProtocolError
		return errors.As(res.Err, &pe)
	}
	switch res.StatusCode {
	case http.StatusMethodNotAllowed, http.StatusBadRequest, http.StatusNotImplemented:
		return true
	}
	return false
}

func (c *Checker) do(ctx context.Context, method, link string) domain.Result {
	res := domain.Result{URL: link, Method: method}

	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		res.Err = fmt.Errorf("new request: %w", err)
		return res
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.Client.Do(req)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = fmt.Errorf("%s request: %w", method, err)
		return res
	}
	defer resp.Body.Close()

	// Drain a little body on GET so keep-alive connections can be reused.
	if method == http.MethodGet {
		_, _ = io.CopyN(io.Discard, resp.Body, c.MaxBodyRead)
	}

	res.StatusCode = resp.StatusCode
	return res
}
