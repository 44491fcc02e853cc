package httpclient

import (
	"net/http"
	"time"
)

type Client struct {
	c *http.Client
}

// New returns a client whose requests time out after timeout. When
// followRedirects is false the first response is returned as-is, so a
// 301 to a missing page is reported as 301.
func New(timeout time.Duration, followRedirects bool) *Client {
	c := &http.Client{Timeout: timeout}
	if !followRedirects {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Client{c: c}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.c.Do(req)
}
