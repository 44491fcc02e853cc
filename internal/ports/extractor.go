package ports

import "io"

// Extractor returns the absolute http(s) link targets of an HTML document.
type Extractor interface {
	Extract(baseURL string, r io.Reader) ([]string, error)
}
