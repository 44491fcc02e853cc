package extractor

import (
	"io"

	"github.com/rojanmagar2001/sitemap404/internal/extract"
)

// Adapter exposes extract.ExtractLinks as a ports.Extractor.
type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Extract(baseURL string, r io.Reader) ([]string, error) {
	return extract.ExtractLinks(baseURL, r)
}
