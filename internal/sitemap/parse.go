// Package sitemap resolves a sitemap hierarchy into the set of page URLs it lists.
package sitemap

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Namespace is the sitemap protocol namespace. Elements are matched by local
// name, so documents that omit it still parse.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// maxDocumentSize is the protocol's uncompressed size limit.
const maxDocumentSize = 50 << 20

// ErrUnexpectedRoot is returned for XML that is neither a urlset nor a sitemapindex.
var ErrUnexpectedRoot = errors.New("sitemap: unexpected root element")

// Kind classifies a sitemap document.
type Kind int

const (
	// KindLeaf lists page URLs.
	KindLeaf Kind = iota
	// KindIndex lists child sitemap URLs.
	KindIndex
)

func (k Kind) String() string {
	if k == KindIndex {
		return "index"
	}
	return "leaf"
}

// Document is a parsed sitemap.
type Document struct {
	Kind     Kind
	Sitemaps []string
	Pages    []string
}

type xmlLoc struct {
	Loc string `xml:"loc"`
}

type xmlDocument struct {
	XMLName  xml.Name
	Sitemaps []xmlLoc `xml:"sitemap"`
	URLs     []xmlLoc `xml:"url"`
}

// Parse reads a sitemap or sitemap index, transparently gunzipping
// compressed input. A document with any <sitemap><loc> children is an index;
// its <url> entries, if any, are ignored.
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return Document{}, fmt.Errorf("sitemap: gunzip: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var raw xmlDocument
	if err := xml.NewDecoder(io.LimitReader(src, maxDocumentSize)).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("sitemap: parse: %w", err)
	}

	switch raw.XMLName.Local {
	case "urlset", "sitemapindex":
	default:
		return Document{}, fmt.Errorf("%w: <%s>", ErrUnexpectedRoot, raw.XMLName.Local)
	}

	if children := locs(raw.Sitemaps); len(children) > 0 {
		return Document{Kind: KindIndex, Sitemaps: children}, nil
	}
	return Document{Kind: KindLeaf, Pages: locs(raw.URLs)}, nil
}

func locs(entries []xmlLoc) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}
