package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rojanmagar2001/sitemap404/internal/ledger"
)

// File persists the ledger as a single JSON document.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the ledger document location.
func (f *File) Path() string { return f.path }

// Load reads the ledger. A missing file yields an empty ledger.
func (f *File) Load(_ context.Context) (*ledger.Ledger, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", f.path, err)
	}

	var doc ledger.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", f.path, err)
	}
	l, err := ledger.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", f.path, err)
	}
	return l, nil
}

// Save rewrites the whole document atomically (write .tmp then rename).
func (f *File) Save(_ context.Context, l *ledger.Ledger) error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}

	data, err := Encode(l.Document())
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write tmp: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}

// Encode renders doc as indented UTF-8 JSON with non-ASCII and HTML
// characters left unescaped.
func Encode(doc ledger.Document) ([]byte, error) {
	if doc.Data == nil {
		doc.Data = []ledger.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return buf.Bytes(), nil
}
