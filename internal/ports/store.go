package ports

import (
	"context"

	"github.com/rojanmagar2001/sitemap404/internal/ledger"
)

// LedgerStore loads and persists the dead-link ledger as a whole document.
type LedgerStore interface {
	// Load returns the stored ledger, or an empty one if nothing is stored yet.
	Load(ctx context.Context) (*ledger.Ledger, error)
	// Save replaces the stored ledger.
	Save(ctx context.Context, l *ledger.Ledger) error
}
