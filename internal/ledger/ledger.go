// Package ledger holds the persisted set of known dead links and the merge
// rule that folds new detections into it without touching operator-owned status.
package ledger

import (
	"errors"
	"fmt"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
)

var (
	// ErrNotFound is returned when a (url, parent) key is not in the ledger.
	ErrNotFound = errors.New("ledger: record not found")
	// ErrInvalidStatus is returned for a status outside open/fixed/ignore.
	ErrInvalidStatus = errors.New("ledger: invalid status")
)

// Status is the operator-owned review state of a record.
type Status string

const (
	StatusOpen   Status = "open"
	StatusFixed  Status = "fixed"
	StatusIgnore Status = "ignore"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusOpen, StatusFixed, StatusIgnore}

// ParseStatus validates s.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusOpen, StatusFixed, StatusIgnore:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Record is a single ledger entry.
type Record struct {
	URL    string `json:"url"`
	Parent string `json:"parent"`
	Status Status `json:"status"`
}

// Key is the uniqueness key of a record.
type Key struct {
	URL    string
	Parent string
}

// Key returns the record's uniqueness key.
func (r Record) Key() Key {
	return Key{URL: r.URL, Parent: r.Parent}
}

// Document is the on-disk shape of the ledger.
type Document struct {
	Data []Record `json:"data"`
}

// Ledger is an ordered collection of records keyed by (url, parent).
// The zero value is an empty ledger ready to use.
type Ledger struct {
	records []Record
	index   map[Key]int
}

// New builds a ledger from records. A repeated key keeps the position of its
// first occurrence and the value of its last.
func New(records []Record) *Ledger {
	l := &Ledger{
		records: make([]Record, 0, len(records)),
		index:   make(map[Key]int, len(records)),
	}
	for _, r := range records {
		if i, ok := l.index[r.Key()]; ok {
			l.records[i] = r
			continue
		}
		l.append(r)
	}
	return l
}

// FromDocument builds a ledger from its persisted form. A record without a
// status is read as open; any other unknown status is rejected.
func FromDocument(doc Document) (*Ledger, error) {
	records := make([]Record, 0, len(doc.Data))
	for i, r := range doc.Data {
		if r.Status == "" {
			r.Status = StatusOpen
		}
		if _, err := ParseStatus(string(r.Status)); err != nil {
			return nil, fmt.Errorf("record %d (url=%s parent=%s): %w", i, r.URL, r.Parent, err)
		}
		records = append(records, r)
	}
	return New(records), nil
}

// Document returns the persisted form of the ledger.
func (l *Ledger) Document() Document {
	return Document{Data: l.Records()}
}

func (l *Ledger) append(r Record) {
	if l.index == nil {
		l.index = make(map[Key]int)
	}
	l.index[r.Key()] = len(l.records)
	l.records = append(l.records, r)
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Get looks up a record by key.
func (l *Ledger) Get(url, parent string) (Record, bool) {
	i, ok := l.index[Key{URL: url, Parent: parent}]
	if !ok {
		return Record{}, false
	}
	return l.records[i], true
}

// Records returns a copy of the records in ledger order.
func (l *Ledger) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Insert adds an open record for (url, parent) unless the key is already
// present. Existing records, including their status, are never modified.
// It reports whether a record was inserted.
func (l *Ledger) Insert(url, parent string) bool {
	if _, ok := l.index[Key{URL: url, Parent: parent}]; ok {
		return false
	}
	l.append(Record{URL: url, Parent: parent, Status: StatusOpen})
	return true
}

// SetStatus changes the status of an existing record.
func (l *Ledger) SetStatus(url, parent string, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	i, ok := l.index[Key{URL: url, Parent: parent}]
	if !ok {
		return fmt.Errorf("%w: url=%s parent=%s", ErrNotFound, url, parent)
	}
	l.records[i].Status = status
	return nil
}

// Counts returns the number of records per status.
func (l *Ledger) Counts() map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, r := range l.records {
		out[r.Status]++
	}
	return out
}

// Merge folds newly found dead links into existing and returns the updated
// ledger together with the links that were actually inserted. existing is not
// modified. Merging the same found set twice is a no-op the second time.
func Merge(existing *Ledger, found []domain.DeadLink) (*Ledger, []domain.DeadLink) {
	var merged *Ledger
	if existing == nil {
		merged = New(nil)
	} else {
		merged = New(existing.records)
	}

	var inserted []domain.DeadLink
	for _, d := range found {
		if merged.Insert(d.URL, d.Parent) {
			inserted = append(inserted, d)
		}
	}
	return merged, inserted
}
