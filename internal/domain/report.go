package domain

import "time"

// Report summarises one pipeline run.
type Report struct {
	RunID         string
	PagesFound    int
	PagesInScope  int
	PagesChecked  int
	Detected      []DeadLink
	Inserted      []DeadLink
	CapReached    bool
	LedgerRecords int
	Notified      bool
	Elapsed       time.Duration
}
