package domain

import (
	"net/http"
	"time"
)

// Result is the outcome of a single existence check.
type Result struct {
	URL        string
	Method     string
	StatusCode int
	Err        error
	Elapsed    time.Duration
}

// IsDead reports whether the check proved the target missing.
// Only an exact 404 counts; a transport error is "not determined".
func (r Result) IsDead() bool {
	if r.Err != nil {
		return false
	}

	return r.StatusCode == http.StatusNotFound
}

// Determined reports whether the check produced a status code at all.
func (r Result) Determined() bool {
	return r.Err == nil
}
