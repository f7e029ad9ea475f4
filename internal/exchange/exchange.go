// Package exchange exports the inventory to CSV and JSON and imports it
// back. Exports are pure reads. Imports apply a conflict policy per record
// and report every record's outcome; one bad record never aborts a batch.
package exchange

import (
	"fmt"
	"strings"
)

// Policy decides what happens when an incoming record matches an existing
// one by natural key.
type Policy string

const (
	// PolicySkip leaves the existing record untouched.
	PolicySkip Policy = "skip"

	// PolicyOverwrite updates the existing record to match the import.
	PolicyOverwrite Policy = "overwrite"

	// PolicyDuplicate always inserts a new record. Tags cannot be
	// duplicated: an existing tag is reused and reported as skipped.
	PolicyDuplicate Policy = "duplicate"
)

// ParsePolicy returns the Policy named s.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicySkip, PolicyOverwrite, PolicyDuplicate:
		return p, nil
	default:
		return "", fmt.Errorf("unknown import policy %q (want skip, overwrite or duplicate)", s)
	}
}

// Outcome is what happened to one imported record.
type Outcome string

const (
	Imported    Outcome = "imported"
	Skipped     Outcome = "skipped"
	Overwritten Outcome = "overwritten"
	Failed      Outcome = "failed"
)

// Result is the outcome of one record. Err is an *types.ImportRecordError
// when Outcome is Failed.
type Result struct {
	Entity  string  `json:"entity"`
	Index   int     `json:"index"`
	Key     string  `json:"key,omitempty"`
	Outcome Outcome `json:"outcome"`
	ID      int64   `json:"id,omitempty"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// Report collects the results of one import batch in input order.
type Report struct {
	BatchID string   `json:"batch_id"`
	Policy  Policy   `json:"policy"`
	Format  string   `json:"format"`
	Results []Result `json:"results"`
}

// Count returns how many records ended with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Errors returns the record errors of every failed record.
func (r *Report) Errors() []error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}

// Summary formats the outcome counts, e.g. "3 imported, 1 skipped,
// 0 overwritten, 0 failed".
func (r *Report) Summary() string {
	return fmt.Sprintf("%d imported, %d skipped, %d overwritten, %d failed",
		r.Count(Imported), r.Count(Skipped), r.Count(Overwritten), r.Count(Failed))
}
