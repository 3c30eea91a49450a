package syncer

import "fmt"

// Result contains statistics from a sync run.
type Result struct {
	Batches           int `json:"batches"`
	Processed         int `json:"processed"`
	Errors            int `json:"errors"`
	Skipped           int `json:"skipped"`
	TranscriptEntries int `json:"transcript_entries"`
}

// Summary returns a human-readable summary of the sync result.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Sync complete: %d messages processed in %d batches, %d errors\n"+
			"Scanned %d transcript entries (%d skipped)",
		r.Processed, r.Batches, r.Errors,
		r.TranscriptEntries, r.Skipped,
	)
}
