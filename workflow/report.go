package workflow

import (
	"fmt"
	"strings"
	"sync"
)

// maxDisplayedErrors caps how many per-recording errors the summary
// prints; the full count is always reported.
const maxDisplayedErrors = 5

// RecordingError records one recording's failure.
type RecordingError struct {
	RecordingID string
	Filename    string
	Err         error
}

// Report summarizes a batch run.
type Report struct {
	mu sync.Mutex

	Total     int
	Succeeded int
	Failed    int
	Errors    []RecordingError

	// Artifacts lists the paths written during the run.
	Artifacts []string
}

// recordSuccess notes a successfully processed recording.
func (r *Report) recordSuccess(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Succeeded++
	r.Artifacts = append(r.Artifacts, paths...)
}

// recordFailure notes a failed recording.
func (r *Report) recordFailure(recordingID, filename string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed++
	r.Errors = append(r.Errors, RecordingError{
		RecordingID: recordingID,
		Filename:    filename,
		Err:         err,
	})
}

// Summary renders a human-readable outcome. At most maxDisplayedErrors
// individual errors are shown; the totals always reflect every failure.
func (r *Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "processed %d recording(s): %d succeeded, %d failed",
		r.Total, r.Succeeded, r.Failed)

	if len(r.Errors) == 0 {
		return sb.String()
	}

	sb.WriteString("\nerrors:")
	for i, re := range r.Errors {
		if i == maxDisplayedErrors {
			fmt.Fprintf(&sb, "\n  ... and %d more", len(r.Errors)-maxDisplayedErrors)
			break
		}
		fmt.Fprintf(&sb, "\n  %s (%s): %v", re.Filename, re.RecordingID, re.Err)
	}
	return sb.String()
}
