// Package tracker keeps a durable record of generation jobs that were
// triggered but not yet confirmed complete.
//
// The store is a single JSON object keyed by recording id; every
// mutating call reads, modifies, and rewrites the whole file under an
// in-process mutex. It survives restarts but assumes a single process:
// the remote service remains the source of truth, and a lost or corrupt
// file only costs redundant status checks, never correctness.
package tracker

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Wicz-Cloud/pai-note-exporter/logging"
)

// DefaultMaxAge is the staleness threshold after which pending entries
// are evicted.
const DefaultMaxAge = 24 * time.Hour

// Job is one pending generation job.
type Job struct {
	RecordingID string    `json:"-"`
	Filename    string    `json:"filename"`
	TriggeredAt time.Time `json:"triggered_at"`
	Status      string    `json:"status"`
}

// Tracker is the file-backed pending-job store.
type Tracker struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// New creates a Tracker backed by the given file. The file is created
// lazily on the first Record call.
func New(path string) *Tracker {
	return &Tracker{
		path:   path,
		logger: logging.Logger("tracker"),
	}
}

// Record adds or refreshes a pending entry for a recording.
func (t *Tracker) Record(recordingID, filename string, triggeredAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.load()
	data[recordingID] = Job{
		Filename:    filename,
		TriggeredAt: triggeredAt,
		Status:      "pending",
	}
	if err := t.save(data); err != nil {
		return err
	}

	t.logger.Info("tracking pending generation",
		"recording", recordingID, "filename", filename)
	return nil
}

// Complete removes a recording's pending entry. Removing an unknown id
// is a no-op.
func (t *Tracker) Complete(recordingID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.load()
	if _, ok := data[recordingID]; !ok {
		return nil
	}
	delete(data, recordingID)
	if err := t.save(data); err != nil {
		return err
	}

	t.logger.Info("generation complete, tracking cleared", "recording", recordingID)
	return nil
}

// IsPending reports whether a recording has a pending entry.
func (t *Tracker) IsPending(recordingID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.load()[recordingID]
	return ok
}

// ListPending returns pending jobs younger than maxAge, oldest first.
// Entries older than maxAge or malformed are evicted and the removal is
// persisted as a side effect.
func (t *Tracker) ListPending(maxAge time.Duration) ([]Job, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	data := t.load()
	cutoff := time.Now().Add(-maxAge)

	var pending []Job
	var evict []string
	for id, job := range data {
		if job.TriggeredAt.IsZero() || job.TriggeredAt.Before(cutoff) {
			evict = append(evict, id)
			continue
		}
		job.RecordingID = id
		pending = append(pending, job)
	}

	if len(evict) > 0 {
		for _, id := range evict {
			delete(data, id)
		}
		if err := t.save(data); err != nil {
			return pending, err
		}
		t.logger.Info("evicted stale pending entries", "count", len(evict))
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].TriggeredAt.Before(pending[j].TriggeredAt)
	})
	return pending, nil
}

// PendingCount returns the number of non-stale pending jobs.
func (t *Tracker) PendingCount(maxAge time.Duration) int {
	jobs, _ := t.ListPending(maxAge)
	return len(jobs)
}

// Clear drops all pending entries.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(map[string]Job{})
}

// load reads the tracking file. A missing or corrupt file is treated as
// empty with a logged warning; the tracker is not authoritative and
// must never block export work.
func (t *Tracker) load() map[string]Job {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warn("could not read tracking file, treating as empty",
				"path", t.path, "error", err)
		}
		return map[string]Job{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.logger.Warn("tracking file is corrupt, treating as empty",
			"path", t.path, "error", err)
		return map[string]Job{}
	}

	jobs := make(map[string]Job, len(raw))
	for id, msg := range raw {
		var job Job
		if err := json.Unmarshal(msg, &job); err != nil {
			// Malformed entry; dropping it here removes it on the next save.
			t.logger.Warn("dropping malformed tracking entry",
				"recording", id, "error", err)
			continue
		}
		jobs[id] = job
	}
	return jobs
}

// save rewrites the whole tracking file.
func (t *Tracker) save(jobs map[string]Job) error {
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.path, data, 0o644)
}
