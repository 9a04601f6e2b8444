// Package generation drives the remote transcription/summary job: it
// triggers generation for a recording and polls status until a terminal
// answer or a deadline.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Wicz-Cloud/pai-note-exporter/logging"
	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
)

// Defaults for the poll loop.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxWait      = 10 * time.Minute
)

// API is the subset of the Plaud client the state machine needs.
type API interface {
	// TriggerGeneration starts the remote job. Idempotent: an
	// already-running job reports success.
	TriggerGeneration(ctx context.Context, recordingID string) (bool, error)

	// GenerationStatus performs a single status check.
	GenerationStatus(ctx context.Context, recordingID string) (plaud.Status, error)
}

// Recorder persists triggered-but-unconfirmed jobs across runs. The
// tracker package provides the durable implementation.
type Recorder interface {
	Record(recordingID, filename string, triggeredAt time.Time) error
	Complete(recordingID string) error
}

// TimeoutError reports that a generation wait exceeded its deadline.
// It is distinct from a failed status: the remote job may still finish,
// and the caller can choose to wait longer on a later run.
type TimeoutError struct {
	RecordingID string
	Waited      time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation for %s did not reach a terminal status within %s",
		e.RecordingID, e.Waited)
}

// Service coordinates triggering and waiting.
type Service struct {
	api    API
	jobs   Recorder
	logger *slog.Logger

	// PollInterval is the fixed delay between status checks.
	PollInterval time.Duration

	// MaxWait bounds a single WaitUntilTerminal call.
	MaxWait time.Duration
}

// NewService creates a Service. jobs may be nil when no durable
// tracking is wanted (tests, one-shot runs).
func NewService(api API, jobs Recorder) *Service {
	return &Service{
		api:          api,
		jobs:         jobs,
		logger:       logging.Logger("generation"),
		PollInterval: DefaultPollInterval,
		MaxWait:      DefaultMaxWait,
	}
}

// EnsureGenerated makes sure a recording has transcription and summary
// available, triggering the remote job and waiting for it when needed.
//
// When the recording already carries both artifacts and force is unset,
// it short-circuits to StatusCompleted without any network call.
// The returned status is terminal, StatusProcessing is never returned;
// a deadline produces a *TimeoutError.
func (s *Service) EnsureGenerated(ctx context.Context, rec plaud.Recording, force bool) (plaud.Status, error) {
	if rec.HasTranscription && rec.HasSummary && !force {
		return plaud.StatusCompleted, nil
	}

	ok, err := s.api.TriggerGeneration(ctx, rec.ID)
	if err != nil {
		return plaud.StatusError, err
	}
	if !ok {
		return plaud.StatusError, fmt.Errorf("generation trigger rejected for %s", rec.ID)
	}

	if s.jobs != nil {
		if recordErr := s.jobs.Record(rec.ID, rec.Filename, time.Now()); recordErr != nil {
			// Tracking is an audit aid, never a reason to stop the job.
			s.logger.Warn("could not record pending job",
				"recording", rec.ID, "error", recordErr)
		}
	}

	status, waitErr := s.WaitUntilTerminal(ctx, rec.ID)
	if waitErr != nil {
		return status, waitErr
	}

	if s.jobs != nil && status == plaud.StatusCompleted {
		if completeErr := s.jobs.Complete(rec.ID); completeErr != nil {
			s.logger.Warn("could not clear pending job",
				"recording", rec.ID, "error", completeErr)
		}
	}

	return status, nil
}

// TriggerOnly starts the remote job and records it as pending without
// waiting. The same short-circuit as EnsureGenerated applies when both
// artifacts already exist.
func (s *Service) TriggerOnly(ctx context.Context, rec plaud.Recording, force bool) error {
	if rec.HasTranscription && rec.HasSummary && !force {
		return nil
	}

	ok, err := s.api.TriggerGeneration(ctx, rec.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("generation trigger rejected for %s", rec.ID)
	}

	if s.jobs != nil {
		if recordErr := s.jobs.Record(rec.ID, rec.Filename, time.Now()); recordErr != nil {
			s.logger.Warn("could not record pending job",
				"recording", rec.ID, "error", recordErr)
		}
	}
	return nil
}

// WaitUntilTerminal polls generation status at a fixed interval until a
// terminal status (completed, failed, unknown) is observed or MaxWait
// elapses. The loop suspends for the full interval between polls and is
// canceled through ctx.
//
// Transport errors during a single poll are logged and do not stop the
// loop; only a terminal status, cancellation, or the deadline ends it.
// A deadline returns the last observed status and a *TimeoutError.
func (s *Service) WaitUntilTerminal(ctx context.Context, recordingID string) (plaud.Status, error) {
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxWait := s.MaxWait
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()

	start := time.Now()
	last := plaud.StatusNotFound

	for {
		status, err := s.api.GenerationStatus(ctx, recordingID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			s.logger.Warn("status poll failed, will retry",
				"recording", recordingID, "error", err)
		case status.Terminal():
			s.logger.Debug("generation reached terminal status",
				"recording", recordingID, "status", status,
				"elapsed", time.Since(start).Round(time.Second))
			return status, nil
		default:
			last = status
			s.logger.Debug("generation still in progress",
				"recording", recordingID, "status", status)
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-deadline.C:
			return last, &TimeoutError{RecordingID: recordingID, Waited: maxWait}
		case <-time.After(interval):
		}
	}
}
