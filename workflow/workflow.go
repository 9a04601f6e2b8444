// Package workflow drives the end-to-end export batch: fast-path export
// of recordings that already have transcriptions, then generation and
// export for the rest.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Wicz-Cloud/pai-note-exporter/export"
	"github.com/Wicz-Cloud/pai-note-exporter/generation"
	"github.com/Wicz-Cloud/pai-note-exporter/logging"
	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
)

// DefaultWorkers bounds batch concurrency. Small on purpose: the
// provider throttles aggressive clients.
const DefaultWorkers = 3

// interPhasePause separates the fast-path phase from the generation
// phase, letting the rate limiter refill before the slow work starts.
const interPhasePause = 1 * time.Second

// Generator is the generation state machine the runner drives.
type Generator interface {
	EnsureGenerated(ctx context.Context, rec plaud.Recording, force bool) (plaud.Status, error)
	TriggerOnly(ctx context.Context, rec plaud.Recording, force bool) error
}

// Exporter materializes artifacts for a recording.
type Exporter interface {
	SaveContent(ctx context.Context, rec plaud.Recording, kind export.Kind, format export.Format, opts export.ContentOptions) (string, error)
	ExportAudio(ctx context.Context, rec plaud.Recording) (string, error)
}

// Options configures a batch run.
type Options struct {
	// Format for rendered documents.
	Format export.Format

	// IncludeAudio also downloads the original media.
	IncludeAudio bool

	// SkipTranscription leaves documents alone (audio-only runs).
	SkipTranscription bool

	// Force re-triggers generation even when artifacts already exist.
	Force bool

	// Wait enables waiting for triggered generations. When false,
	// recordings needing generation are triggered and left pending.
	Wait bool

	// Workers bounds concurrent recording processing per phase.
	Workers int
}

// Runner executes export batches.
type Runner struct {
	gen      Generator
	exporter Exporter
	logger   *slog.Logger
	opts     Options
}

// NewRunner creates a Runner.
func NewRunner(gen Generator, exporter Exporter, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Format == "" {
		opts.Format = export.FormatTXT
	}
	return &Runner{
		gen:      gen,
		exporter: exporter,
		logger:   logging.Logger("workflow"),
		opts:     opts,
	}
}

// Run processes the selected recordings and returns a report.
//
// Recordings are handled in two phases: those that already have a
// transcription are exported first so useful output lands quickly, then
// the rest go through trigger-wait-export. Each recording is processed
// independently; one failure is recorded and never aborts its siblings.
// Cancellation stops scheduling and propagates into in-flight waits.
func (r *Runner) Run(ctx context.Context, recordings []plaud.Recording) *Report {
	report := &Report{Total: len(recordings)}

	var ready, needsGeneration []plaud.Recording
	for _, rec := range recordings {
		if rec.HasTranscription && !r.opts.Force {
			ready = append(ready, rec)
		} else {
			needsGeneration = append(needsGeneration, rec)
		}
	}

	r.logger.Info("starting batch",
		"total", len(recordings),
		"ready", len(ready),
		"needs_generation", len(needsGeneration))

	r.runPhase(ctx, ready, report, r.exportRecording)

	if len(needsGeneration) > 0 && ctx.Err() == nil {
		if len(ready) > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interPhasePause):
			}
		}
		r.runPhase(ctx, needsGeneration, report, r.generateAndExport)
	}

	return report
}

// phaseFn processes one recording and returns the artifact paths it wrote.
type phaseFn func(ctx context.Context, rec plaud.Recording) ([]string, error)

// runPhase fans recordings out over a bounded worker pool. Worker
// errors are converted into report entries, never returned, so the
// group only stops early on cancellation.
func (r *Runner) runPhase(ctx context.Context, recordings []plaud.Recording, report *Report, process phaseFn) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for _, rec := range recordings {
		if ctx.Err() != nil {
			report.recordFailure(rec.ID, rec.Filename, ctx.Err())
			continue
		}
		rec := rec
		g.Go(func() error {
			paths, err := process(ctx, rec)
			if err != nil {
				r.logger.Warn("recording failed",
					"recording", rec.ID, "filename", rec.Filename, "error", err)
				report.recordFailure(rec.ID, rec.Filename, err)
				return nil
			}
			report.recordSuccess(paths...)
			return nil
		})
	}

	_ = g.Wait()
}

// exportRecording is the fast path for recordings whose artifacts
// already exist remotely.
func (r *Runner) exportRecording(ctx context.Context, rec plaud.Recording) ([]string, error) {
	var paths []string

	if !r.opts.SkipTranscription {
		path, err := r.exporter.SaveContent(ctx, rec, export.KindTranscription, r.opts.Format, export.ContentOptions{
			WithSpeaker:   true,
			WithTimestamp: true,
		})
		if err != nil {
			return paths, fmt.Errorf("export transcription: %w", err)
		}
		paths = append(paths, path)

		if rec.HasSummary {
			path, err := r.exporter.SaveContent(ctx, rec, export.KindSummary, r.opts.Format, export.ContentOptions{})
			if err != nil {
				return paths, fmt.Errorf("export summary: %w", err)
			}
			paths = append(paths, path)
		}
	}

	if r.opts.IncludeAudio {
		path, err := r.exporter.ExportAudio(ctx, rec)
		if err != nil {
			return paths, fmt.Errorf("download audio: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// generateAndExport triggers generation, waits for a terminal status,
// and exports on success.
func (r *Runner) generateAndExport(ctx context.Context, rec plaud.Recording) ([]string, error) {
	if !r.opts.Wait {
		// Trigger-only mode: kick the job off and leave it tracked for
		// a later run.
		if err := r.gen.TriggerOnly(ctx, rec, r.opts.Force); err != nil {
			return nil, err
		}
		r.logger.Info("generation triggered, not waiting", "recording", rec.ID)
		return nil, nil
	}

	status, err := r.gen.EnsureGenerated(ctx, rec, r.opts.Force)
	if err != nil {
		var timeout *generation.TimeoutError
		if errors.As(err, &timeout) {
			return nil, fmt.Errorf("still generating: %w", timeout)
		}
		return nil, err
	}

	switch status {
	case plaud.StatusCompleted:
		// Fresh snapshot flags: generation just finished, so both
		// artifacts exist regardless of what the listing said.
		generated := rec
		generated.HasTranscription = true
		generated.HasSummary = true
		return r.exportRecording(ctx, generated)
	case plaud.StatusFailed:
		return nil, fmt.Errorf("generation failed for %s", rec.ID)
	default:
		return nil, fmt.Errorf("generation status %s for %s; try again later", status, rec.ID)
	}
}
