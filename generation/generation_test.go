package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
)

// fakeAPI scripts trigger and status answers.
type fakeAPI struct {
	triggerCalls int
	triggerErr   error

	statusCalls int
	statuses    []plaud.Status
	statusErrs  []error
}

func (f *fakeAPI) TriggerGeneration(ctx context.Context, recordingID string) (bool, error) {
	f.triggerCalls++
	if f.triggerErr != nil {
		return false, f.triggerErr
	}
	return true, nil
}

func (f *fakeAPI) GenerationStatus(ctx context.Context, recordingID string) (plaud.Status, error) {
	i := f.statusCalls
	f.statusCalls++
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	var err error
	if i < len(f.statusErrs) {
		err = f.statusErrs[i]
	}
	return f.statuses[i], err
}

// fakeRecorder captures tracking calls.
type fakeRecorder struct {
	recorded  []string
	completed []string
	recordErr error
}

func (f *fakeRecorder) Record(recordingID, filename string, triggeredAt time.Time) error {
	f.recorded = append(f.recorded, recordingID)
	return f.recordErr
}

func (f *fakeRecorder) Complete(recordingID string) error {
	f.completed = append(f.completed, recordingID)
	return nil
}

func newTestService(api API, jobs Recorder) *Service {
	s := NewService(api, jobs)
	s.PollInterval = 5 * time.Millisecond
	s.MaxWait = 200 * time.Millisecond
	return s
}

func TestEnsureGeneratedShortCircuit(t *testing.T) {
	api := &fakeAPI{}
	rec := plaud.Recording{ID: "rec-1", HasTranscription: true, HasSummary: true}

	status, err := newTestService(api, nil).EnsureGenerated(context.Background(), rec, false)
	if err != nil {
		t.Fatalf("EnsureGenerated() error: %v", err)
	}
	if status != plaud.StatusCompleted {
		t.Errorf("status = %s, want %s", status, plaud.StatusCompleted)
	}
	// Existing artifacts mean no trigger and no polling.
	if api.triggerCalls != 0 || api.statusCalls != 0 {
		t.Errorf("API calls = %d trigger, %d status; want none",
			api.triggerCalls, api.statusCalls)
	}
}

func TestEnsureGeneratedForceBypassesShortCircuit(t *testing.T) {
	api := &fakeAPI{statuses: []plaud.Status{plaud.StatusCompleted}}
	rec := plaud.Recording{ID: "rec-1", HasTranscription: true, HasSummary: true}

	status, err := newTestService(api, nil).EnsureGenerated(context.Background(), rec, true)
	if err != nil {
		t.Fatalf("EnsureGenerated() error: %v", err)
	}
	if status != plaud.StatusCompleted {
		t.Errorf("status = %s, want %s", status, plaud.StatusCompleted)
	}
	if api.triggerCalls != 1 {
		t.Errorf("trigger calls = %d, want 1", api.triggerCalls)
	}
}

func TestEnsureGeneratedTracksJob(t *testing.T) {
	api := &fakeAPI{statuses: []plaud.Status{plaud.StatusProcessing, plaud.StatusCompleted}}
	jobs := &fakeRecorder{}
	rec := plaud.Recording{ID: "rec-1", Filename: "standup"}

	status, err := newTestService(api, jobs).EnsureGenerated(context.Background(), rec, false)
	if err != nil {
		t.Fatalf("EnsureGenerated() error: %v", err)
	}
	if status != plaud.StatusCompleted {
		t.Errorf("status = %s, want %s", status, plaud.StatusCompleted)
	}
	if len(jobs.recorded) != 1 || jobs.recorded[0] != "rec-1" {
		t.Errorf("recorded = %v, want [rec-1]", jobs.recorded)
	}
	if len(jobs.completed) != 1 || jobs.completed[0] != "rec-1" {
		t.Errorf("completed = %v, want [rec-1]", jobs.completed)
	}
}

func TestEnsureGeneratedTrackerFailureIsNotFatal(t *testing.T) {
	api := &fakeAPI{statuses: []plaud.Status{plaud.StatusCompleted}}
	jobs := &fakeRecorder{recordErr: errors.New("disk full")}
	rec := plaud.Recording{ID: "rec-1"}

	status, err := newTestService(api, jobs).EnsureGenerated(context.Background(), rec, false)
	if err != nil {
		t.Fatalf("EnsureGenerated() error = %v, want tracking failures swallowed", err)
	}
	if status != plaud.StatusCompleted {
		t.Errorf("status = %s, want %s", status, plaud.StatusCompleted)
	}
}

func TestTriggerOnly(t *testing.T) {
	api := &fakeAPI{}
	jobs := &fakeRecorder{}
	rec := plaud.Recording{ID: "rec-1", Filename: "standup"}

	if err := newTestService(api, jobs).TriggerOnly(context.Background(), rec, false); err != nil {
		t.Fatalf("TriggerOnly() error: %v", err)
	}
	if api.triggerCalls != 1 {
		t.Errorf("trigger calls = %d, want 1", api.triggerCalls)
	}
	if api.statusCalls != 0 {
		t.Errorf("status calls = %d, want 0 (no waiting)", api.statusCalls)
	}
	if len(jobs.recorded) != 1 {
		t.Errorf("recorded = %v, want [rec-1]", jobs.recorded)
	}
	if len(jobs.completed) != 0 {
		t.Errorf("completed = %v, want none", jobs.completed)
	}
}

func TestTriggerOnlyShortCircuit(t *testing.T) {
	api := &fakeAPI{}
	rec := plaud.Recording{ID: "rec-1", HasTranscription: true, HasSummary: true}

	if err := newTestService(api, nil).TriggerOnly(context.Background(), rec, false); err != nil {
		t.Fatalf("TriggerOnly() error: %v", err)
	}
	if api.triggerCalls != 0 {
		t.Errorf("trigger calls = %d, want 0", api.triggerCalls)
	}
}

func TestWaitUntilTerminal(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []plaud.Status
		want      plaud.Status
		wantPolls int
	}{
		{
			name:      "immediately completed",
			statuses:  []plaud.Status{plaud.StatusCompleted},
			want:      plaud.StatusCompleted,
			wantPolls: 1,
		},
		{
			name: "three processing polls then completed",
			statuses: []plaud.Status{
				plaud.StatusProcessing, plaud.StatusProcessing,
				plaud.StatusProcessing, plaud.StatusCompleted,
			},
			want:      plaud.StatusCompleted,
			wantPolls: 4,
		},
		{
			name:      "failed is terminal",
			statuses:  []plaud.Status{plaud.StatusProcessing, plaud.StatusFailed},
			want:      plaud.StatusFailed,
			wantPolls: 2,
		},
		{
			name:      "unknown is terminal",
			statuses:  []plaud.Status{plaud.StatusUnknown},
			want:      plaud.StatusUnknown,
			wantPolls: 1,
		},
		{
			name:      "not found keeps polling",
			statuses:  []plaud.Status{plaud.StatusNotFound, plaud.StatusProcessing, plaud.StatusCompleted},
			want:      plaud.StatusCompleted,
			wantPolls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{statuses: tt.statuses}

			status, err := newTestService(api, nil).WaitUntilTerminal(context.Background(), "rec-1")
			if err != nil {
				t.Fatalf("WaitUntilTerminal() error: %v", err)
			}
			if status != tt.want {
				t.Errorf("status = %s, want %s", status, tt.want)
			}
			if api.statusCalls != tt.wantPolls {
				t.Errorf("polls = %d, want %d", api.statusCalls, tt.wantPolls)
			}
		})
	}
}

func TestWaitUntilTerminalTransportErrorsAreNotFatal(t *testing.T) {
	api := &fakeAPI{
		statuses:   []plaud.Status{plaud.StatusError, plaud.StatusError, plaud.StatusCompleted},
		statusErrs: []error{errors.New("connection reset"), errors.New("connection reset"), nil},
	}

	status, err := newTestService(api, nil).WaitUntilTerminal(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("WaitUntilTerminal() error = %v, want recovery after transient polls", err)
	}
	if status != plaud.StatusCompleted {
		t.Errorf("status = %s, want %s", status, plaud.StatusCompleted)
	}
	if api.statusCalls != 3 {
		t.Errorf("polls = %d, want 3", api.statusCalls)
	}
}

func TestWaitUntilTerminalTimeout(t *testing.T) {
	api := &fakeAPI{statuses: []plaud.Status{plaud.StatusProcessing}}
	svc := newTestService(api, nil)
	svc.MaxWait = 30 * time.Millisecond

	status, err := svc.WaitUntilTerminal(context.Background(), "rec-1")

	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("WaitUntilTerminal() error = %v, want *TimeoutError", err)
	}
	if timeout.RecordingID != "rec-1" {
		t.Errorf("RecordingID = %q, want rec-1", timeout.RecordingID)
	}
	// A deadline is not a failure verdict; the last observed status
	// comes back so the caller can report it.
	if status != plaud.StatusProcessing {
		t.Errorf("status = %s, want %s", status, plaud.StatusProcessing)
	}
}

func TestWaitUntilTerminalCancellation(t *testing.T) {
	api := &fakeAPI{statuses: []plaud.Status{plaud.StatusProcessing}}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	_, err := newTestService(api, nil).WaitUntilTerminal(ctx, "rec-1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("WaitUntilTerminal() error = %v, want context.Canceled", err)
	}
}
