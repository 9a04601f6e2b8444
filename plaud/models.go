package plaud

import (
	"fmt"
	"strings"
	"time"
)

// Recording is an immutable snapshot of one recording as returned by the
// catalog. It is never mutated locally; a fresh list call produces fresh
// snapshots.
type Recording struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	Duration         int    `json:"duration"` // seconds
	HasTranscription bool   `json:"is_trans"`
	HasSummary       bool   `json:"is_summ"`
	FileType         string `json:"file_type"`
	StartTime        int64  `json:"start_time"` // unix seconds
	IsTrashed        bool   `json:"is_trash"`
}

// CreatedAt returns the recording's creation time.
func (r Recording) CreatedAt() time.Time {
	return time.Unix(r.StartTime, 0)
}

// IsAudioOnly reports whether the recording is an audio file that has no
// transcription yet, i.e. a candidate for generation.
func (r Recording) IsAudioOnly() bool {
	if r.HasTranscription {
		return false
	}
	switch strings.ToLower(r.FileType) {
	case "mp3", "wav", "m4a", "aac", "ogg":
		return true
	}
	return false
}

// DisplayLine formats the recording for terminal listings.
func (r Recording) DisplayLine() string {
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("[%s] %s - %d:%02d - %s",
		id, r.Filename, r.Duration/60, r.Duration%60,
		r.CreatedAt().Format("2006-01-02 15:04:05"))
}

// Status is a generation status observed from the provider.
type Status string

// Generation status values. Completed, Failed and Unknown are terminal:
// no further change is expected without a new trigger. Unknown means the
// provider answered but the answer was unparseable or ambiguous; it is
// not an error.
const (
	StatusCompleted  Status = "completed"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
	StatusNotFound   Status = "not_found"
	StatusUnknown    Status = "unknown"
	StatusError      Status = "error"
)

// Terminal reports whether no further polling can change the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusUnknown:
		return true
	}
	return false
}

// envelope is the provider's standard response wrapper. status 0 means
// success; -1 carries a business failure with msg.
type envelope struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// ProviderStatus implements the shared client's status check.
func (e envelope) ProviderStatus() int { return e.Status }

// ProviderMessage implements the shared client's status check.
func (e envelope) ProviderMessage() string { return e.Msg }

// listResponse wraps the catalog listing.
type listResponse struct {
	envelope
	Files []Recording `json:"data_file_list"`
}

// transSegment is one segment of a transcript.
type transSegment struct {
	Content string `json:"content"`
}

// transsummResponse wraps transcript data from /ai/transsumm and /file/{id}.
type transsummResponse struct {
	envelope
	Data struct {
		TransStatus string         `json:"trans_status"`
		TransResult []transSegment `json:"trans_result"`
	} `json:"data"`
}

// queryNoteResponse wraps /ai/query_note, which returns note entries
// whose data_content holds the transcript text.
type queryNoteResponse struct {
	envelope
	Data []struct {
		DataContent string `json:"data_content"`
	} `json:"data"`
}

// tempURLResponse wraps /file/temp-url/{id}.
type tempURLResponse struct {
	envelope
	TempURL string `json:"temp_url"`
}

// loginResponse wraps /auth/login-email.
type loginResponse struct {
	envelope
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// joinSegments concatenates transcript segments with single spaces,
// dropping empties.
func joinSegments(segments []transSegment) string {
	var sb strings.Builder
	for _, seg := range segments {
		if seg.Content == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(seg.Content)
	}
	return sb.String()
}
