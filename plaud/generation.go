package plaud

import (
	"context"
	"errors"
	"fmt"

	pnehttp "github.com/Wicz-Cloud/pai-note-exporter/http"
)

// triggerRequest is the payload for starting transcription and summary
// generation. The info field is forwarded verbatim to the provider's
// pipeline configuration.
type triggerRequest struct {
	IsReload       int    `json:"is_reload"`
	SummType       string `json:"summ_type"`
	SummTypeType   string `json:"summ_type_type"`
	Info           string `json:"info"`
	SupportMulSumm bool   `json:"support_mul_summ"`
}

// TriggerGeneration requests transcription and summary generation for a
// recording. A conflict response (generation already running or already
// done) counts as success: the remote job exists either way, so the
// trigger is idempotent from the caller's point of view.
func (c *Client) TriggerGeneration(ctx context.Context, recordingID string) (bool, error) {
	body := triggerRequest{
		SummType:       "AUTO-SELECT",
		SummTypeType:   "system",
		Info:           `{"language":"auto","diarization":1,"llm":"auto"}`,
		SupportMulSumm: true,
	}

	var resp envelope
	err := c.http.Post(ctx, "/ai/transsumm/"+recordingID, body, &resp)
	if err != nil {
		if pnehttp.IsConflict(err) {
			c.logger.Debug("generation already in progress", "recording", recordingID)
			return true, nil
		}
		return false, fmt.Errorf("trigger generation: %w", err)
	}

	c.logger.Info("triggered generation", "recording", recordingID)
	return true, nil
}

// GenerationStatus performs a single status check. It never loops.
//
// Mapping: a 404 means the job is not registered server-side yet
// (StatusNotFound, distinct from an error); an unparseable or
// unrecognized answer is StatusUnknown; transport and HTTP failures
// return StatusError together with the error.
func (c *Client) GenerationStatus(ctx context.Context, recordingID string) (Status, error) {
	var resp transsummResponse
	err := c.http.Get(ctx, "/ai/transsumm/"+recordingID, &resp)
	if err != nil {
		if pnehttp.IsNotFound(err) {
			return StatusNotFound, nil
		}
		var apiErr *pnehttp.APIError
		if errors.As(err, &apiErr) && apiErr.BusinessFailure {
			// The provider answered but rejected the query; treat as an
			// ambiguous answer rather than a transport fault.
			c.logger.Debug("ambiguous status answer",
				"recording", recordingID, "msg", apiErr.Message)
			return StatusUnknown, nil
		}
		return StatusError, err
	}

	switch resp.Data.TransStatus {
	case "complete", "completed", "done":
		return StatusCompleted, nil
	case "processing", "pending", "running", "queued":
		return StatusProcessing, nil
	case "failed", "error":
		return StatusFailed, nil
	case "":
		// Older revisions of the endpoint omit trans_status and return
		// the transcript directly once it exists.
		if len(resp.Data.TransResult) > 0 {
			return StatusCompleted, nil
		}
		return StatusUnknown, nil
	default:
		c.logger.Debug("unrecognized generation status",
			"recording", recordingID, "trans_status", resp.Data.TransStatus)
		return StatusUnknown, nil
	}
}
