package plaud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt types accepted by the document export endpoint.
const (
	PromptTranscription = "trans"
	PromptSummary       = "summary"
)

// ExportRequest describes a server-side document render.
type ExportRequest struct {
	RecordingID string
	// PromptType is PromptTranscription or PromptSummary.
	PromptType string
	// Format is the rendered format: TXT, DOCX, PDF or SRT.
	Format        string
	Title         string
	CreateTime    string
	WithSpeaker   bool
	WithTimestamp bool
	// SummaryContent is previously fetched summary text, passed through
	// for summary renders. Transcription content is always generated
	// server-side and must not be supplied.
	SummaryContent string
}

// exportPayload is the wire shape of an export request.
type exportPayload struct {
	FileID         string `json:"file_id"`
	PromptType     string `json:"prompt_type"`
	ToFormat       string `json:"to_format"`
	Title          string `json:"title"`
	CreateTime     string `json:"create_time"`
	WithSpeaker    int    `json:"with_speaker"`
	WithTimestamp  int    `json:"with_timestamp"`
	SummaryContent string `json:"summary_content,omitempty"`
}

// ExportDocument renders a transcription or summary server-side and
// returns the document bytes.
//
// The endpoint's answer is not uniform: some formats come back as raw
// bytes, others as a JSON envelope whose data field carries the
// content. Both shapes are normalized to plain bytes here.
func (c *Client) ExportDocument(ctx context.Context, req ExportRequest) ([]byte, error) {
	payload := exportPayload{
		FileID:        req.RecordingID,
		PromptType:    req.PromptType,
		ToFormat:      strings.ToUpper(req.Format),
		Title:         req.Title,
		CreateTime:    req.CreateTime,
		WithSpeaker:   boolFlag(req.WithSpeaker),
		WithTimestamp: boolFlag(req.WithTimestamp),
	}
	if req.PromptType == PromptSummary && req.SummaryContent != "" {
		payload.SummaryContent = req.SummaryContent
	}

	data, contentType, err := c.http.PostRaw(ctx, "/file/document/export", payload)
	if err != nil {
		return nil, fmt.Errorf("export document: %w", err)
	}

	if !strings.HasPrefix(contentType, "application/json") {
		return data, nil
	}

	var resp struct {
		envelope
		Data string `json:"data"`
	}
	if unmarshalErr := json.Unmarshal(data, &resp); unmarshalErr != nil {
		// JSON content type but not the envelope; assume raw document.
		return data, nil
	}
	if resp.Status != 0 {
		return nil, fmt.Errorf("export document: provider error: %s", resp.Msg)
	}
	if resp.Data != "" {
		return []byte(resp.Data), nil
	}
	return data, nil
}

// transcriptStrategy is one way of obtaining raw transcript text.
// Strategies return empty with nil error when they find nothing.
type transcriptStrategy func(ctx context.Context, recordingID string) (string, error)

// TranscriptText fetches raw transcript text, trying each known
// endpoint in order until one yields content. Returns ("", false, nil)
// when no transcript exists yet; that is not an error.
func (c *Client) TranscriptText(ctx context.Context, recordingID string) (string, bool, error) {
	strategies := []transcriptStrategy{
		c.transcriptFromTranssumm,
		c.transcriptFromFileDetail,
		c.transcriptFromQueryNote,
	}

	for _, strategy := range strategies {
		text, err := strategy(ctx, recordingID)
		if err != nil {
			// A failing endpoint is not fatal; the next strategy may
			// still succeed.
			c.logger.Debug("transcript strategy failed",
				"recording", recordingID, "error", err)
			continue
		}
		if text != "" {
			return text, true, nil
		}
	}

	return "", false, nil
}

func (c *Client) transcriptFromTranssumm(ctx context.Context, recordingID string) (string, error) {
	var resp transsummResponse
	if err := c.http.Get(ctx, "/ai/transsumm/"+recordingID, &resp); err != nil {
		return "", err
	}
	return joinSegments(resp.Data.TransResult), nil
}

func (c *Client) transcriptFromFileDetail(ctx context.Context, recordingID string) (string, error) {
	var resp transsummResponse
	if err := c.http.Get(ctx, "/file/"+recordingID, &resp); err != nil {
		return "", err
	}
	return joinSegments(resp.Data.TransResult), nil
}

func (c *Client) transcriptFromQueryNote(ctx context.Context, recordingID string) (string, error) {
	var resp queryNoteResponse
	headers := map[string]string{"file-id": recordingID}
	if err := c.http.GetWithHeaders(ctx, "/ai/query_note", headers, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Data[0].DataContent), nil
}

// TempMediaURL obtains a short-lived signed URL for the original audio.
func (c *Client) TempMediaURL(ctx context.Context, recordingID string) (string, error) {
	var resp tempURLResponse
	if err := c.http.Get(ctx, "/file/temp-url/"+recordingID, &resp); err != nil {
		return "", fmt.Errorf("get temp url: %w", err)
	}

	if !strings.HasPrefix(resp.TempURL, "https://") {
		return "", fmt.Errorf("get temp url: invalid url %q", resp.TempURL)
	}

	return resp.TempURL, nil
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
