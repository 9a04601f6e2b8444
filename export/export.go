// Package export materializes recording artifacts (transcriptions,
// summaries, audio) as local files.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Wicz-Cloud/pai-note-exporter/logging"
	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
)

// Kind identifies what is being exported for a recording.
type Kind string

// Artifact kinds.
const (
	KindTranscription Kind = "transcription"
	KindSummary       Kind = "summary"
	KindAudio         Kind = "audio"
)

// Format is a rendered document format.
type Format string

// Supported document formats.
const (
	FormatTXT  Format = "TXT"
	FormatDOCX Format = "DOCX"
	FormatPDF  Format = "PDF"
	FormatSRT  Format = "SRT"
)

// ParseFormat parses a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(s)) {
	case FormatTXT:
		return FormatTXT, nil
	case FormatDOCX:
		return FormatDOCX, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatSRT:
		return FormatSRT, nil
	}
	return "", fmt.Errorf("unsupported format %q (must be txt, docx, pdf, or srt)", s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return strings.ToLower(string(f))
}

// API is the subset of the Plaud client the exporter needs.
type API interface {
	ExportDocument(ctx context.Context, req plaud.ExportRequest) ([]byte, error)
	TranscriptText(ctx context.Context, recordingID string) (string, bool, error)
	TempMediaURL(ctx context.Context, recordingID string) (string, error)
}

// Exporter fetches artifact content and writes it under OutputDir.
type Exporter struct {
	api       API
	downloads *Downloader
	logger    *slog.Logger

	// OutputDir receives artifact files; created on demand.
	OutputDir string
}

// New creates an Exporter writing into outputDir.
func New(api API, outputDir string) *Exporter {
	return &Exporter{
		api:       api,
		downloads: NewDownloader(),
		logger:    logging.Logger("export"),
		OutputDir: outputDir,
	}
}

// ContentOptions tunes a document export.
type ContentOptions struct {
	// WithSpeaker and WithTimestamp annotate transcription renders.
	WithSpeaker   bool
	WithTimestamp bool

	// SummaryContent is previously fetched summary text passed through
	// for summary renders. Ignored for transcriptions, whose content is
	// always rendered server-side.
	SummaryContent string
}

// ExportContent renders a transcription or summary server-side and
// returns the document bytes. KindAudio is not a document; use
// ExportAudio.
func (e *Exporter) ExportContent(ctx context.Context, rec plaud.Recording, kind Kind, format Format, opts ContentOptions) ([]byte, error) {
	var promptType string
	switch kind {
	case KindTranscription:
		promptType = plaud.PromptTranscription
	case KindSummary:
		promptType = plaud.PromptSummary
	default:
		return nil, fmt.Errorf("kind %q is not a document kind", kind)
	}

	data, err := e.api.ExportDocument(ctx, plaud.ExportRequest{
		RecordingID:    rec.ID,
		PromptType:     promptType,
		Format:         string(format),
		Title:          rec.Filename,
		CreateTime:     rec.CreatedAt().Format("2006-01-02 15:04:05"),
		WithSpeaker:    opts.WithSpeaker,
		WithTimestamp:  opts.WithTimestamp,
		SummaryContent: opts.SummaryContent,
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SaveContent renders the document and writes it to the artifact path
// for (recording, kind, format). Returns the written path.
func (e *Exporter) SaveContent(ctx context.Context, rec plaud.Recording, kind Kind, format Format, opts ContentOptions) (string, error) {
	data, err := e.ExportContent(ctx, rec, kind, format, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.OutputDir, ArtifactFilename(rec.Filename, kind, format))
	if writeErr := writeFileAtomic(path, data); writeErr != nil {
		return "", fmt.Errorf("save %s: %w", kind, writeErr)
	}

	e.logger.Info("artifact saved", "recording", rec.ID, "kind", kind, "path", path)
	return path, nil
}

// TranscriptText fetches the raw transcript text for a recording.
// ok is false when no transcript exists yet; that is not an error.
func (e *Exporter) TranscriptText(ctx context.Context, recordingID string) (text string, ok bool, err error) {
	return e.api.TranscriptText(ctx, recordingID)
}

// ExportAudio resolves the recording's temporary media URL and streams
// the audio to disk. Returns the written path.
func (e *Exporter) ExportAudio(ctx context.Context, rec plaud.Recording) (string, error) {
	url, err := e.api.TempMediaURL(ctx, rec.ID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.OutputDir, ArtifactFilename(rec.Filename, KindAudio, ""))
	if dlErr := e.downloads.DownloadToFile(ctx, url, path); dlErr != nil {
		return "", dlErr
	}

	e.logger.Info("audio saved", "recording", rec.ID, "path", path)
	return path, nil
}

// writeFileAtomic writes data to a temp file in the destination
// directory and renames it into place, so an interrupted run never
// leaves a file that looks complete.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
