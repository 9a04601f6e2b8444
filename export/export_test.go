package export

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
)

// fakeAPI scripts the content endpoints.
type fakeAPI struct {
	document    []byte
	documentErr error
	lastRequest plaud.ExportRequest

	transcript string
	mediaURL   string
	mediaErr   error
}

func (f *fakeAPI) ExportDocument(ctx context.Context, req plaud.ExportRequest) ([]byte, error) {
	f.lastRequest = req
	return f.document, f.documentErr
}

func (f *fakeAPI) TranscriptText(ctx context.Context, recordingID string) (string, bool, error) {
	return f.transcript, f.transcript != "", nil
}

func (f *fakeAPI) TempMediaURL(ctx context.Context, recordingID string) (string, error) {
	return f.mediaURL, f.mediaErr
}

func TestSaveContent(t *testing.T) {
	api := &fakeAPI{document: []byte("the transcript")}
	dir := t.TempDir()
	exporter := New(api, dir)

	rec := plaud.Recording{ID: "rec-1", Filename: "standup", StartTime: time.Now().Unix()}

	path, err := exporter.SaveContent(context.Background(), rec, KindTranscription, FormatTXT,
		ContentOptions{WithSpeaker: true})
	if err != nil {
		t.Fatalf("SaveContent() error: %v", err)
	}

	if want := filepath.Join(dir, "standup_transcript.txt"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "the transcript" {
		t.Errorf("content = %q, want %q", data, "the transcript")
	}

	if api.lastRequest.PromptType != plaud.PromptTranscription {
		t.Errorf("PromptType = %q, want %q", api.lastRequest.PromptType, plaud.PromptTranscription)
	}
	if !api.lastRequest.WithSpeaker {
		t.Error("WithSpeaker not forwarded")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", entry.Name())
		}
	}
}

func TestSaveContentSummaryPassesContent(t *testing.T) {
	api := &fakeAPI{document: []byte("summary doc")}
	exporter := New(api, t.TempDir())
	rec := plaud.Recording{ID: "rec-1", Filename: "standup"}

	_, err := exporter.SaveContent(context.Background(), rec, KindSummary, FormatTXT,
		ContentOptions{SummaryContent: "bullet points"})
	if err != nil {
		t.Fatalf("SaveContent() error: %v", err)
	}
	if api.lastRequest.PromptType != plaud.PromptSummary {
		t.Errorf("PromptType = %q, want %q", api.lastRequest.PromptType, plaud.PromptSummary)
	}
	if api.lastRequest.SummaryContent != "bullet points" {
		t.Errorf("SummaryContent = %q, want forwarded", api.lastRequest.SummaryContent)
	}
}

func TestSaveContentPropagatesAPIError(t *testing.T) {
	api := &fakeAPI{documentErr: errors.New("not ready")}
	exporter := New(api, t.TempDir())

	_, err := exporter.SaveContent(context.Background(), plaud.Recording{ID: "rec-1", Filename: "x"},
		KindTranscription, FormatTXT, ContentOptions{})
	if err == nil {
		t.Fatal("SaveContent() = nil, want the API error")
	}

	// Nothing half-written on failure.
	entries, _ := os.ReadDir(exporter.OutputDir)
	if len(entries) != 0 {
		t.Errorf("output dir has %d entries after failed export, want 0", len(entries))
	}
}

func TestExportContentRejectsAudioKind(t *testing.T) {
	exporter := New(&fakeAPI{}, t.TempDir())

	_, err := exporter.ExportContent(context.Background(), plaud.Recording{ID: "rec-1"},
		KindAudio, FormatTXT, ContentOptions{})
	if err == nil {
		t.Fatal("ExportContent() accepted KindAudio, want error")
	}
}

func TestExportAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ID3 audio bytes"))
	}))
	defer server.Close()

	api := &fakeAPI{mediaURL: server.URL + "/rec-1.mp3"}
	dir := t.TempDir()
	exporter := New(api, dir)

	path, err := exporter.ExportAudio(context.Background(), plaud.Recording{ID: "rec-1", Filename: "standup"})
	if err != nil {
		t.Fatalf("ExportAudio() error: %v", err)
	}
	if want := filepath.Join(dir, "standup.mp3"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != "ID3 audio bytes" {
		t.Errorf("content = %q, want streamed audio", data)
	}
}

func TestExportAudioURLFailure(t *testing.T) {
	api := &fakeAPI{mediaErr: errors.New("no signed url")}
	exporter := New(api, t.TempDir())

	_, err := exporter.ExportAudio(context.Background(), plaud.Recording{ID: "rec-1", Filename: "x"})
	if err == nil {
		t.Fatal("ExportAudio() = nil, want the URL error")
	}
}
