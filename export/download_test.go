package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newFastDownloader() *Downloader {
	d := NewDownloader()
	d.client.RetryWaitMin = time.Millisecond
	d.client.RetryWaitMax = 5 * time.Millisecond
	return d
}

func TestDownloadToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out", "rec.mp3")
	if err := newFastDownloader().DownloadToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("DownloadToFile() error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if string(data) != "audio payload" {
		t.Errorf("content = %q, want %q", data, "audio payload")
	}
}

func TestDownloadRetriesThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("eventually"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "rec.mp3")
	if err := newFastDownloader().DownloadToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("DownloadToFile() error after recovery: %v", err)
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "eventually" {
		t.Errorf("content = %q, want %q", data, "eventually")
	}
}

func TestDownloadExhaustsRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "rec.mp3")
	err := newFastDownloader().DownloadToFile(context.Background(), server.URL, dest)
	if err == nil {
		t.Fatal("DownloadToFile() = nil after persistent failures, want error")
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3 attempts total", calls)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination file exists after failed download")
	}
}

func TestDownloadClientErrorIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden) // expired signed URL
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "rec.mp3")
	if err := newFastDownloader().DownloadToFile(context.Background(), server.URL, dest); err == nil {
		t.Fatal("DownloadToFile() = nil on 403, want error")
	}
	if calls != 1 {
		t.Errorf("server saw %d calls, want 1", calls)
	}
}

func TestDownloadLeavesNoPartialFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("short"))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "rec.mp3")
	if err := newFastDownloader().DownloadToFile(context.Background(), server.URL, dest); err == nil {
		t.Fatal("DownloadToFile() = nil on truncated body, want error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory has %d entries after failed download, want 0", len(entries))
	}
}
