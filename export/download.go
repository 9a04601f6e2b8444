package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Wicz-Cloud/pai-note-exporter/logging"
)

// Download retry policy: three attempts, delay doubling from the
// initial wait. Media URLs are signed and short-lived, so the retries
// stay tight.
const (
	downloadRetries   = 2 // retries after the first attempt
	downloadRetryWait = 1 * time.Second
	downloadTimeout   = 60 * time.Second
)

// Downloader streams media blobs to disk.
type Downloader struct {
	client *retryablehttp.Client
	logger *slog.Logger
}

// NewDownloader creates a Downloader with the bounded retry policy.
func NewDownloader() *Downloader {
	client := retryablehttp.NewClient()
	client.RetryMax = downloadRetries
	client.RetryWaitMin = downloadRetryWait
	client.RetryWaitMax = downloadRetryWait * (1 << downloadRetries)
	client.HTTPClient.Timeout = downloadTimeout
	client.Logger = nil

	return &Downloader{
		client: client,
		logger: logging.Logger("download"),
	}
}

// DownloadToFile streams the URL's content to destination, creating
// parent directories. The payload is copied in chunks and never held in
// memory whole. Writes go to a temp path renamed into place on success;
// a failed or canceled download leaves no destination file.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destination string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	dir := filepath.Dir(destination)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(destination)+".part-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if copyErr != nil {
			return fmt.Errorf("write download: %w", copyErr)
		}
		return fmt.Errorf("write download: %w", closeErr)
	}

	if err := os.Rename(tmpName, destination); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalize download: %w", err)
	}

	d.logger.Debug("download complete", "destination", destination, "bytes", written)
	return nil
}
