package plaud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// notTrashed is the is_trash query value selecting recordings outside
// the trash.
const notTrashed = 2

// ListOptions controls catalog pagination and ordering. Pagination is
// caller-controlled; ListRecordings never auto-paginates.
type ListOptions struct {
	Limit      int
	Skip       int
	SortBy     string // e.g. "start_time"
	Descending bool
}

// ListRecordings lists recordings in server-provided order (typically
// newest first). Trashed recordings are filtered out client-side even
// though the request already asks the server to exclude them; the
// server-side filter has been observed to leak.
func (c *Client) ListRecordings(ctx context.Context, opts ListOptions) ([]Recording, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.SortBy == "" {
		opts.SortBy = "start_time"
		opts.Descending = true
	}

	q := url.Values{}
	q.Set("skip", strconv.Itoa(opts.Skip))
	q.Set("limit", strconv.Itoa(opts.Limit))
	q.Set("is_trash", strconv.Itoa(notTrashed))
	q.Set("sort_by", opts.SortBy)
	q.Set("is_desc", strconv.FormatBool(opts.Descending))

	var resp listResponse
	if err := c.http.Get(ctx, "/file/simple/web?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}

	recordings := make([]Recording, 0, len(resp.Files))
	for _, r := range resp.Files {
		if r.IsTrashed {
			continue
		}
		recordings = append(recordings, r)
	}

	c.logger.Debug("listed recordings",
		"returned", len(resp.Files),
		"after_trash_filter", len(recordings))
	return recordings, nil
}
