// Package downloader fetches feed documents and media enclosures over HTTP.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lysyi3m/podcomb/internal/buffer"
)

var ErrStatus = errors.New("unexpected HTTP status")

// ProgressFunc is called while a file is being written with the bytes
// written so far and the expected total, which is -1 when unknown.
type ProgressFunc func(written, total int64)

type Downloader struct {
	httpClient *http.Client
	userAgent  string
	progress   ProgressFunc
}

// New returns a Downloader. A zero timeout means no timeout.
func New(httpClient *http.Client, userAgent string, timeout time.Duration) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Downloader{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// WithProgress sets the callback used by FetchToFile.
func (d *Downloader) WithProgress(fn ProgressFunc) *Downloader {
	d.progress = fn
	return d
}

// FetchToBuffer downloads url into a new buffer.
func (d *Downloader) FetchToBuffer(ctx context.Context, url string) (*buffer.Buffer, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := buffer.FromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	slog.Debug("Fetched document", "url", url, "size", humanize.Bytes(uint64(b.Len())))
	return b, nil
}

// FetchToFile downloads url into path, replacing any existing file. A
// partially written file is removed when the transfer fails.
func (d *Downloader) FetchToFile(ctx context.Context, url, path string) (int64, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	var w io.Writer = f
	if d.progress != nil {
		w = &progressWriter{w: f, total: resp.ContentLength, fn: d.progress}
	}

	written, err := io.Copy(w, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return written, fmt.Errorf("failed to download %s: %w", url, err)
	}

	slog.Debug("Downloaded file", "url", url, "path", path, "size", humanize.Bytes(uint64(written)))
	return written, nil
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %s", ErrStatus, url, resp.Status)
	}

	return resp, nil
}

type progressWriter struct {
	w       io.Writer
	written int64
	total   int64
	fn      ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.fn(p.written, p.total)
	return n, err
}
