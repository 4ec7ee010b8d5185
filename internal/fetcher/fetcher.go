// Package fetcher keeps a local copy of a remote translation memory current.
//
// Freshness is judged by comparing the local file size with the remote
// Content-Length. A same-size change on the server goes unnoticed; callers that
// need certainty must remove the local copy first.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BoFFire/kabyliner/internal"
)

// unknownSize is reported when the server omits or garbles Content-Length.
const unknownSize int64 = -1

// TransferError reports a download answered with a non-success status.
type TransferError struct {
	URL        string
	StatusCode int
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to download %s: status code %d", e.URL, e.StatusCode)
}

func (e *TransferError) Unwrap() error {
	return internal.ErrTransfer
}

// Result describes what Fetch did.
type Result struct {
	Downloaded bool
	// LocalSize is the size of the local copy before Fetch ran, or -1 if it did not exist.
	LocalSize int64
	// RemoteSize is the Content-Length announced by HEAD, or -1 if unknown or not asked.
	RemoteSize int64
	// Written is the number of bytes stored by the download.
	Written int64
}

// Fetcher downloads a remote file over HTTP, reusing the local copy when
// its size matches the announced Content-Length.
type Fetcher struct {
	client *http.Client
	logger *log.Logger
}

// New creates a Fetcher. A zero timeout means requests never time out on
// their own; cancellation then only comes from the context.
func New(timeout time.Duration, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch makes sure dest holds the resource at url.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) (*Result, error) {
	result := &Result{LocalSize: unknownSize, RemoteSize: unknownSize}

	info, err := os.Stat(dest)
	switch {
	case err == nil:
		result.LocalSize = info.Size()

		remoteSize, err := f.remoteSize(ctx, url)
		if err != nil {
			return result, err
		}
		result.RemoteSize = remoteSize

		if remoteSize == result.LocalSize {
			f.logger.Printf("[fetch  ] [status=current] [%d bytes] %s\n", result.LocalSize, dest)
			return result, nil
		}
		f.logger.Printf("[fetch  ] [status=stale] [local=%d remote=%d] %s\n", result.LocalSize, remoteSize, dest)
	case errors.Is(err, fs.ErrNotExist):
		f.logger.Printf("[fetch  ] [status=missing] %s\n", dest)
	default:
		return result, fmt.Errorf("failed to stat %s: %w", dest, err)
	}

	written, err := f.download(ctx, url, dest)
	if err != nil {
		return result, err
	}
	result.Downloaded = true
	result.Written = written
	f.logger.Printf("[fetch  ] [status=ok] [%d bytes] %s\n", written, dest)
	return result, nil
}

// remoteSize asks for the resource headers only.
func (f *Fetcher) remoteSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return unknownSize, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return unknownSize, err
	}
	defer resp.Body.Close()

	return parseContentLength(resp.Header.Get("Content-Length")), nil
}

func parseContentLength(v string) int64 {
	if v == "" {
		return unknownSize
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return unknownSize
	}
	return n
}

// download streams the body into a temporary file next to dest and renames it
// into place, so dest is never left truncated.
func (f *Fetcher) download(ctx context.Context, url, dest string) (int64, error) {
	f.logger.Printf("[fetch  ] [start] %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &TransferError{URL: url, StatusCode: resp.StatusCode}
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return 0, fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}
	committed = true

	return written, nil
}
