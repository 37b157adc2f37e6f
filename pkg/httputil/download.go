package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/matzehuels/gdatamvn/pkg/buildinfo"
	"github.com/matzehuels/gdatamvn/pkg/observability"
)

// downloadTimeout bounds a single transfer. Distribution zips are tens of
// megabytes on slow mirrors.
const downloadTimeout = 10 * time.Minute

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client suitable for archive downloads.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: downloadTimeout}
}

// DownloadOptions configures [Download].
type DownloadOptions struct {
	// Progress renders a progress bar while the body is copied.
	Progress bool

	// ProgressWriter receives the progress bar. Defaults to os.Stderr.
	ProgressWriter io.Writer

	// Backoff is the retry schedule. The zero value means [DefaultBackoff].
	Backoff Backoff
}

// Download fetches url into dest and returns the number of bytes written.
// The parent directory of dest is created if needed.
func Download(ctx context.Context, client *http.Client, url, dest string, opts DownloadOptions) (int64, error) {
	if client == nil {
		client = NewHTTPClient()
	}
	if opts.Backoff.Attempts <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.ProgressWriter == nil {
		opts.ProgressWriter = os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}

	var n int64
	err := Retry(ctx, opts.Backoff, func(int) error {
		var err error
		n, err = downloadOnce(ctx, client, url, dest, opts)
		return err
	})
	return n, err
}

func downloadOnce(ctx context.Context, client *http.Client, url, dest string, opts DownloadOptions) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return 0, err
	}

	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return 0, err
	}

	var w io.Writer = f
	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = newProgressBar(resp.ContentLength, filepath.Base(dest), opts.ProgressWriter)
		w = io.MultiWriter(f, bar)
	}

	n, copyErr := io.Copy(w, resp.Body)
	closeErr := f.Close()
	if bar != nil {
		_ = bar.Finish()
	}
	if copyErr != nil {
		_ = os.Remove(part)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, copyErr)}
	}
	if closeErr != nil {
		_ = os.Remove(part)
		return 0, closeErr
	}
	if err := os.Rename(part, dest); err != nil {
		return 0, err
	}
	return n, nil
}

func newProgressBar(size int64, name string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
