// Package fetch retrieves upstream pages with a browser-like identity. It
// never returns errors: a page that cannot be retrieved is reported as
// absent and logged, and callers treat it as "no data for this page".
package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pable/go-bball-metrics/internal/logging"
)

// DefaultUserAgent identifies requests as a desktop Chrome browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultTimeout tolerates a slow upstream.
const DefaultTimeout = 60 * time.Second

// maxBodyBytes bounds a single page read.
const maxBodyBytes = 16 << 20

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond caps the request rate across all callers sharing the
	// Fetcher. Zero or negative disables limiting.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Fetcher issues rate-limited GET requests.
type Fetcher struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New returns a Fetcher configured by opts.
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	f := &Fetcher{
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return f
}

// Fetch returns the body of url and true, or "" and false on any failure:
// cancellation, transport error, timeout or a non-2xx status.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, bool) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			logging.Warn(f.logger, "rate limit wait aborted", logging.FieldURL, url, "error", err)
			return "", false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logging.Warn(f.logger, "build request", logging.FieldURL, url, "error", err)
		return "", false
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.http.Do(req)
	if err != nil {
		logging.Warn(f.logger, "fetch failed", logging.FieldURL, url, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Warn(f.logger, "fetch returned non-success status",
			logging.FieldURL, url, logging.FieldStatusCode, resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logging.Warn(f.logger, "read body", logging.FieldURL, url, "error", err)
		return "", false
	}
	logging.Debug(f.logger, "fetched page",
		logging.FieldURL, url, logging.FieldDurationMS, time.Since(start).Milliseconds())
	return string(body), true
}
