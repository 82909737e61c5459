// Package fetch downloads job postings and reduces them to their description
// text. Known applicant tracking systems get dedicated selectors; pages that
// render client-side can optionally be loaded in headless Chrome.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the user agent string for HTTP requests.
	DefaultUserAgent = "Mozilla/5.0 (compatible; ResumeAnalyzer/1.0)"
	// DefaultMaxBodyBytes caps how much of a response is read.
	DefaultMaxBodyBytes = 5 << 20
	// MinContentLength is the shortest extracted text considered a complete
	// page. Shorter results trigger the browser fallback when enabled.
	MinContentLength = 500
)

// Result holds the raw content of one fetched URL.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Posting is the description text extracted from a job posting page.
type Posting struct {
	URL      string
	Platform Platform
	Text     string
	// Rendered is set when the text came from the headless browser.
	Rendered bool
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Headers      map[string]string
	// BrowserFallback renders pages whose text is shorter than
	// MinContentLength in headless Chrome. Chrome must be installed.
	BrowserFallback bool
}

// RenderFunc returns the HTML of a page after client-side rendering.
type RenderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Fetcher retrieves job postings over HTTP. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	opts   Options
	render RenderFunc
	logger *zap.Logger
}

// New creates a Fetcher. Zero option fields take their defaults.
func New(opts Options, log *zap.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		render: RenderWithBrowser,
		logger: logger.WithFields(log, zap.String("component", "fetch")),
	}
}

// Fetch retrieves the body of rawURL. Only http and https URLs are accepted.
// On a non-200 status the partial Result is returned alongside the error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("response exceeds %d bytes", f.opts.MaxBodyBytes)}
	}

	f.logger.Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	result := &Result{
		URL:         rawURL,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return result, nil
}

// JobPosting fetches rawURL and extracts the job description text using the
// selectors of the detected platform.
func (f *Fetcher) JobPosting(ctx context.Context, rawURL string) (*Posting, error) {
	platform := DetectPlatform(rawURL)

	res, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	text, err := MainText(res.HTML, platform)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "content extraction failed", Cause: err}
	}
	posting := &Posting{URL: rawURL, Platform: platform, Text: text}

	if f.opts.BrowserFallback && ShouldUseBrowser(text) {
		f.logger.Info("page text is short, rendering in browser",
			zap.String("url", rawURL), zap.Int("chars", len(text)))
		if rendered, err := f.renderText(ctx, rawURL, platform); err != nil {
			f.logger.Warn("browser rendering failed", zap.String("url", rawURL), zap.Error(err))
		} else if len(rendered) > len(text) {
			posting.Text = rendered
			posting.Rendered = true
		}
	}

	if posting.Text == "" {
		return nil, &Error{URL: rawURL, Message: "no job description text found"}
	}
	return posting, nil
}

func (f *Fetcher) renderText(ctx context.Context, rawURL string, platform Platform) (string, error) {
	html, err := f.render(ctx, rawURL, f.opts.Timeout)
	if err != nil {
		return "", err
	}
	return MainText(html, platform)
}

// ShouldUseBrowser reports whether extracted text is too short to be a
// server-rendered posting.
func ShouldUseBrowser(text string) bool {
	return len(text) < MinContentLength
}
