// Package fetch retrieves a document from a URL and reduces it to plain text.
// HTML pages are stripped of script/style/noscript; PDF responses go through
// text extraction. Every failure returns a typed *Error so callers can tell
// "no content" apart from the specific failure mode.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// DefaultTimeout bounds the single retrieval attempt. No retries are made.
const DefaultTimeout = 20 * time.Second

// defaultUserAgent mimics a browser: many job boards reject the Go default.
const defaultUserAgent = "Mozilla/5.0 (compatible; interview-coach/1.0)"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 10 << 20

// Error describes a failed document retrieval or extraction.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures retrieval.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns the standard retrieval configuration.
func DefaultOptions() *Options {
	return &Options{Timeout: DefaultTimeout, UserAgent: defaultUserAgent}
}

// Text performs a single timed GET and returns the document's plain text.
// The text is empty exactly when err is non-nil.
func Text(ctx context.Context, rawURL string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "build request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &Error{URL: rawURL, Message: "read body", Cause: err}
	}

	if isPDF(rawURL, resp.Header.Get("Content-Type")) {
		text, err := pdfText(body)
		if err != nil {
			return "", &Error{URL: rawURL, Message: "extract PDF text", Cause: err}
		}
		return text, nil
	}

	text, err := htmlText(body)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "parse HTML", Cause: err}
	}
	return text, nil
}

// isPDF reports whether the response should be treated as a PDF, by
// content type or URL suffix.
func isPDF(rawURL, contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "pdf") ||
		strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}

// htmlText strips script, style, and noscript elements and joins the
// remaining non-empty visual lines with newlines.
func htmlText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func pdfText(body []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(text), nil
}
