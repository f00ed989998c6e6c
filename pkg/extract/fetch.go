package extract

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxBodySize caps how much of a remote page is read.
const MaxBodySize = 10 * 1024 * 1024 // 10 MB limit for HTML content

// Fetcher downloads web pages and extracts their article text.
type Fetcher struct {
	Client  *http.Client
	MaxBody int64
}

// NewFetcher returns a Fetcher with a 30 second timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: 30 * time.Second}, MaxBody: MaxBodySize}
}

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FromURL fetches rawURL and extracts its text. HTML goes through
// readability; plain text responses are kept as they are.
func (f *Fetcher) FromURL(ctx context.Context, rawURL string) (Result, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || !IsURL(rawURL) {
		return Result{}, fmt.Errorf("invalid url %q", rawURL)
	}

	// Send browser-like headers; some sites answer 403 to bare clients.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,*/*;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("got status code %d from %s", resp.StatusCode, rawURL)
	}

	limit := f.MaxBody
	if limit <= 0 {
		limit = MaxBodySize
	}
	if resp.ContentLength > limit {
		return Result{}, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, limit)
	}
	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return Result{}, fmt.Errorf("response body exceeded maximum size limit of %d bytes", limit)
	}

	var res Result
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		res, err = extractWith(PlainFormat{}, body)
	} else {
		res, err = fromHTML(body, parsedURL)
		if err == nil {
			res.Format = HTMLFormat{}.Name()
			res.Text = cleanParagraphs(res.Text)
		}
	}
	if err != nil {
		return Result{}, err
	}
	if res.Title == "" {
		res.Title = parsedURL.Host + strings.TrimSuffix(parsedURL.Path, "/")
	}
	return res, nil
}
