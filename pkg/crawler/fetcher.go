package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Response bodies are capped to keep a single page from exhausting memory.
const maxBodySize = 10 << 20

// Fetcher issues single HTTP GETs with a bounded timeout and classifies
// failures. Fetch failures are never retried within a run.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewFetcher wraps client with per-request timeout and user agent handling.
func NewFetcher(client *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent, timeout: timeout}
}

// Fetch retrieves one task's URL. On failure it returns a classified
// CrawlError; when ctx itself was cancelled both returns are nil and the
// failure is not recorded.
func (f *Fetcher) Fetch(ctx context.Context, task models.CrawlTask) (*models.FetchResult, *models.CrawlError) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, task.URL, nil)
	if err != nil {
		return nil, &models.CrawlError{URL: task.URL, Kind: models.ErrKindNetwork, Message: err.Error()}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		kind := models.ErrKindNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = models.ErrKindTimeout
		}
		return nil, &models.CrawlError{URL: task.URL, Kind: kind, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.CrawlError{
			URL:     task.URL,
			Kind:    models.ErrKindHTTPStatus,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, &models.CrawlError{URL: task.URL, Kind: models.ErrKindNetwork, Message: err.Error()}
	}

	return &models.FetchResult{
		URL:           task.URL,
		Depth:         task.Depth,
		StatusCode:    resp.StatusCode,
		Body:          body,
		ContentType:   resp.Header.Get("Content-Type"),
		FetchDuration: time.Since(start),
	}, nil
}

// IsHTML reports whether a Content-Type header denotes an HTML document. An
// empty header is treated as HTML, matching servers that omit it.
func IsHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "text/html", "application/xhtml+xml", "application/xhtml":
		return true
	}
	return false
}
