// Package fetcher defines the transport used to download listing pages.
// Implement the Fetcher interface to plug in another HTTP stack or to serve
// recorded pages in tests.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page fetching.
type Fetcher interface {
	// Fetch retrieves the body of a URL as text.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources.
	Close() error
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Content represents a fetched page.
type Content struct {
	URL         string
	HTML        string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Error types for distinguishing transport failures.
// Check with errors.Is(err, fetcher.ErrTransport).
var (
	// ErrTransport indicates the request failed or returned an error status.
	ErrTransport = errors.New("transport error")
	// ErrNotText indicates the response body is not a text document.
	ErrNotText = errors.New("response is not a text document")
)
