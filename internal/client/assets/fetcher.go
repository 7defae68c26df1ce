// Package assets downloads the binary files referenced by content payloads.
//
// An asset is present when a file exists at its derived path (and has the
// expected size, when one is known). Presence, not version, gates a download.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/brightstudy/internal/netx"
)

// Fetcher opens a stream for an asset URL. size is -1 when unknown.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (body io.ReadCloser, size int64, err error)
}

type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds a fetcher whose transfers are bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	return netx.Get(ctx, f.client, rawURL)
}

// MultiFetcher routes a URL to a fetcher by scheme.
type MultiFetcher map[string]Fetcher

func (m MultiFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse asset url: %w", err)
	}
	f, ok := m[strings.ToLower(u.Scheme)]
	if !ok || f == nil {
		return nil, 0, fmt.Errorf("no fetcher for scheme %q", u.Scheme)
	}
	return f.Fetch(ctx, rawURL)
}

// NewMultiFetcher wires http and https to h and, when s3 is non-nil, s3 URLs
// to it.
func NewMultiFetcher(h Fetcher, s3 Fetcher) MultiFetcher {
	m := MultiFetcher{"http": h, "https": h}
	if s3 != nil {
		m["s3"] = s3
	}
	return m
}
