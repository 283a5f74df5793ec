// Package remote fetches "http:" and "https:" references.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/net/html/charset"

	"github.com/benjaminschreck/go-include/pkg/include/source"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 1 << 20
)

// Resolver fetches documents over HTTP. Responses are decompressed
// transparently and decoded to UTF-8 using the declared charset.
type Resolver struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClient replaces the HTTP client. The client's transport is used as
// is, without the gzip wrapper.
func WithClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.client.Timeout = d
	}
}

// WithMaxBytes sets the largest accepted response body. Larger responses
// fail with a FetchError.
func WithMaxBytes(n int64) Option {
	return func(r *Resolver) {
		r.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// NewResolver creates a resolver with a gzip-aware transport.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client: &http.Client{
			Transport: gzhttp.Transport(http.DefaultTransport),
			Timeout:   DefaultTimeout,
		},
		maxBytes:  DefaultMaxBytes,
		userAgent: "go-include",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context, req source.Request) (*source.Document, error) {
	if req.Ref.Realm != "http" && req.Ref.Realm != "https" {
		return nil, source.Unsupported("Unsupported realm %s", req.Ref.Realm)
	}
	url := req.Ref.Locator

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &source.FetchError{Resource: url, Err: err}
	}
	if r.userAgent != "" {
		httpReq.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, &source.FetchError{Resource: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, source.NotFound("Could not resolve %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &source.FetchError{Resource: url, Err: fmt.Errorf("HTTP %s", resp.Status)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, &source.FetchError{Resource: url, Err: err}
	}
	if int64(len(raw)) > r.maxBytes {
		return nil, &source.FetchError{Resource: url, Err: fmt.Errorf("response exceeds %d bytes", r.maxBytes)}
	}

	header := resp.Header.Get("Content-Type")
	body, err := charset.NewReader(bytes.NewReader(raw), header)
	if err != nil {
		return nil, &source.FetchError{Resource: url, Err: err}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &source.FetchError{Resource: url, Err: err}
	}

	contentType := req.Ref.ContentType
	if contentType == "" {
		contentType = mediaType(header)
	}

	// Redirects are followed, so the final URL is the canonical id.
	id := url
	if resp.Request != nil && resp.Request.URL != nil {
		id = resp.Request.URL.String()
	}
	return &source.Document{ID: id, Text: string(data), ContentType: contentType}, nil
}

func mediaType(header string) string {
	if header == "" {
		return "application/octet-stream"
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return header
	}
	return mt
}
