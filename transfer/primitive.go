package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Primitive executes HTTP transfers against a configured *http.Client.
// It is the engine's only collaborator with the network: callers never
// see transport details, only bytes-written/status outcomes.
type Primitive struct {
	client *http.Client
}

// NewPrimitive wraps client. A nil client falls back to a client built
// from DefaultOptions("") (plain HTTP/1.1, no TLS overrides).
func NewPrimitive(client *http.Client) *Primitive {
	if client == nil {
		client, _ = NewClient(DefaultOptions(""))
	}
	return &Primitive{client: client}
}

// Probe issues a HEAD-like request (no body, redirects followed,
// 302-aware) and returns the resource's content length. This backs the
// Download Planner's size probe (SPEC_FULL.md §4.3 step 2).
func (p *Primitive) Probe(ctx context.Context, rawURL string) (contentLength int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return -1, fmt.Errorf("transfer: probe request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return -1, fmt.Errorf("transfer: probe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return -1, fmt.Errorf("transfer: probe returned status %d", resp.StatusCode)
	}
	if resp.ContentLength >= 0 {
		return resp.ContentLength, nil
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, perr := strconv.ParseInt(cl, 10, 64); perr == nil {
			return n, nil
		}
	}
	return -1, fmt.Errorf("transfer: probe: content length unavailable")
}

// FetchRange executes a ranged GET for [begin, end) and streams the
// response body into sink, returning the number of bytes the sink
// accepted and the final HTTP status code. A short write — sink
// accepting fewer bytes than were read from the wire — is surfaced as
// an error, matching SPEC_FULL.md §4.6.
func (p *Primitive) FetchRange(ctx context.Context, rawURL string, begin, end int64, sink io.Writer) (written int64, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("transfer: range request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", begin, end-1))

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("transfer: fetch range: %w", err)
	}
	defer resp.Body.Close()

	written, err = io.Copy(sink, resp.Body)
	if err != nil {
		return written, resp.StatusCode, fmt.Errorf("transfer: copy range body: %w", err)
	}
	return written, resp.StatusCode, nil
}

// FetchAll executes a full (non-ranged) HTTP request and streams the
// response body into sink. It backs Request Jobs (GET/POST).
func (p *Primitive) FetchAll(ctx context.Context, method, rawURL string, body io.Reader, userAgent string, sink io.Writer) (written int64, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, 0, fmt.Errorf("transfer: request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("transfer: do: %w", err)
	}
	defer resp.Body.Close()

	written, err = io.Copy(sink, resp.Body)
	if err != nil {
		return written, resp.StatusCode, fmt.Errorf("transfer: copy body: %w", err)
	}
	return written, resp.StatusCode, nil
}
