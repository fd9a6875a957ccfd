// Package transfer implements the Transfer Primitive: it executes one
// HTTP transfer, optionally range-restricted, against a write sink, and
// reports bytes written and the final response code (live speed is
// measured by the engine's chunk write sink, not here). The
// rest of the engine treats this package as the boundary to the
// underlying HTTP/TLS stack (SPEC_FULL.md §1's "external collaborator").
package transfer

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/net/http2"
)

// DefaultUserAgent identifies the engine to remote servers when the
// caller doesn't set their own.
const DefaultUserAgent = "ftxengine/1.0"

// TLS carries the per-transfer TLS configuration named in SPEC_FULL.md
// §3: verification toggles, a custom trust anchor, and an HTTP/2
// preference.
type TLS struct {
	Enabled     bool
	VerifyPeer  bool
	VerifyHost  bool
	TrustAnchor string // path to a PEM file; empty uses the system pool
	PreferH2    bool
}

// Options is the per-transfer configuration described in SPEC_FULL.md
// §3. A URL beginning with "https" gets TLS enabled, fully verified,
// HTTP/2 preferred by default; anything else gets plain HTTP/1.1.
type Options struct {
	Verbose   bool
	UserAgent string
	TLS       TLS
}

// DefaultOptions returns the options SPEC_FULL.md §3/§6 mandates for
// rawURL: full TLS verification and HTTP/2 preference for "https" URLs,
// plaintext HTTP/1.1 otherwise.
func DefaultOptions(rawURL string) Options {
	isHTTPS := strings.HasPrefix(rawURL, "https")
	return Options{
		UserAgent: DefaultUserAgent,
		TLS: TLS{
			Enabled:    isHTTPS,
			VerifyPeer: isHTTPS,
			VerifyHost: isHTTPS,
			PreferH2:   isHTTPS,
		},
	}
}

// NewClient builds an *http.Client configured per opts. Redirects are
// followed with auto-referer, matching SPEC_FULL.md §6's URL
// conventions. The client sets no cookies and no headers, not even
// User-Agent: of the Primitive's methods only FetchAll sets a
// User-Agent header, per request; Probe and FetchRange send none.
func NewClient(opts Options) (*http.Client, error) {
	transport := &http.Transport{}

	if opts.TLS.Enabled {
		cfg := &tls.Config{
			InsecureSkipVerify: !opts.TLS.VerifyPeer, //nolint:gosec // explicit opt-out, mirrors TLS.VerifyPeer
		}
		if !opts.TLS.VerifyHost {
			cfg.InsecureSkipVerify = true
		}
		if opts.TLS.TrustAnchor != "" {
			pool, err := loadTrustAnchor(opts.TLS.TrustAnchor)
			if err != nil {
				return nil, err
			}
			cfg.RootCAs = pool
		}
		transport.TLSClientConfig = cfg
		if opts.TLS.PreferH2 {
			if err := http2.ConfigureTransport(transport); err != nil {
				return nil, err
			}
		}
	}

	return &http.Client{
		Transport:     transport,
		CheckRedirect: followWithAutoReferer,
	}, nil
}

func loadTrustAnchor(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(pem)
	return pool, nil
}

// followWithAutoReferer follows redirects (including 302) and sets the
// Referer header to the URL that issued the redirect, matching
// SPEC_FULL.md §6's "redirects are followed with auto-referer".
func followWithAutoReferer(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	req.Header.Set("Referer", via[len(via)-1].URL.String())
	return nil
}

// requestTimeout bounds a size probe (Probe runs on the worker
// goroutine) so a dead peer can't wedge the worker. FetchRange and
// FetchAll apply no timeout of their own.
const requestTimeout = 30 * time.Second
