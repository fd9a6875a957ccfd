// Package ftxengine is the public façade: a thin handle onto an
// engine.Engine, exposing the lifecycle and submission operations an
// embedding host calls. The original engine kept its state in
// process-global singletons and maps; Go idiom favors an explicit value
// returned from StartUp over package-level globals, so that is what
// this façade does.
package ftxengine

import (
	"log"
	"os"

	"github.com/warpdl/ftxengine/engine"
	"github.com/warpdl/ftxengine/pkg/logger"
	"github.com/warpdl/ftxengine/transfer"
)

// Re-exported so callers never need to import the engine package
// directly.
type (
	DownloadCallback = engine.DownloadCallback
	RequestCallback  = engine.RequestCallback
	Config           = engine.Config
	Options          = transfer.Options
)

// DefaultConfig returns the engine's default configuration:
// MaxConnects=20, download reservation=10, block size 20MB.
func DefaultConfig() Config { return engine.DefaultConfig() }

// DefaultOptions returns the transfer options SPEC_FULL.md §3/§6
// mandates for rawURL.
func DefaultOptions(rawURL string) Options { return transfer.DefaultOptions(rawURL) }

// NewFileLogging returns a Config whose Logger fans every worker
// diagnostic (chunk retries, panics recovered from transfer
// goroutines, rename/cleanup failures) out to both os.Stderr and a
// durable log file at logPath, via a logger.MultiLogger. The file is
// opened (created if absent, appended to otherwise) immediately; it is
// closed automatically when ShutDown completes on the Client started
// from the returned Config.
func NewFileLogging(logPath string) (Config, error) {
	fileLogger, err := logger.NewFileLogger(logPath)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	console := logger.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags))
	cfg.Logger = logger.NewMultiLogger(console, fileLogger)
	return cfg, nil
}

// Client is a started engine: StartUp's return value, and the handle
// every other façade operation is called on.
type Client struct {
	e *engine.Engine
}

// StartUp builds an Engine from cfg and starts its worker goroutine.
// Call ShutDown when done with it.
func StartUp(cfg Config) *Client {
	e := engine.New(cfg)
	e.StartUp()
	return &Client{e: e}
}

// StartUpDefault is StartUp(DefaultConfig()), the zero-configuration
// entry point most embedders reach for first.
func StartUpDefault() *Client {
	return StartUp(DefaultConfig())
}

// ShutDown stops the worker goroutine and waits for it to exit.
// In-flight transfers are not canceled; see engine.Engine.ShutDown.
func (c *Client) ShutDown() { c.e.ShutDown() }

// Loop drains the foreground mailbox, invoking every callback that has
// become ready since the last call, in the order the jobs completed
// (not the order they were submitted). Call this from the host's own
// pumped loop.
func (c *Client) Loop() { c.e.Loop() }

// PushDownload submits a resumable chunked download. blockSizeMB <= 0
// uses the engine's configured default (20MB unless overridden).
// needResume controls whether a persisted range log is honored/written
// for this destination path.
func (c *Client) PushDownload(url, destPath string, cb DownloadCallback, blockSizeMB int, needResume bool) {
	c.e.PushDownload(url, destPath, cb, blockSizeMB, needResume, DefaultOptions(url))
}

// PushDownloadEx is PushDownload with explicit transfer Options instead
// of the URL-derived defaults.
func (c *Client) PushDownloadEx(url, destPath string, cb DownloadCallback, blockSizeMB int, needResume bool, opts Options) {
	c.e.PushDownload(url, destPath, cb, blockSizeMB, needResume, opts)
}

// RequestGet submits a fire-and-forget GET request and returns its id.
func (c *Client) RequestGet(url string, cb RequestCallback) uint64 {
	return c.e.RequestGet(url, cb, DefaultOptions(url))
}

// RequestGetEx is RequestGet with explicit transfer Options.
func (c *Client) RequestGetEx(url string, cb RequestCallback, opts Options) uint64 {
	return c.e.RequestGet(url, cb, opts)
}

// RequestPost submits a fire-and-forget POST request with body and
// returns its id.
func (c *Client) RequestPost(url, body string, cb RequestCallback) uint64 {
	return c.e.RequestPost(url, body, cb, DefaultOptions(url))
}

// RequestPostEx is RequestPost with explicit transfer Options.
func (c *Client) RequestPostEx(url, body string, cb RequestCallback, opts Options) uint64 {
	return c.e.RequestPost(url, body, cb, opts)
}

// DownloadSpeed returns the current aggregate bytes/sec for path.
func (c *Client) DownloadSpeed(path string) int64 { return c.e.DownloadSpeed(path) }

// DownloadSize returns the current aggregate downloaded bytes for path.
func (c *Client) DownloadSize(path string) int64 { return c.e.DownloadSize(path) }

// DownloadSpeedAndSize returns both aggregates from one consistent
// snapshot.
func (c *Client) DownloadSpeedAndSize(path string) (speed, size int64) {
	return c.e.DownloadSpeedAndSize(path)
}

// DownloadAllSpeed returns the aggregate bytes/sec across every
// tracked download.
func (c *Client) DownloadAllSpeed() int64 { return c.e.DownloadAllSpeed() }

// ClearDownload removes the temp file and range log for destPath. The
// caller must not call this while a download for destPath is active.
func (c *Client) ClearDownload(destPath string) error { return c.e.ClearDownload(destPath) }
