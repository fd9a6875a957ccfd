package engine

import (
	"github.com/spf13/afero"
	"github.com/warpdl/ftxengine/pkg/logger"
	"github.com/warpdl/ftxengine/transfer"
)

// Config configures an Engine at startup, mirroring the teacher's
// option-struct convention (DownloaderOpts, ResumeDownloadOpts) rather
// than a loaded config file — config-file loading is out of scope per
// SPEC_FULL.md §1/§9.
type Config struct {
	// MaxConnects is M, the maximum number of simultaneously in-flight
	// transfers (requests + download chunks combined).
	MaxConnects int
	// DownloadReservation is D, the number of the M slots reserved for
	// download chunks.
	DownloadReservation int
	// DefaultBlockSizeMB is used when PushDownload is given a zero
	// block size.
	DefaultBlockSizeMB int
	// DefaultUserAgent is filled into the Options of transfers whose
	// Options don't set one explicitly. Only request jobs send it as a
	// User-Agent header; download size probes and chunk transfers set no
	// User-Agent header.
	DefaultUserAgent string
	// FS backs every temp/log/destination file touch. Defaults to the
	// real OS filesystem; tests substitute afero.NewMemMapFs().
	FS afero.Fs
	// Logger receives diagnostic output (failed chunks and requests,
	// rename failures, panics recovered from transfer goroutines).
	// Defaults to a logger that discards everything.
	Logger logger.Logger
}

// DefaultConfig returns the defaults named in SPEC_FULL.md §9:
// MaxConnects=20, download reservation=10, block size 20MB.
func DefaultConfig() Config {
	return Config{
		MaxConnects:         20,
		DownloadReservation: 10,
		DefaultBlockSizeMB:  20,
		DefaultUserAgent:    transfer.DefaultUserAgent,
	}
}

func (c *Config) fillDefaults() {
	if c.MaxConnects <= 0 {
		c.MaxConnects = 20
	}
	if c.DownloadReservation <= 0 {
		c.DownloadReservation = 10
	}
	if c.DownloadReservation > c.MaxConnects {
		c.DownloadReservation = c.MaxConnects
	}
	if c.DefaultBlockSizeMB <= 0 {
		c.DefaultBlockSizeMB = 20
	}
	if c.DefaultUserAgent == "" {
		c.DefaultUserAgent = transfer.DefaultUserAgent
	}
	if c.FS == nil {
		c.FS = afero.NewOsFs()
	}
	if c.Logger == nil {
		c.Logger = logger.NewNopLogger()
	}
}
