package engine

import (
	"github.com/warpdl/ftxengine/rangelog"
	"github.com/warpdl/ftxengine/transfer"
)

// ChunkState is one download chunk's fold-in-progress verdict.
type ChunkState int

const (
	// ChunkNone means the chunk's transfer hasn't completed yet.
	ChunkNone ChunkState = iota
	// ChunkSucceed means the chunk's range was written in full.
	ChunkSucceed
	// ChunkFailed means the chunk's transfer ended in error or a
	// non-2xx status.
	ChunkFailed
)

// DownloadCallback fires exactly once, on the host's foreground loop,
// when a download job reaches a terminal verdict.
type DownloadCallback func(success bool, destPath string)

// RequestCallback fires exactly once, on the host's foreground loop,
// when a request job's transfer completes.
type RequestCallback func(status int, body string)

// downloadJob is the aggregate state for one in-flight download,
// keyed by destination path. Owned exclusively by the worker goroutine.
type downloadJob struct {
	destPath    string
	url         string
	opts        transfer.Options
	blockSizeMB int
	resume      bool
	ranges      []rangelog.Range
	states      []ChunkState
	callback    DownloadCallback
	primitive   *transfer.Primitive
}

// requestJob is the aggregate state for one in-flight GET/POST request.
type requestJob struct {
	id        uint64
	url       string
	method    string
	body      string
	callback  RequestCallback
	primitive *transfer.Primitive
}

// chunkResult is what a chunk's transfer goroutine hands back to the
// Completion Router via the pool.
type chunkResult struct {
	destPath string
	index    int
	bytes    int64
	status   int
	err      error
}

// requestResult is what a request's transfer goroutine hands back to
// the Completion Router via the pool.
type requestResult struct {
	id     uint64
	status int
	body   string
	err    error
}
