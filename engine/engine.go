// Package engine is the worker half of the embeddable HTTP engine: it
// owns the Transfer Pool, every in-flight job's state, the Dashboard,
// and the two mailboxes that decouple submitter goroutines and the
// host's foreground loop from that worker. See SPEC_FULL.md §5 for the
// three-role concurrency model this package implements.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/warpdl/ftxengine/dashboard"
	"github.com/warpdl/ftxengine/mailbox"
	"github.com/warpdl/ftxengine/planner"
	"github.com/warpdl/ftxengine/pool"
	"github.com/warpdl/ftxengine/rangelog"
	"github.com/warpdl/ftxengine/transfer"
)

// Engine is the worker-owned core. Exactly one goroutine runs run
// (started by StartUp); exactly one goroutine may call Loop. Every
// other exported method is safe to call from any goroutine.
type Engine struct {
	cfg   Config
	fs    afero.Fs
	retry RetryConfig

	bg *mailbox.Mailbox
	fg *mailbox.Mailbox

	pool *pool.Pool
	dash *dashboard.Dashboard

	// jobs and requests are touched only on the worker goroutine: every
	// mutation happens inside a task drained from bg, and every read
	// happens inside the Completion Router, both of which run
	// exclusively on the worker. Submitter goroutines never reach in.
	jobs     map[string]*downloadJob
	requests map[uint64]*requestJob

	nextRequestID uint64 // atomic; assigned on the submitter goroutine

	alive      int32 // atomic
	workerDone chan struct{}
}

// New constructs an Engine from cfg. Unset fields in cfg fall back to
// DefaultConfig's values.
func New(cfg Config) *Engine {
	cfg.fillDefaults()
	m := cfg.MaxConnects
	return &Engine{
		cfg:        cfg,
		fs:         cfg.FS,
		retry:      DefaultRetryConfig(),
		bg:         mailbox.New(),
		fg:         mailbox.New(),
		pool:       pool.New(m, cfg.DownloadReservation),
		dash:       dashboard.New(),
		jobs:       make(map[string]*downloadJob),
		requests:   make(map[uint64]*requestJob),
		workerDone: make(chan struct{}),
	}
}

// StartUp marks the engine alive and starts its worker goroutine. It
// must be called exactly once before any PushDownload/RequestGet/
// RequestPost call, matching spec.md §4.9.
func (e *Engine) StartUp() {
	atomic.StoreInt32(&e.alive, 1)
	go e.run()
}

// ShutDown stops the worker goroutine after its current tick finishes
// and waits for it to exit. In-flight transfer goroutines are not
// canceled; their completions are simply never routed once the worker
// has returned (matching spec.md §4.9's "no attempt to cancel
// in-flight transfers"). Once the worker has exited, the configured
// Logger is closed, releasing any file it owns.
func (e *Engine) ShutDown() {
	atomic.StoreInt32(&e.alive, 0)
	<-e.workerDone
	if err := e.cfg.Logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "engine: close logger: %v\n", err)
	}
}

// Loop drains the foreground mailbox, invoking every queued callback
// on the calling goroutine in the order it was queued, which is the
// order the jobs completed, not the order they were submitted. Callers
// run this from
// their own pumped loop (spec.md §4.9): a game's per-frame tick, an
// event-loop idle handler, or a plain for-loop in a CLI.
func (e *Engine) Loop() {
	e.fg.Drain()
}

// run is the worker goroutine body: drain the background mailbox, run
// one pool tick, route whatever completed. Matches spec.md §4.9's
// "drain the background mailbox, then run one driver tick" verbatim.
func (e *Engine) run() {
	defer close(e.workerDone)
	ctx := context.Background()
	for atomic.LoadInt32(&e.alive) == 1 {
		guard(e.cfg.Logger, "worker tick", func() {
			e.bg.Drain()
			completions := e.pool.Tick(ctx)
			for _, c := range completions {
				e.route(c)
			}
		}, nil)
	}
}

// PushDownload submits a download job for execution on the worker
// goroutine. blockSizeMB <= 0 uses cfg.DefaultBlockSizeMB. Safe to call
// from any goroutine, including from inside a callback.
func (e *Engine) PushDownload(rawURL, destPath string, cb DownloadCallback, blockSizeMB int, resume bool, opts transfer.Options) {
	if blockSizeMB <= 0 {
		blockSizeMB = e.cfg.DefaultBlockSizeMB
	}
	if opts.UserAgent == "" {
		opts.UserAgent = e.cfg.DefaultUserAgent
	}
	e.bg.Push(func() {
		e.startDownload(rawURL, destPath, cb, blockSizeMB, resume, opts)
	})
}

func (e *Engine) startDownload(rawURL, destPath string, cb DownloadCallback, blockSizeMB int, resume bool, opts transfer.Options) {
	if _, exists := e.jobs[destPath]; exists {
		e.cfg.Logger.Warning("%v: %s", ErrDownloadActive, destPath)
		e.fg.Push(func() { cb(false, destPath) })
		return
	}

	client, err := transfer.NewClient(opts)
	if err != nil {
		e.cfg.Logger.Warning("engine: build client for %s: %v", destPath, err)
		e.fg.Push(func() { cb(false, destPath) })
		return
	}
	prim := transfer.NewPrimitive(client)

	ranges, err := planner.Plan(context.Background(), prim, e.fs, rawURL, destPath, blockSizeMB, resume)
	if err != nil {
		e.cfg.Logger.Warning("engine: plan %s: %v", destPath, err)
		e.fg.Push(func() { cb(false, destPath) })
		return
	}

	if len(ranges) == 0 {
		if err := afero.WriteFile(e.fs, destPath, []byte{}, 0o644); err != nil {
			e.cfg.Logger.Warning("engine: create empty destination %s: %v", destPath, err)
		}
		e.fg.Push(func() { cb(true, destPath) })
		return
	}

	job := &downloadJob{
		destPath:    destPath,
		url:         rawURL,
		opts:        opts,
		blockSizeMB: blockSizeMB,
		resume:      resume,
		ranges:      ranges,
		states:      make([]ChunkState, len(ranges)),
		callback:    cb,
		primitive:   prim,
	}
	e.jobs[destPath] = job

	for i, r := range ranges {
		i, r := i, r
		e.pool.Enqueue(pool.Work{
			Kind: pool.KindDownload,
			Run: func(ctx context.Context) any {
				result := chunkResult{destPath: job.destPath, index: i}
				guard(e.cfg.Logger, fmt.Sprintf("chunk %d of %s", i, job.destPath), func() {
					result = e.runChunk(ctx, job, i, r)
				}, func(rec any) {
					result = chunkResult{destPath: job.destPath, index: i, err: fmt.Errorf("engine: panic in chunk transfer: %v", rec)}
				})
				return result
			},
		})
	}
}

// runChunk executes one chunk's transfer to completion, retrying
// transient errors in place per e.retry before surfacing a terminal
// chunkResult. Runs on a pool-spawned goroutine, never the worker
// goroutine.
func (e *Engine) runChunk(ctx context.Context, job *downloadJob, index int, r rangelog.Range) chunkResult {
	file, err := e.fs.OpenFile(rangelog.TempPath(job.destPath), os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return chunkResult{destPath: job.destPath, index: index, err: fmt.Errorf("engine: open temp file: %w", err)}
	}
	defer file.Close()

	if _, err := file.Seek(r.Begin, io.SeekStart); err != nil {
		return chunkResult{destPath: job.destPath, index: index, err: fmt.Errorf("engine: seek temp file: %w", err)}
	}

	sink := newChunkWriteSink(e.fs, e.dash, file, job.destPath, index, r.Begin, job.resume)

	var lastErr error
	var status int
	for attempt := 1; ; attempt++ {
		_, status, lastErr = job.primitive.FetchRange(ctx, job.url, sink.cursor, r.End, sink)
		if lastErr == nil {
			break
		}
		if job.opts.Verbose {
			attemptLogger(e.cfg.Logger, job.destPath, index, attempt)(lastErr)
		}
		if !e.retry.shouldRetry(attempt, lastErr) {
			break
		}
		if waitErr := e.retry.wait(ctx, attempt, lastErr); waitErr != nil {
			lastErr = waitErr
			break
		}
	}

	return chunkResult{destPath: job.destPath, index: index, bytes: sink.cumulative, status: status, err: lastErr}
}

// RequestGet submits a GET request job and returns its id, assigned
// synchronously on the calling goroutine so callers can correlate the
// id with their own bookkeeping before the transfer even starts.
func (e *Engine) RequestGet(rawURL string, cb RequestCallback, opts transfer.Options) uint64 {
	return e.pushRequest(http.MethodGet, rawURL, "", cb, opts)
}

// RequestPost submits a POST request job with body and returns its id.
func (e *Engine) RequestPost(rawURL, body string, cb RequestCallback, opts transfer.Options) uint64 {
	return e.pushRequest(http.MethodPost, rawURL, body, cb, opts)
}

func (e *Engine) pushRequest(method, rawURL, body string, cb RequestCallback, opts transfer.Options) uint64 {
	if opts.UserAgent == "" {
		opts.UserAgent = e.cfg.DefaultUserAgent
	}
	id := atomic.AddUint64(&e.nextRequestID, 1)
	e.bg.Push(func() {
		e.startRequest(id, method, rawURL, body, cb, opts)
	})
	return id
}

func (e *Engine) startRequest(id uint64, method, rawURL, body string, cb RequestCallback, opts transfer.Options) {
	client, err := transfer.NewClient(opts)
	if err != nil {
		e.cfg.Logger.Warning("engine: build client for request %d: %v", id, err)
		e.fg.Push(func() { cb(0, "") })
		return
	}
	prim := transfer.NewPrimitive(client)

	job := &requestJob{id: id, url: rawURL, method: method, body: body, callback: cb, primitive: prim}
	e.requests[id] = job

	e.pool.Enqueue(pool.Work{
		Kind: pool.KindRequest,
		Run: func(ctx context.Context) any {
			result := requestResult{id: id}
			guard(e.cfg.Logger, fmt.Sprintf("request %d", id), func() {
				result = e.runRequest(ctx, job, opts)
			}, func(rec any) {
				result = requestResult{id: id, err: fmt.Errorf("engine: panic in request transfer: %v", rec)}
			})
			return result
		},
	})
}

func (e *Engine) runRequest(ctx context.Context, job *requestJob, opts transfer.Options) requestResult {
	var bodyReader io.Reader
	if job.body != "" {
		bodyReader = strings.NewReader(job.body)
	}
	sink := &requestWriteSink{}
	_, status, err := job.primitive.FetchAll(ctx, job.method, job.url, bodyReader, opts.UserAgent, sink)
	return requestResult{id: job.id, status: status, body: sink.buf.String(), err: err}
}

// DownloadSpeed returns the current aggregate bytes/sec for path.
func (e *Engine) DownloadSpeed(path string) int64 { return e.dash.Speed(path) }

// DownloadSize returns the current aggregate downloaded bytes for path.
func (e *Engine) DownloadSize(path string) int64 { return e.dash.Size(path) }

// DownloadSpeedAndSize returns both aggregates in a single consistent
// snapshot.
func (e *Engine) DownloadSpeedAndSize(path string) (speed, size int64) {
	return e.dash.SpeedAndSize(path)
}

// DownloadAllSpeed returns the aggregate bytes/sec across every
// tracked download.
func (e *Engine) DownloadAllSpeed() int64 { return e.dash.AllSpeed() }

// ClearDownload removes the temp file and range log for destPath. The
// caller must not call this while a download for destPath is active;
// the engine does not itself enforce that (spec.md §6).
func (e *Engine) ClearDownload(destPath string) error {
	err := e.fs.Remove(rangelog.TempPath(destPath))
	if err != nil && !os.IsNotExist(err) && !errors.Is(err, afero.ErrFileNotFound) {
		return fmt.Errorf("engine: clear temp file: %w", err)
	}
	return rangelog.Delete(e.fs, destPath)
}
