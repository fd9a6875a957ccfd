// Package pool implements the Transfer Pool: two FIFO queues (requests,
// downloads) and a bounded multiplex driver that keeps at most M
// transfers active while reserving D slots for downloads, so a flood of
// small requests can never starve large downloads and vice versa.
//
// Every queue, counter, and the admission algorithm itself are owned
// exclusively by the worker goroutine that calls Tick — there is
// intentionally no internal locking around them, matching
// SPEC_FULL.md §5's single-writer rule for the pool's queues. The
// completions channel is the one piece that is safe for concurrent
// senders, since it is fed by the transfer goroutines Tick spawns.
package pool

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Kind distinguishes the two queues a unit of work can occupy.
type Kind int

const (
	// KindRequest is a GET/POST request job.
	KindRequest Kind = iota
	// KindDownload is a single download chunk.
	KindDownload
)

// readinessTimeout bounds how long Tick waits for a completion before
// returning to let the caller re-check shutdown/admission state. This
// is the Go-native stand-in for SPEC_FULL.md §4.4's "clamp to 100ms"
// rule around the multiplex primitive's reported timeout.
const readinessTimeout = 100 * time.Millisecond

// Work is one submitted unit of work: its Kind determines which queue
// it waits in and which cap/reservation applies to it. Run executes the
// transfer and returns an arbitrary result the caller later type-asserts
// inside the Completion Router.
type Work struct {
	Kind Kind
	Run  func(ctx context.Context) any
}

// Completion is what Tick returns for a finished unit of work.
type Completion struct {
	Kind   Kind
	Result any
}

// Pool is the bounded multiplex scheduler. M is the max total in-flight
// transfers; D is how many of those M slots are reserved for downloads.
type Pool struct {
	m, d int

	waitDownloads []Work
	waitRequests  []Work

	activeTotal     int
	activeDownloads int
	activeRequests  int

	// sem gates the total in-flight count at M. It is the single
	// source of truth for "is there a free slot" — activeTotal is kept
	// only as a cheap reader for ActiveCount/tests and Tick's wait
	// decision, and always moves in lockstep with sem's held weight.
	sem *semaphore.Weighted

	completions chan Completion
}

// New returns a Pool with the given total cap m and download reservation d.
func New(m, d int) *Pool {
	if d > m {
		d = m
	}
	return &Pool{
		m:           m,
		d:           d,
		sem:         semaphore.NewWeighted(int64(m)),
		completions: make(chan Completion, m),
	}
}

// Enqueue adds work to its FIFO queue. Safe to call only from the
// worker goroutine.
func (p *Pool) Enqueue(w Work) {
	switch w.Kind {
	case KindDownload:
		p.waitDownloads = append(p.waitDownloads, w)
	default:
		p.waitRequests = append(p.waitRequests, w)
	}
}

// ActiveCount returns the number of transfers currently in flight.
func (p *Pool) ActiveCount() int { return p.activeTotal }

// QueuedDownloads and QueuedRequests report queue depth, used by tests
// and diagnostics.
func (p *Pool) QueuedDownloads() int { return len(p.waitDownloads) }
func (p *Pool) QueuedRequests() int  { return len(p.waitRequests) }

// Tick performs one driver cycle: it drains whatever completions are
// already ready, optionally waits up to readinessTimeout for at least
// one more if nothing was immediately ready and transfers are in
// flight, then runs admission (downloads up to D in flight first, then
// requests up to M-D in flight). It returns every completion observed
// during the call.
func (p *Pool) Tick(ctx context.Context) []Completion {
	done := p.drainReady()

	if len(done) == 0 && p.activeTotal > 0 {
		timer := time.NewTimer(readinessTimeout)
		defer timer.Stop()
		select {
		case c := <-p.completions:
			done = append(done, c)
			done = append(done, p.drainReady()...)
		case <-timer.C:
		case <-ctx.Done():
		}
	}

	for _, c := range done {
		p.sem.Release(1)
		p.activeTotal--
		if c.Kind == KindDownload {
			p.activeDownloads--
		} else {
			p.activeRequests--
		}
	}

	p.admit(ctx)
	return done
}

// drainReady collects every completion already sitting in the channel
// without blocking.
func (p *Pool) drainReady() []Completion {
	var done []Completion
	for {
		select {
		case c := <-p.completions:
			done = append(done, c)
		default:
			return done
		}
	}
}

// admit implements SPEC_FULL.md §4.4's admission order: downloads are
// promoted first, while fewer than D download chunks are in flight;
// requests are then promoted while fewer than M-D requests are in
// flight, so requests can never occupy the D slots downloads need to
// reach their reservation, even under a request flood.
func (p *Pool) admit(ctx context.Context) {
	for p.activeDownloads < p.d && len(p.waitDownloads) > 0 {
		if !p.spawn(ctx, p.waitDownloads[0]) {
			break
		}
		p.waitDownloads = p.waitDownloads[1:]
	}

	requestCeiling := p.m - p.d
	for len(p.waitRequests) > 0 && p.activeRequests < requestCeiling {
		if !p.spawn(ctx, p.waitRequests[0]) {
			break
		}
		p.waitRequests = p.waitRequests[1:]
	}
}

// spawn acquires a slot from sem and, if one was free, starts w running
// in its own goroutine. It reports whether a slot was acquired.
func (p *Pool) spawn(ctx context.Context, w Work) bool {
	if !p.sem.TryAcquire(1) {
		return false
	}
	p.activeTotal++
	if w.Kind == KindDownload {
		p.activeDownloads++
	} else {
		p.activeRequests++
	}
	go func() {
		result := w.Run(ctx)
		p.completions <- Completion{Kind: w.Kind, Result: result}
	}()
	return true
}
