package engine

import (
	"github.com/warpdl/ftxengine/pool"
	"github.com/warpdl/ftxengine/rangelog"
)

// route dispatches one pool.Completion to the chunk or request router
// depending on the concrete type stashed in its Result. Runs on the
// worker goroutine only.
func (e *Engine) route(c pool.Completion) {
	switch res := c.Result.(type) {
	case chunkResult:
		e.routeChunk(res)
	case requestResult:
		e.routeRequest(res)
	}
}

// routeChunk implements spec.md §4.5's fold over chunk states: a job
// with any ChunkNone remaining stays pending; once every chunk has
// settled, the job is Failed if any chunk Failed, Succeed otherwise.
func (e *Engine) routeChunk(res chunkResult) {
	job, ok := e.jobs[res.destPath]
	if !ok {
		return // job already finished/cleared; a stray late completion
	}

	success := res.err == nil && res.status >= 200 && res.status < 300
	if success {
		job.states[res.index] = ChunkSucceed
	} else {
		job.states[res.index] = ChunkFailed
		e.cfg.Logger.Warning("engine: chunk %d of %s failed: status=%d err=%v", res.index, res.destPath, res.status, res.err)
	}

	// Freeze the chunk's dashboard entry at its final byte count with
	// speed zeroed out — the transfer has ended, so it no longer
	// contributes to the live aggregate speed.
	e.dash.UpdateInfo(res.destPath, res.index, 0, res.bytes)

	switch foldStates(job.states) {
	case ChunkNone:
		return
	case ChunkSucceed:
		e.finishSucceed(job)
	case ChunkFailed:
		e.finishFailed(job)
	}
}

// foldStates reduces a job's per-chunk states to a single verdict:
// None as long as any chunk is still pending, Failed if every chunk
// has settled and at least one Failed, Succeed otherwise.
func foldStates(states []ChunkState) ChunkState {
	anyFailed := false
	for _, s := range states {
		if s == ChunkNone {
			return ChunkNone
		}
		if s == ChunkFailed {
			anyFailed = true
		}
	}
	if anyFailed {
		return ChunkFailed
	}
	return ChunkSucceed
}

// finishSucceed renames the temp file to its destination, deletes the
// range log, and delivers success to the job's callback.
func (e *Engine) finishSucceed(job *downloadJob) {
	if err := e.fs.Rename(rangelog.TempPath(job.destPath), job.destPath); err != nil {
		e.cfg.Logger.Warning("engine: rename %s into place: %v", job.destPath, err)
	}
	if err := rangelog.Delete(e.fs, job.destPath); err != nil {
		e.cfg.Logger.Warning("engine: delete range log for %s: %v", job.destPath, err)
	}
	e.completeJob(job, true)
}

// finishFailed leaves the temp file and range log in place — a caller
// that resubmits the same destination with resume=true will pick up
// from the surviving log, matching spec.md §7's "no automatic retry at
// job level".
func (e *Engine) finishFailed(job *downloadJob) {
	e.completeJob(job, false)
}

func (e *Engine) completeJob(job *downloadJob, success bool) {
	delete(e.jobs, job.destPath)
	e.dash.Remove(job.destPath)
	cb, destPath := job.callback, job.destPath
	e.fg.Push(func() { cb(success, destPath) })
}

// routeRequest delivers a finished request job's result to its
// callback and forgets the job.
func (e *Engine) routeRequest(res requestResult) {
	job, ok := e.requests[res.id]
	if !ok {
		return
	}
	delete(e.requests, res.id)

	status, body := res.status, res.body
	if res.err != nil {
		e.cfg.Logger.Warning("engine: request %d failed: %v", res.id, res.err)
	}
	cb := job.callback
	e.fg.Push(func() { cb(status, body) })
}
