package engine

import (
	"runtime/debug"

	"github.com/warpdl/ftxengine/pkg/logger"
)

// guard runs fn with panic recovery, logging any recovered panic with
// a stack trace via l and invoking onRecover with the panic value
// instead of letting it crash the pool's goroutine. Adapted from the
// teacher's safego.go: that version additionally spawned fn in its own
// goroutine and decremented a *sync.WaitGroup, but fn here already runs
// inside a goroutine the pool spawned, so only the recovery behavior
// carries over.
func guard(l logger.Logger, context string, fn func(), onRecover func(r any)) {
	defer func() {
		if r := recover(); r != nil {
			l.Error("PANIC [%s]: %v\n%s", context, r, debug.Stack())
			if onRecover != nil {
				onRecover(r)
			}
		}
	}()
	fn()
}
