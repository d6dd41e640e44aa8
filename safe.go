package rocketsim

import (
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// goSafe runs fn in g and turns a panic into an *ErrPanic.
// The panic and stack trace are logged instead of crashing the process.
func goSafe(g *errgroup.Group, logger *Logger, task string, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.LogPanic(task, r, debug.Stack())
				err = &ErrPanic{Task: task, Value: r}
			}
		}()
		return fn()
	})
}
