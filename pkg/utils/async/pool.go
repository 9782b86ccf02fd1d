package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
)

// Workers runs n indexed tasks with at most limit goroutines and blocks
// until all of them finish. Each task runs with panic recovery so that one
// panicking task cannot take down its siblings or the caller.
//
// The caller's context is passed through unchanged, so cancellation and the
// ctxlog logger are preserved.
func Workers(ctx context.Context, limit, n int, task func(ctx context.Context, i int)) {
	if limit <= 0 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					ctxlog.From(ctx).Error("panic in worker task",
						"index", i,
						"recover", r,
						"stack", string(stack),
					)
				}
				<-sem
				wg.Done()
			}()

			task(ctx, i)
		}(i)
	}

	wg.Wait()
}
