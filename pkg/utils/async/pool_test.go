package async_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/relcheck/pkg/utils/async"
)

func TestWorkers_RunsAllTasks(t *testing.T) {
	var done [16]atomic.Bool

	async.Workers(context.Background(), 4, len(done), func(ctx context.Context, i int) {
		done[i].Store(true)
	})

	for i := range done {
		gt.Value(t, done[i].Load()).Equal(true)
	}
}

func TestWorkers_RespectsLimit(t *testing.T) {
	var current, peak atomic.Int32

	async.Workers(context.Background(), 3, 32, func(ctx context.Context, i int) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		current.Add(-1)
	})

	gt.Number(t, peak.Load()).LessOrEqual(3)
}

func TestWorkers_RecoversFromPanic(t *testing.T) {
	var completed atomic.Int32

	async.Workers(context.Background(), 2, 8, func(ctx context.Context, i int) {
		if i == 3 {
			panic("boom")
		}
		completed.Add(1)
	})

	gt.Number(t, completed.Load()).Equal(7)
}

func TestWorkers_ZeroTasks(t *testing.T) {
	called := false
	async.Workers(context.Background(), 4, 0, func(ctx context.Context, i int) {
		called = true
	})
	gt.Value(t, called).Equal(false)
}

func TestWorkers_NonPositiveLimit(t *testing.T) {
	var count atomic.Int32
	async.Workers(context.Background(), 0, 5, func(ctx context.Context, i int) {
		count.Add(1)
	})
	gt.Number(t, count.Load()).Equal(5)
}
