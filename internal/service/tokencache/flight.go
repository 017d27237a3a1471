package tokencache

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/oshokin/xolta-token/internal/logger"
)

// flightGroup coalesces concurrent calls of one operation and key onto a single execution.
// The execution runs on its own context, detached from any single caller and cancelled
// once every caller waiting for it has gone.
type flightGroup struct {
	group   singleflight.Group
	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the shared context of one execution and the number of callers waiting for it.
type flight struct {
	ctx     context.Context //nolint:containedctx // Shared by every caller of the execution.
	cancel  context.CancelFunc
	callers int
}

// join starts or joins the execution named name and returns its result channel together
// with the function the caller must invoke once it stops waiting.
func (g *flightGroup) join(
	ctx context.Context,
	name string,
	fn func(ctx context.Context) (any, error),
) (<-chan singleflight.Result, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.flights == nil {
		g.flights = make(map[string]*flight)
	}

	f, ok := g.flights[name]
	if !ok {
		flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: flightCtx, cancel: cancel}
		g.flights[name] = f
	}

	f.callers++

	resultChan := g.group.DoChan(name, func() (any, error) {
		return fn(f.ctx)
	})

	return resultChan, func() { g.leave(name, f) }
}

func (g *flightGroup) leave(name string, f *flight) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f.callers--
	if f.callers > 0 {
		return
	}

	f.cancel()

	if g.flights[name] == f {
		delete(g.flights, name)
	}
}

// coalesce shares one execution of fn among concurrent callers of the same operation and key.
// Every caller gets the same result. A caller whose context ends stops waiting; fn keeps
// running while anyone still waits and is cancelled when the last caller leaves.
func coalesce[T any](
	ctx context.Context,
	flights *flightGroup,
	operation string,
	key CacheKey,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	name := operation + ":" + key.String()

	value, err := wait[T](ctx, flights, operation, name, fn)

	// A caller arriving while an abandoned execution winds down receives its cancellation.
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		logger.Debugf(ctx, "Joined an abandoned %s operation, starting again", operation)

		value, err = wait[T](ctx, flights, operation, name, fn)
	}

	return value, err
}

func wait[T any](
	ctx context.Context,
	flights *flightGroup,
	operation string,
	name string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	resultChan, leave := flights.join(ctx, name, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	defer leave()

	select {
	case result := <-resultChan:
		if result.Shared {
			logger.Debugf(ctx, "Joined in-flight %s operation", operation)
		}

		value, _ := result.Val.(T)

		return value, result.Err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}
