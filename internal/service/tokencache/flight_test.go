package tokencache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callers returns the number of callers waiting for the execution named name.
func (g *flightGroup) callers(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if f, ok := g.flights[name]; ok {
		return f.callers
	}

	return 0
}

var flightTestKey = NewCacheKey(testCredential)

// TestCoalesce_SharesOneExecution tests that concurrent callers receive one execution's result.
func TestCoalesce_SharesOneExecution(t *testing.T) {
	t.Parallel()

	const callers = 5

	var (
		flights    flightGroup
		executions int
		mu         sync.Mutex
		wg         sync.WaitGroup
		values     = make([]int, callers)
	)

	release := make(chan struct{})

	fn := func(context.Context) (int, error) {
		mu.Lock()
		executions++
		mu.Unlock()

		<-release

		return 42, nil
	}

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			values[i], _ = coalesce(context.Background(), &flights, "test", flightTestKey, fn)
		}()
	}

	require.Eventually(t, func() bool {
		return flights.callers("test:"+flightTestKey.String()) == callers
	}, 5*time.Second, time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, 1, executions)
	assert.Equal(t, []int{42, 42, 42, 42, 42}, values)
	assert.Zero(t, flights.callers("test:"+flightTestKey.String()))
}

// TestCoalesce_ExecutionOutlivesFirstCaller tests that the execution context is not the first caller's.
func TestCoalesce_ExecutionOutlivesFirstCaller(t *testing.T) {
	t.Parallel()

	var (
		flights flightGroup
		wg      sync.WaitGroup
		value   int
		err     error
	)

	started := make(chan struct{})
	release := make(chan struct{})

	fn := func(ctx context.Context) (int, error) {
		close(started)
		<-release

		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		return 7, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	wg.Add(1)

	go func() {
		defer wg.Done()

		_, firstErr := coalesce(firstCtx, &flights, "test", flightTestKey, fn)
		assert.ErrorIs(t, firstErr, context.Canceled)
	}()

	<-started

	wg.Add(1)

	go func() {
		defer wg.Done()

		value, err = coalesce(context.Background(), &flights, "test", flightTestKey, fn)
	}()

	require.Eventually(t, func() bool {
		return flights.callers("test:"+flightTestKey.String()) == 2
	}, 5*time.Second, time.Millisecond)

	cancelFirst()

	require.Eventually(t, func() bool {
		return flights.callers("test:"+flightTestKey.String()) == 1
	}, 5*time.Second, time.Millisecond)

	close(release)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, 7, value)
}

// TestCoalesce_LastCallerCancels tests that the execution context ends when the last caller leaves.
func TestCoalesce_LastCallerCancels(t *testing.T) {
	t.Parallel()

	var flights flightGroup

	cancelled := make(chan struct{})

	fn := func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)

		return 0, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := coalesce(ctx, &flights, "test", flightTestKey, fn)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "execution context was not cancelled")
	}

	assert.Zero(t, flights.callers("test:"+flightTestKey.String()))
}
