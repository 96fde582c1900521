package once

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestOnceLockConcurrentInit is spec.md §8 scenario 6: 16 goroutines race
// on GetOrInit; the initializer must run exactly once and all callers
// must see an identical value.
func TestOnceLockConcurrentInit(t *testing.T) {
	var calls int32
	var l OnceLock[int]

	var g errgroup.Group
	const racers = 16
	results := make([]int, racers)
	for i := 0; i < racers; i++ {
		i := i
		g.Go(func() error {
			results[i] = l.GetOrInit(func() int {
				atomic.AddInt32(&calls, 1)
				return 7
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, calls)
	for _, r := range results {
		assert.Equal(t, 7, r)
	}
}

func TestOnceCallOnceRunsOnce(t *testing.T) {
	var o Once
	var calls int
	for i := 0; i < 5; i++ {
		err := o.CallOnce(func() { calls++ })
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, o.Done())
}

func TestOncePoisonsOnPanic(t *testing.T) {
	var o Once

	func() {
		defer func() { recover() }()
		_ = o.CallOnce(func() { panic("init failed") })
	}()

	assert.Equal(t, StatePoisoned, o.State())

	err := o.CallOnce(func() { t.Fatal("must not re-run a poisoned once") })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOncePoisoned))
}

func TestOnceLockSet(t *testing.T) {
	var l OnceLock[string]
	won := l.Set("first")
	assert.True(t, won)
	won = l.Set("second")
	assert.False(t, won)

	v, ok := l.Get()
	require.True(t, ok)
	assert.Equal(t, "first", v)
}
