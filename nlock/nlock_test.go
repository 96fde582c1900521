package nlock

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPoisonPropagation implements the first half of spec.md §8 scenario 1:
// a panicking holder poisons the mutex and the panic still reaches the
// caller. TestPoisonDetectedOnNextLock covers the next acquirer recovering
// the value at panic time via the carried guard.
func TestPoisonPropagation(t *testing.T) {
	m := NewSpinMutex(0)

	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
		}()
		guard := m.Lock().Unwrap()
		defer guard.Unlock()
		panic("boom")
	}()

	assert.True(t, m.IsPoisoned())
}

func TestPoisonDetectedOnNextLock(t *testing.T) {
	m := NewSpinMutex(0)

	func() {
		defer func() { recover() }()
		guard := m.Lock().Unwrap()
		defer guard.Unlock()
		*guard.Deref() = 42
		panic("boom")
	}()

	assert.True(t, m.IsPoisoned())

	result := m.Lock()
	_, err := result.Get()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoisoned))

	var pErr *PoisonError[*MutexGuard[int]]
	require.True(t, errors.As(err, &pErr))
	guard := pErr.IntoInner()
	assert.Equal(t, 42, *guard.Deref(), "value at panic time must be observable")
	guard.Unlock()
}

func TestSpinMutexMutualExclusion(t *testing.T) {
	m := NewSpinMutex(0)
	var wg sync.WaitGroup
	const n = 100
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard := m.Lock().Unwrap()
			defer guard.Unlock()
			*guard.Deref()++
		}()
	}
	wg.Wait()
	guard := m.Lock().Unwrap()
	defer guard.Unlock()
	assert.Equal(t, n, *guard.Deref())
}

func TestSpinMutexTryLock(t *testing.T) {
	m := NewSpinMutex(0)
	g1 := m.Lock().Unwrap()

	res := m.TryLock()
	_, err := res.Get()
	require.Error(t, err)
	var tErr *TryLockError[*MutexGuard[int]]
	require.True(t, errors.As(err, &tErr))
	assert.True(t, tErr.IsWouldBlock())

	g1.Unlock()
	res = m.TryLock()
	g2, err := res.Get()
	require.NoError(t, err)
	g2.Unlock()
}

func TestSpinMutexClearPoison(t *testing.T) {
	m := NewSpinMutex(0)
	func() {
		defer func() { recover() }()
		guard := m.Lock().Unwrap()
		defer guard.Unlock()
		panic("boom")
	}()
	require.True(t, m.IsPoisoned())
	m.ClearPoison()
	assert.False(t, m.IsPoisoned())
	guard, err := m.Lock().Get()
	require.NoError(t, err)
	guard.Unlock()
}

func TestSpinRwLockReadersConcurrentWriteExclusive(t *testing.T) {
	l := NewSpinRwLock(0)

	g1 := l.Read().Unwrap()
	g2 := l.Read().Unwrap()
	assert.Equal(t, 0, *g1.Deref())
	assert.Equal(t, 0, *g2.Deref())
	g1.Unlock()
	g2.Unlock()

	wg := l.Write().Unwrap()
	*wg.Deref() = 5
	wg.Unlock()

	rg := l.Read().Unwrap()
	assert.Equal(t, 5, *rg.Deref())
	rg.Unlock()
}

func TestSpinRwLockReadDoesNotPoison(t *testing.T) {
	l := NewSpinRwLock(0)
	func() {
		defer func() { recover() }()
		g := l.Read().Unwrap()
		defer g.Unlock()
		panic("reader panic must not poison")
	}()
	assert.False(t, l.IsPoisoned())
}

// TestSpinRwLockReadGuardUnlockRePanics has no outer recover, unlike
// TestSpinRwLockReadDoesNotPoison: it asserts the panic itself still
// escapes g.Unlock() rather than being silently swallowed, which a test
// wrapped in its own recover cannot distinguish from a correct re-panic.
func TestSpinRwLockReadGuardUnlockRePanics(t *testing.T) {
	l := NewSpinRwLock(0)
	assert.PanicsWithValue(t, "reader panic must propagate", func() {
		g := l.Read().Unwrap()
		defer g.Unlock()
		panic("reader panic must propagate")
	})
	assert.False(t, l.IsPoisoned())
}

func TestSpinRwLockWritePoisons(t *testing.T) {
	l := NewSpinRwLock(0)
	func() {
		defer func() { recover() }()
		g := l.Write().Unwrap()
		defer g.Unlock()
		panic("writer panic poisons")
	}()
	assert.True(t, l.IsPoisoned())
}

func TestReaderSpinRwLockBasic(t *testing.T) {
	l := NewReaderSpinRwLock("init")
	g := l.Read().Unwrap()
	assert.Equal(t, "init", *g.Deref())
	g.Unlock()

	w := l.Write().Unwrap()
	*w.Deref() = "updated"
	w.Unlock()

	g2 := l.Read().Unwrap()
	assert.Equal(t, "updated", *g2.Deref())
	g2.Unlock()
}

// TestReaderSpinRwLockReadGuardUnlockRePanics mirrors
// TestSpinRwLockReadGuardUnlockRePanics for the reader-preferring variant:
// no outer recover, so a swallowed panic would fail the test rather than
// pass it either way.
func TestReaderSpinRwLockReadGuardUnlockRePanics(t *testing.T) {
	l := NewReaderSpinRwLock(0)
	assert.PanicsWithValue(t, "reader panic must propagate", func() {
		g := l.Read().Unwrap()
		defer g.Unlock()
		panic("reader panic must propagate")
	})
	assert.False(t, l.IsPoisoned())
}
