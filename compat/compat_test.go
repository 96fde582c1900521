package compat

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexLockUnlock(t *testing.T) {
	m := NewMutex(1)
	g, err := m.Lock()
	require.NoError(t, err)
	*g.Deref() = 2
	g.Unlock()

	g2, err := m.Lock()
	require.NoError(t, err)
	assert.Equal(t, 2, *g2.Deref())
	g2.Unlock()
}

func TestMutexPoisonsOnPanic(t *testing.T) {
	m := NewMutex(0)
	func() {
		defer func() { recover() }()
		g, _ := m.Lock()
		defer g.Unlock()
		panic("boom")
	}()
	assert.True(t, m.IsPoisoned())

	_, err := m.Lock()
	assert.Error(t, err)
}

func TestRwLockReadersAndWriter(t *testing.T) {
	l := NewRwLock(10)
	r1, err := l.Read()
	require.NoError(t, err)
	r2, err := l.Read()
	require.NoError(t, err)
	assert.Equal(t, 10, *r1.Deref())
	assert.Equal(t, 10, *r2.Deref())
	r1.Unlock()
	r2.Unlock()

	w, err := l.Write()
	require.NoError(t, err)
	*w.Deref() = 20
	w.Unlock()

	r3, _ := l.Read()
	assert.Equal(t, 20, *r3.Deref())
	r3.Unlock()
}

// TestRwLockReadGuardUnlockRePanics has no outer recover: it asserts the
// panic raised while a read guard is held still escapes Unlock() rather
// than being silently swallowed, across whichever substrate this build
// selects.
func TestRwLockReadGuardUnlockRePanics(t *testing.T) {
	l := NewRwLock(0)
	assert.PanicsWithValue(t, "reader panic must propagate", func() {
		g, err := l.Read()
		require.NoError(t, err)
		defer g.Unlock()
		panic("reader panic must propagate")
	})
	assert.False(t, l.IsPoisoned())
}

func TestCondVarMutexNotifyAllWakesEveryWaiter(t *testing.T) {
	cm := NewCondVarMutex(false)
	var wg sync.WaitGroup
	const n = 8
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			g, _ := cm.Lock()
			g = cm.WaitWhile(g, func(v *bool) bool { return !*v })
			g.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	g, _ := cm.Lock()
	*g.Deref() = true
	g.Unlock()
	cm.NotifyAll()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("not all waiters woke after NotifyAll")
	}
}

func TestBarrierExactlyOneLeaderPerRound(t *testing.T) {
	const n = 4
	b := NewBarrier(n)
	var leaders int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			res := b.Wait()
			if res.IsLeader() {
				mu.Lock()
				leaders++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), leaders)
}

func TestOnceRunsExactlyOnce(t *testing.T) {
	o := NewOnce()
	calls := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = o.CallOnce(func() { calls++ })
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
	assert.True(t, o.Done())
}

func TestOnceLockGetOrInit(t *testing.T) {
	l := NewOnceLock[string]()
	v := l.GetOrInit(func() string { return "hello" })
	assert.Equal(t, "hello", v)
	v2, ok := l.Get()
	require.True(t, ok)
	assert.Equal(t, "hello", v2)
}
