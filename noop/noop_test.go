package noop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMutexBasic(t *testing.T) {
	m := NewNoopMutex(1)
	g := m.Lock()
	*g.Deref() = 2
	g.Unlock()
	g2 := m.Lock()
	assert.Equal(t, 2, *g2.Deref())
	g2.Unlock()
}

// TestNoopMutexRecursiveLockPanics preserves the debug aid called out in
// spec.md §9: the upstream NoopMutex uses a Cell to detect recursive
// locks and panics.
func TestNoopMutexRecursiveLockPanics(t *testing.T) {
	m := NewNoopMutex(0)
	m.Lock()
	assert.Panics(t, func() {
		m.Lock()
	})
}

func TestNoopMutexTryLock(t *testing.T) {
	m := NewNoopMutex(0)
	g, ok := m.TryLock()
	require.True(t, ok)
	_, ok = m.TryLock()
	assert.False(t, ok)
	g.Unlock()
	_, ok = m.TryLock()
	assert.True(t, ok)
}

func TestNoopRwLockRecursivePanics(t *testing.T) {
	l := NewNoopRwLock(0)
	l.Read()
	assert.Panics(t, func() {
		l.Write()
	})
}

func TestNoopOnceRunsOnce(t *testing.T) {
	var o NoopOnce
	calls := 0
	o.CallOnce(func() { calls++ })
	o.CallOnce(func() { calls++ })
	assert.Equal(t, 1, calls)
	assert.True(t, o.Done())
}

func TestNoopOnceLock(t *testing.T) {
	var l NoopOnceLock[int]
	v := l.GetOrInit(func() int { return 9 })
	assert.Equal(t, 9, v)
	v2, ok := l.Get()
	require.True(t, ok)
	assert.Equal(t, 9, v2)
}

func TestNoopCondVarWaitTimeoutAlwaysTimesOut(t *testing.T) {
	cm := NewNoopCondVarMutex(false)
	g := cm.Lock()
	g, res := cm.WaitTimeout(g, 10*time.Millisecond)
	assert.True(t, res.TimedOut())
	g.Unlock()
}

func TestNoopBarrierAlwaysLeader(t *testing.T) {
	b := NewNoopBarrier(4)
	for i := 0; i < 3; i++ {
		assert.True(t, b.Wait().IsLeader())
	}
}
