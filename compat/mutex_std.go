//go:build nostd_std

// This file backs compat's "nostd_std" substrate: it delegates blocking to
// the Go runtime's hosted sync.Mutex/sync.RWMutex (which park on an OS
// futex/semaphore rather than spinning) while still layering on the same
// poison-on-panic semantics as the spin substrate, via the identical
// defer+recover+re-panic technique used throughout package nlock.
package compat

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ewe-studios/foundation-nostd/once"
)

type stdMutex[T any] struct {
	mu       sync.Mutex
	poisoned atomic.Bool
	value    T
}

type stdGuard[T any] struct{ m *stdMutex[T] }

func (g *stdGuard[T]) Deref() *T { return &g.m.value }

func (g *stdGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.m.poisoned.Store(true)
		g.m.mu.Unlock()
		panic(r)
	}
	g.m.mu.Unlock()
}

type stdMutexAdapter[T any] struct{ m *stdMutex[T] }

func newMutexImpl[T any](val T) mutexImpl[T] {
	return &stdMutexAdapter[T]{m: &stdMutex[T]{value: val}}
}

func (a *stdMutexAdapter[T]) Lock() (Guard[T], error) {
	a.m.mu.Lock()
	g := &stdGuard[T]{m: a.m}
	if a.m.poisoned.Load() {
		return g, errPoisoned
	}
	return g, nil
}

func (a *stdMutexAdapter[T]) TryLock() (Guard[T], error) {
	if !a.m.mu.TryLock() {
		return nil, errWouldBlock
	}
	g := &stdGuard[T]{m: a.m}
	if a.m.poisoned.Load() {
		return g, errPoisoned
	}
	return g, nil
}

func (a *stdMutexAdapter[T]) IsPoisoned() bool { return a.m.poisoned.Load() }

var errPoisoned = errors.New("compat: lock poisoned by a panicking holder")
var errWouldBlock = errors.New("compat: operation would block")

type stdRwLock[T any] struct {
	mu       sync.RWMutex
	poisoned atomic.Bool
	value    T
}

type stdReadGuard[T any] struct{ l *stdRwLock[T] }

func (g *stdReadGuard[T]) Deref() *T { return &g.l.value }

// Unlock releases the read guard. Reads never poison the lock, but a
// panic unwinding through the critical section must still propagate past
// this call.
func (g *stdReadGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.l.mu.RUnlock()
		panic(r)
	}
	g.l.mu.RUnlock()
}

type stdWriteGuard[T any] struct{ l *stdRwLock[T] }

func (g *stdWriteGuard[T]) Deref() *T { return &g.l.value }
func (g *stdWriteGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.l.poisoned.Store(true)
		g.l.mu.Unlock()
		panic(r)
	}
	g.l.mu.Unlock()
}

type stdRwLockAdapter[T any] struct{ l *stdRwLock[T] }

func newRwLockImpl[T any](val T) rwLockImpl[T] {
	return &stdRwLockAdapter[T]{l: &stdRwLock[T]{value: val}}
}

func (a *stdRwLockAdapter[T]) Read() (Guard[T], error) {
	a.l.mu.RLock()
	g := &stdReadGuard[T]{l: a.l}
	if a.l.poisoned.Load() {
		return g, errPoisoned
	}
	return g, nil
}

func (a *stdRwLockAdapter[T]) Write() (Guard[T], error) {
	a.l.mu.Lock()
	g := &stdWriteGuard[T]{l: a.l}
	if a.l.poisoned.Load() {
		return g, errPoisoned
	}
	return g, nil
}

func (a *stdRwLockAdapter[T]) IsPoisoned() bool { return a.l.poisoned.Load() }

// stdCondVar is the hosted substrate's waiter list. It is channel-based,
// identical in technique to package condvar's CondVar - Go's scheduler
// parks blocked goroutines the same way regardless of which mutex
// implementation guards the predicate, so there is nothing substrate
// specific left to write here beyond which mutex type Wait relocks.
type stdCondVar struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

func (c *stdCondVar) addWaiter() chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

func (c *stdCondVar) removeWaiter(ch chan struct{}) {
	c.mu.Lock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

func (c *stdCondVar) notifyOne() {
	c.mu.Lock()
	if len(c.waiters) > 0 {
		ch := c.waiters[0]
		c.waiters = c.waiters[1:]
		c.mu.Unlock()
		close(ch)
		return
	}
	c.mu.Unlock()
}

func (c *stdCondVar) notifyAll() {
	c.mu.Lock()
	woken := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, ch := range woken {
		close(ch)
	}
}

type stdCondVarMutexAdapter[T any] struct {
	m  *stdMutex[T]
	cv stdCondVar
}

func newCondVarMutexImpl[T any](val T) condVarMutexImpl[T] {
	return &stdCondVarMutexAdapter[T]{m: &stdMutex[T]{value: val}}
}

func (a *stdCondVarMutexAdapter[T]) Lock() (Guard[T], error) {
	a.m.mu.Lock()
	g := &stdGuard[T]{m: a.m}
	if a.m.poisoned.Load() {
		return g, errPoisoned
	}
	return g, nil
}

func (a *stdCondVarMutexAdapter[T]) Wait(g Guard[T]) Guard[T] {
	ch := a.cv.addWaiter()
	g.Unlock()
	<-ch
	a.m.mu.Lock()
	return &stdGuard[T]{m: a.m}
}

func (a *stdCondVarMutexAdapter[T]) WaitWhile(g Guard[T], predicate func(*T) bool) Guard[T] {
	for predicate(g.Deref()) {
		g = a.Wait(g)
	}
	return g
}

func (a *stdCondVarMutexAdapter[T]) WaitTimeout(g Guard[T], d time.Duration) (Guard[T], WaitTimeoutResult) {
	ch := a.cv.addWaiter()
	g.Unlock()
	timedOut := false
	select {
	case <-ch:
	case <-time.After(d):
		a.cv.removeWaiter(ch)
		timedOut = true
	}
	a.m.mu.Lock()
	return &stdGuard[T]{m: a.m}, WaitTimeoutResult{timedOut: timedOut}
}

func (a *stdCondVarMutexAdapter[T]) NotifyOne() { a.cv.notifyOne() }
func (a *stdCondVarMutexAdapter[T]) NotifyAll() { a.cv.notifyAll() }

type stdBarrierState struct {
	count      int
	generation uint64
}

type stdBarrierAdapter struct {
	n  int
	cm *stdCondVarMutexAdapter[stdBarrierState]
}

func newBarrierImpl(n int) barrierImpl {
	if n <= 0 {
		panic("compat: barrier n must be positive")
	}
	return &stdBarrierAdapter{n: n, cm: newCondVarMutexImpl(stdBarrierState{}).(*stdCondVarMutexAdapter[stdBarrierState])}
}

func (b *stdBarrierAdapter) Wait() bool {
	g, _ := b.cm.Lock()
	myGen := g.Deref().generation
	g.Deref().count++

	if g.Deref().count < b.n {
		g = b.cm.WaitWhile(g, func(s *stdBarrierState) bool { return s.generation == myGen })
		g.Unlock()
		return false
	}

	g.Deref().count = 0
	g.Deref().generation++
	g.Unlock()
	b.cm.NotifyAll()
	return true
}

// stdOnce mirrors package once's state machine, but blocks concurrent
// callers on a channel instead of spin-waiting, matching the hosted
// substrate's OS-backed waiting model.
type stdOnce struct {
	mu       sync.Mutex
	done     bool
	running  bool
	poisoned bool
	ch       chan struct{}
}

func (o *stdOnce) CallOnce(f func()) error {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return nil
	}
	if o.poisoned {
		o.mu.Unlock()
		return once.ErrOncePoisoned
	}
	if o.running {
		ch := o.ch
		o.mu.Unlock()
		<-ch
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.poisoned {
			return once.ErrOncePoisoned
		}
		return nil
	}
	o.running = true
	o.ch = make(chan struct{})
	o.mu.Unlock()

	func() {
		defer func() {
			o.mu.Lock()
			if r := recover(); r != nil {
				o.poisoned = true
				close(o.ch)
				o.mu.Unlock()
				panic(r)
			}
			o.done = true
			close(o.ch)
			o.mu.Unlock()
		}()
		f()
	}()
	return nil
}

func (o *stdOnce) Done() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

func newOnceImpl() onceImpl { return &stdOnce{} }

type stdOnceLock[T any] struct {
	once  stdOnce
	value T
}

func newOnceLockImpl[T any]() onceLockImpl[T] { return &stdOnceLock[T]{} }

func (l *stdOnceLock[T]) GetOrInit(f func() T) T {
	err := l.once.CallOnce(func() { l.value = f() })
	if err != nil {
		panic(err)
	}
	return l.value
}

func (l *stdOnceLock[T]) Get() (T, bool) {
	if !l.once.Done() {
		var zero T
		return zero, false
	}
	return l.value, true
}
