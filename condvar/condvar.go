// Package condvar implements the condition-signalling layer of spec.md
// §4.6: CondVar, CondVarMutex[T], RwLockCondVar[T], and
// CondVarNonPoisoningMutex[T].
//
// Go's goroutine scheduler already parks blocked goroutines cheaply and
// uniformly regardless of GOOS/GOARCH (including js/wasm, which still
// runs a cooperative scheduler), so unlike the spin-vs-hosted split that
// matters for mutexes, CondVar's suspension mechanism does not need two
// different substrate implementations: both the "std" and default
// "spin" compat builds use a channel-based waiter list of this design (the
// "std" build keeps its own copy, stdCondVar, in package compat). Only the
// single-threaded no-op substrate (package noop) genuinely degrades wait
// to a no-op, because there no other goroutine exists to ever change the
// predicate.
package condvar

import (
	"sync"
	"time"

	"github.com/ewe-studios/foundation-nostd/nlock"
)

// CondVar holds the abstract set of goroutines currently suspended in
// Wait. NotifyOne removes and wakes at most one; NotifyAll removes and
// wakes every current waiter. A zero-value CondVar is ready to use.
type CondVar struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

func (c *CondVar) addWaiter() chan struct{} {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

func (c *CondVar) removeWaiter(ch chan struct{}) {
	c.mu.Lock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// NotifyOne wakes at most one waiter. No-op if there are none.
func (c *CondVar) NotifyOne() {
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

// NotifyAll wakes every goroutine currently in Wait. This drains the
// full waiter set atomically with respect to new Wait calls racing in:
// any goroutine that has not yet registered by the time NotifyAll takes
// the lock is not woken by this call, matching "unspecified ordering of
// wakeups" in spec.md §3 - but every *already-registered* waiter is
// woken, which is the critical, testable notify-all property from
// spec.md §8/§9 (a prior regression only woke the head of the list).
func (c *CondVar) NotifyAll() {
	c.mu.Lock()
	woken := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, ch := range woken {
		close(ch)
	}
}

// WaitTimeoutResult is returned alongside the reacquired guard from the
// timed wait variants.
type WaitTimeoutResult struct {
	timedOut bool
}

// TimedOut reports whether the wait returned because the duration
// elapsed rather than because of a notification.
func (w WaitTimeoutResult) TimedOut() bool { return w.timedOut }

// CondVarMutex pairs a CondVar with a poisoning SpinMutex[T].
type CondVarMutex[T any] struct {
	mu *nlock.SpinMutex[T]
	cv CondVar
}

// NewCondVarMutex returns a CondVarMutex initialized to hold val.
func NewCondVarMutex[T any](val T) *CondVarMutex[T] {
	return &CondVarMutex[T]{mu: nlock.NewSpinMutex(val)}
}

// Lock acquires the underlying mutex.
func (cm *CondVarMutex[T]) Lock() nlock.LockResult[*nlock.MutexGuard[T]] {
	return cm.mu.Lock()
}

// Wait atomically releases the mutex, suspends the caller, and on
// wakeup re-acquires the mutex before returning the new guard. Spurious
// wakeups are permitted; callers must recheck their predicate (WaitWhile
// does this automatically).
func (cm *CondVarMutex[T]) Wait(guard *nlock.MutexGuard[T]) *nlock.MutexGuard[T] {
	ch := cm.cv.addWaiter()
	guard.Unlock()
	<-ch
	return cm.mu.Lock().Unwrap()
}

// WaitWhile loops Wait until predicate(&*guard) is false.
func (cm *CondVarMutex[T]) WaitWhile(guard *nlock.MutexGuard[T], predicate func(*T) bool) *nlock.MutexGuard[T] {
	for predicate(guard.Deref()) {
		guard = cm.Wait(guard)
	}
	return guard
}

// WaitTimeout is like Wait but returns after duration elapses even
// without a notification.
func (cm *CondVarMutex[T]) WaitTimeout(guard *nlock.MutexGuard[T], d time.Duration) (*nlock.MutexGuard[T], WaitTimeoutResult) {
	ch := cm.cv.addWaiter()
	guard.Unlock()
	timedOut := false
	select {
	case <-ch:
	case <-time.After(d):
		cm.cv.removeWaiter(ch)
		timedOut = true
	}
	return cm.mu.Lock().Unwrap(), WaitTimeoutResult{timedOut: timedOut}
}

// WaitTimeoutWhile combines WaitTimeout with a predicate recheck loop,
// giving up (returning with timedOut=true) once the deadline passes,
// even if the predicate is still true.
func (cm *CondVarMutex[T]) WaitTimeoutWhile(guard *nlock.MutexGuard[T], d time.Duration, predicate func(*T) bool) (*nlock.MutexGuard[T], WaitTimeoutResult) {
	deadline := time.Now().Add(d)
	for predicate(guard.Deref()) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return guard, WaitTimeoutResult{timedOut: true}
		}
		var res WaitTimeoutResult
		guard, res = cm.WaitTimeout(guard, remaining)
		if res.timedOut {
			return guard, res
		}
	}
	return guard, WaitTimeoutResult{}
}

// NotifyOne wakes at most one waiter.
func (cm *CondVarMutex[T]) NotifyOne() { cm.cv.NotifyOne() }

// NotifyAll wakes every current waiter.
func (cm *CondVarMutex[T]) NotifyAll() { cm.cv.NotifyAll() }
