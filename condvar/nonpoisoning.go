package condvar

import (
	"time"

	"github.com/ewe-studios/foundation-nostd/rawlock"
)

// CondVarNonPoisoningMutex pairs a CondVar with a raw (non-poisoning)
// mutex, for contexts where a panicking holder is equivalent to process
// termination and poison bookkeeping is pure overhead (spec.md §4.6).
type CondVarNonPoisoningMutex[T any] struct {
	raw   rawlock.RawSpinMutex
	value T
	cv    CondVar
}

// NewCondVarNonPoisoningMutex returns a mutex initialized to hold val.
func NewCondVarNonPoisoningMutex[T any](val T) *CondVarNonPoisoningMutex[T] {
	return &CondVarNonPoisoningMutex[T]{value: val}
}

// NonPoisoningGuard is the plain guard returned by
// CondVarNonPoisoningMutex: there is no poisoning to report, so Lock
// never fails and Unlock never inspects recover().
type NonPoisoningGuard[T any] struct {
	m *CondVarNonPoisoningMutex[T]
}

// Deref returns a pointer to the protected payload.
func (g *NonPoisoningGuard[T]) Deref() *T { return &g.m.value }

// Unlock releases the guard. Unlike the poisoning variants, this never
// inspects recover(): a panic here is expected to terminate the process.
func (g *NonPoisoningGuard[T]) Unlock() { g.m.raw.Unlock() }

// Lock blocks until acquired. Cannot fail.
func (m *CondVarNonPoisoningMutex[T]) Lock() *NonPoisoningGuard[T] {
	m.raw.Lock()
	return &NonPoisoningGuard[T]{m: m}
}

// Wait atomically releases the mutex, suspends, and reacquires on
// wakeup.
func (m *CondVarNonPoisoningMutex[T]) Wait(guard *NonPoisoningGuard[T]) *NonPoisoningGuard[T] {
	ch := m.cv.addWaiter()
	guard.Unlock()
	<-ch
	return m.Lock()
}

// WaitWhile loops Wait until predicate(&*guard) is false.
func (m *CondVarNonPoisoningMutex[T]) WaitWhile(guard *NonPoisoningGuard[T], predicate func(*T) bool) *NonPoisoningGuard[T] {
	for predicate(guard.Deref()) {
		guard = m.Wait(guard)
	}
	return guard
}

// WaitTimeout is like Wait but returns after d even without a notify.
func (m *CondVarNonPoisoningMutex[T]) WaitTimeout(guard *NonPoisoningGuard[T], d time.Duration) (*NonPoisoningGuard[T], WaitTimeoutResult) {
	ch := m.cv.addWaiter()
	guard.Unlock()
	timedOut := false
	select {
	case <-ch:
	case <-time.After(d):
		m.cv.removeWaiter(ch)
		timedOut = true
	}
	return m.Lock(), WaitTimeoutResult{timedOut: timedOut}
}

// NotifyOne wakes at most one waiter.
func (m *CondVarNonPoisoningMutex[T]) NotifyOne() { m.cv.NotifyOne() }

// NotifyAll wakes every current waiter.
func (m *CondVarNonPoisoningMutex[T]) NotifyAll() { m.cv.NotifyAll() }
