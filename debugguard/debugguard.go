// Package debugguard is an opt-in diagnostic layer, gated behind the
// nostd_debug build tag, that wraps the hosted ("nostd_std") substrate's
// locks with same-goroutine recursive-lock detection and cross-lock
// deadlock-cycle detection. It is not part of any compat substrate: it
// exists purely for development builds that want sharper failures than a
// hang, matching spec.md §9's preserved NoopMutex recursive-lock aid but
// for the hosted substrate, where a naive Cell-style flag would be racy.
//
// Without nostd_debug, Mutex is a zero-overhead wrapper around sync.Mutex:
// no goroutine-id capture, no cycle tracking. With it, every Lock call
// records the calling goroutine via goid.Get() (panicking immediately on
// a same-goroutine re-entrant Lock, which would otherwise just hang) and
// every critical section is tracked by go-deadlock's lock-order graph
// (logging a cycle report to stderr the moment one is detected, rather
// than waiting for a hung test run to time out).
package debugguard

// Mutex is a debug-instrumented mutex holding a value of type T.
type Mutex[T any] struct {
	impl mutexImpl[T]
	val  T
}

type guardHandle struct{ unlock func() }

// Guard is the RAII token returned by Mutex.Lock.
type Guard[T any] struct {
	m *Mutex[T]
	h guardHandle
}

// Deref returns a pointer to the guarded payload.
func (g *Guard[T]) Deref() *T { return &g.m.val }

// Unlock releases the guard.
func (g *Guard[T]) Unlock() { g.h.unlock() }

// NewMutex returns a debug-instrumented mutex holding val.
func NewMutex[T any](val T) *Mutex[T] {
	m := &Mutex[T]{val: val}
	m.impl = newMutexImpl()
	return m
}

// Lock acquires the mutex, blocking the calling goroutine.
func (m *Mutex[T]) Lock() *Guard[T] {
	unlock := m.impl.lock()
	return &Guard[T]{m: m, h: guardHandle{unlock: unlock}}
}
