package nlock

import (
	"sync/atomic"

	"github.com/ewe-studios/foundation-nostd/rawlock"
)

// SpinMutex wraps a RawSpinMutex with a payload and a monotonic poisoned
// bit, mirroring the hosted standard library's Mutex<T> but on a
// spin-based substrate.
type SpinMutex[T any] struct {
	raw      rawlock.RawSpinMutex
	poisoned atomic.Bool
	value    T
}

// NewSpinMutex returns a mutex initialized to hold val.
func NewSpinMutex[T any](val T) *SpinMutex[T] {
	return &SpinMutex[T]{value: val}
}

// MutexGuard is the RAII token returned by a successful SpinMutex
// acquisition. Callers MUST release it with `defer guard.Unlock()`
// immediately after acquiring: Unlock both releases the lock and, via
// recover(), detects whether it is being called while a panic is
// unwinding through the critical section; if so it poisons the mutex
// before releasing and re-panics to let the unwind continue.
type MutexGuard[T any] struct {
	m *SpinMutex[T]
}

// Deref returns a pointer to the protected payload. Valid only while the
// guard is held.
func (g *MutexGuard[T]) Deref() *T { return &g.m.value }

// Unlock releases the guard. See MutexGuard's doc comment: call this via
// defer, never directly at the end of a function body that might panic,
// or poisoning-on-panic will not be detected.
func (g *MutexGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.m.poisoned.Store(true)
		g.m.raw.Unlock()
		panic(r)
	}
	g.m.raw.Unlock()
}

// Lock blocks until the mutex is acquired. If the mutex is poisoned, it
// still returns the guard (wrapped in a PoisonError) so the caller can
// recover.
func (m *SpinMutex[T]) Lock() LockResult[*MutexGuard[T]] {
	m.raw.Lock()
	guard := &MutexGuard[T]{m: m}
	if m.poisoned.Load() {
		return Err(guard)
	}
	return Ok(guard)
}

// TryLock attempts acquisition without blocking.
func (m *SpinMutex[T]) TryLock() TryLockResult[*MutexGuard[T]] {
	if !m.raw.TryLock() {
		return errTry[*MutexGuard[T]](WouldBlock[*MutexGuard[T]]())
	}
	guard := &MutexGuard[T]{m: m}
	if m.poisoned.Load() {
		return errTry(Poisoned(guard))
	}
	return okTry(guard)
}

// IsPoisoned observes the poisoned bit (Acquire via atomic.Bool).
func (m *SpinMutex[T]) IsPoisoned() bool { return m.poisoned.Load() }

// ClearPoison allows a caller that has fully restored invariants on the
// payload to clear the poisoned bit, matching the hosted standard
// library's escape hatch. This is the only non-monotonic mutation of the
// poisoned bit, and is intentionally explicit and rare.
func (m *SpinMutex[T]) ClearPoison() { m.poisoned.Store(false) }
