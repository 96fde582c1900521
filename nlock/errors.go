// Package nlock implements the poisoning locks of spec.md §4.4: SpinMutex,
// SpinRwLock (writer-preferring), and ReaderSpinRwLock (reader-preferring).
// Each wraps a rawlock state machine with a payload and a monotonic
// poisoned bit, and returns RAII-style guards whose Unlock method must be
// called via defer so that a panic unwinding through the critical section
// can be detected and turned into poisoning (see MutexGuard's doc comment).
package nlock

import "errors"

// ErrPoisoned is the sentinel wrapped by PoisonError. Use errors.Is against
// this to test for poisoning regardless of the payload type.
var ErrPoisoned = errors.New("nlock: lock poisoned by a panicking holder")

// ErrWouldBlock is the sentinel returned by try_lock-style operations that
// cannot acquire without blocking.
var ErrWouldBlock = errors.New("nlock: operation would block")

// PoisonError is returned when a lock acquisition observes the poisoned
// bit. It carries the guard that would otherwise have been returned,
// allowing the caller to recover and inspect (or repair) the payload.
type PoisonError[G any] struct {
	Guard G
}

func (e *PoisonError[G]) Error() string { return ErrPoisoned.Error() }

func (e *PoisonError[G]) Unwrap() error { return ErrPoisoned }

// IntoInner returns the guard carried by the error, for callers that want
// to recover from poisoning and proceed with the (possibly inconsistent)
// payload.
func (e *PoisonError[G]) IntoInner() G { return e.Guard }

// TryLockError is returned by try_lock-style operations. Exactly one of
// its two variants applies: Poisoned (the lock was poisoned) or
// WouldBlock (the lock was held and would otherwise block).
type TryLockError[G any] struct {
	poison *PoisonError[G]
}

func (e *TryLockError[G]) Error() string {
	if e.poison != nil {
		return e.poison.Error()
	}
	return ErrWouldBlock.Error()
}

func (e *TryLockError[G]) Unwrap() error {
	if e.poison != nil {
		return e.poison
	}
	return ErrWouldBlock
}

// IsPoisoned reports whether this error is the Poisoned variant.
func (e *TryLockError[G]) IsPoisoned() bool { return e.poison != nil }

// IsWouldBlock reports whether this error is the WouldBlock variant.
func (e *TryLockError[G]) IsWouldBlock() bool { return e.poison == nil }

// Poisoned builds a TryLockError carrying the recoverable guard.
func Poisoned[G any](guard G) *TryLockError[G] {
	return &TryLockError[G]{poison: &PoisonError[G]{Guard: guard}}
}

// WouldBlock builds a TryLockError with the WouldBlock variant.
func WouldBlock[G any]() *TryLockError[G] {
	return &TryLockError[G]{}
}

// LockResult is the return type of a blocking lock acquisition: either the
// guard, or a PoisonError carrying it.
type LockResult[G any] struct {
	guard G
	err   *PoisonError[G]
}

// Ok builds a successful LockResult.
func Ok[G any](guard G) LockResult[G] { return LockResult[G]{guard: guard} }

// Err builds a poisoned LockResult.
func Err[G any](guard G) LockResult[G] {
	return LockResult[G]{err: &PoisonError[G]{Guard: guard}}
}

// Unwrap returns the guard, ignoring poisoning - matching the semantics of
// Rust's `.lock().unwrap()` idiom used pervasively when poisoning is not a
// concern for the caller.
func (r LockResult[G]) Unwrap() G {
	if r.err != nil {
		return r.err.Guard
	}
	return r.guard
}

// Get returns the guard and any poison error.
func (r LockResult[G]) Get() (G, error) {
	if r.err != nil {
		return r.err.Guard, r.err
	}
	return r.guard, nil
}

// TryLockResult is the return type of a non-blocking lock acquisition.
type TryLockResult[G any] struct {
	guard G
	err   *TryLockError[G]
}

func okTry[G any](guard G) TryLockResult[G] { return TryLockResult[G]{guard: guard} }

func errTry[G any](err *TryLockError[G]) TryLockResult[G] { return TryLockResult[G]{err: err} }

// Get returns the guard and any try-lock error. For the WouldBlock variant
// the guard is the zero value; for the Poisoned variant it is the carried
// guard, which still holds the lock.
func (r TryLockResult[G]) Get() (G, error) {
	if r.err != nil {
		if r.err.poison != nil {
			return r.err.poison.Guard, r.err
		}
		var zero G
		return zero, r.err
	}
	return r.guard, nil
}
