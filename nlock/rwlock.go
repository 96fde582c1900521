package nlock

import (
	"sync/atomic"

	"github.com/ewe-studios/foundation-nostd/rawlock"
)

// SpinRwLock is the writer-preferring poisoning reader-writer lock of
// spec.md §4.4: once a writer has declared intent, new readers are
// blocked until that writer completes.
type SpinRwLock[T any] struct {
	raw      rawlock.RawSpinRwLock
	poisoned atomic.Bool
	value    T
}

// NewSpinRwLock returns an rwlock initialized to hold val.
func NewSpinRwLock[T any](val T) *SpinRwLock[T] {
	return &SpinRwLock[T]{value: val}
}

// RwReadGuard grants shared (read-only) access. Read guards never poison
// the lock: reads cannot corrupt state (spec.md §5 "Panic safety").
type RwReadGuard[T any] struct {
	l *SpinRwLock[T]
}

// Deref returns a read-only pointer to the payload.
func (g *RwReadGuard[T]) Deref() *T { return &g.l.value }

// Unlock releases the read guard. Reads never poison the lock, but a
// panic unwinding through the critical section must still propagate past
// this call, exactly as it would without any guard in the way.
func (g *RwReadGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.l.raw.UnlockShared()
		panic(r)
	}
	g.l.raw.UnlockShared()
}

// RwWriteGuard grants exclusive (read/write) access and poisons the lock
// if its Unlock is reached while a panic is unwinding.
type RwWriteGuard[T any] struct {
	l *SpinRwLock[T]
}

// Deref returns a mutable pointer to the payload.
func (g *RwWriteGuard[T]) Deref() *T { return &g.l.value }

// Unlock releases the write guard, poisoning the lock first if called
// during a panic unwind. Must be called via defer.
func (g *RwWriteGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.l.poisoned.Store(true)
		g.l.raw.UnlockExclusive()
		panic(r)
	}
	g.l.raw.UnlockExclusive()
}

// Read blocks until shared access is granted.
func (l *SpinRwLock[T]) Read() LockResult[*RwReadGuard[T]] {
	l.raw.LockShared()
	guard := &RwReadGuard[T]{l: l}
	if l.poisoned.Load() {
		return Err(guard)
	}
	return Ok(guard)
}

// TryRead attempts shared acquisition without blocking.
func (l *SpinRwLock[T]) TryRead() TryLockResult[*RwReadGuard[T]] {
	if !l.raw.TryLockShared() {
		return errTry[*RwReadGuard[T]](WouldBlock[*RwReadGuard[T]]())
	}
	guard := &RwReadGuard[T]{l: l}
	if l.poisoned.Load() {
		return errTry(Poisoned(guard))
	}
	return okTry(guard)
}

// Write blocks until exclusive access is granted.
func (l *SpinRwLock[T]) Write() LockResult[*RwWriteGuard[T]] {
	l.raw.LockExclusive()
	guard := &RwWriteGuard[T]{l: l}
	if l.poisoned.Load() {
		return Err(guard)
	}
	return Ok(guard)
}

// TryWrite attempts exclusive acquisition without blocking.
func (l *SpinRwLock[T]) TryWrite() TryLockResult[*RwWriteGuard[T]] {
	if !l.raw.TryLockExclusive() {
		return errTry[*RwWriteGuard[T]](WouldBlock[*RwWriteGuard[T]]())
	}
	guard := &RwWriteGuard[T]{l: l}
	if l.poisoned.Load() {
		return errTry(Poisoned(guard))
	}
	return okTry(guard)
}

// IsPoisoned observes the poisoned bit.
func (l *SpinRwLock[T]) IsPoisoned() bool { return l.poisoned.Load() }

// ClearPoison clears the poisoned bit explicitly.
func (l *SpinRwLock[T]) ClearPoison() { l.poisoned.Store(false) }
