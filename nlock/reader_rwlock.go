package nlock

import (
	"sync/atomic"

	"github.com/ewe-studios/foundation-nostd/rawlock"
)

// ReaderSpinRwLock is the reader-preferring poisoning rwlock of spec.md
// §4.4: a pending writer never blocks new readers, so writers may starve
// under sustained read load.
type ReaderSpinRwLock[T any] struct {
	raw      rawlock.ReaderRawSpinRwLock
	poisoned atomic.Bool
	value    T
}

// NewReaderSpinRwLock returns a reader-preferring rwlock holding val.
func NewReaderSpinRwLock[T any](val T) *ReaderSpinRwLock[T] {
	return &ReaderSpinRwLock[T]{value: val}
}

// ReaderRwReadGuard grants shared access on a reader-preferring lock.
type ReaderRwReadGuard[T any] struct {
	l *ReaderSpinRwLock[T]
}

// Deref returns a read-only pointer to the payload.
func (g *ReaderRwReadGuard[T]) Deref() *T { return &g.l.value }

// Unlock releases the read guard. Reads never poison the lock, but a
// panic unwinding through the critical section must still propagate past
// this call.
func (g *ReaderRwReadGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.l.raw.UnlockShared()
		panic(r)
	}
	g.l.raw.UnlockShared()
}

// ReaderRwWriteGuard grants exclusive access on a reader-preferring lock.
type ReaderRwWriteGuard[T any] struct {
	l *ReaderSpinRwLock[T]
}

// Deref returns a mutable pointer to the payload.
func (g *ReaderRwWriteGuard[T]) Deref() *T { return &g.l.value }

// Unlock releases the write guard, poisoning first if unwinding.
func (g *ReaderRwWriteGuard[T]) Unlock() {
	if r := recover(); r != nil {
		g.l.poisoned.Store(true)
		g.l.raw.UnlockExclusive()
		panic(r)
	}
	g.l.raw.UnlockExclusive()
}

// Read blocks until shared access is granted.
func (l *ReaderSpinRwLock[T]) Read() LockResult[*ReaderRwReadGuard[T]] {
	l.raw.LockShared()
	guard := &ReaderRwReadGuard[T]{l: l}
	if l.poisoned.Load() {
		return Err(guard)
	}
	return Ok(guard)
}

// TryRead attempts shared acquisition without blocking.
func (l *ReaderSpinRwLock[T]) TryRead() TryLockResult[*ReaderRwReadGuard[T]] {
	if !l.raw.TryLockShared() {
		return errTry[*ReaderRwReadGuard[T]](WouldBlock[*ReaderRwReadGuard[T]]())
	}
	guard := &ReaderRwReadGuard[T]{l: l}
	if l.poisoned.Load() {
		return errTry(Poisoned(guard))
	}
	return okTry(guard)
}

// Write blocks until exclusive access is granted.
func (l *ReaderSpinRwLock[T]) Write() LockResult[*ReaderRwWriteGuard[T]] {
	l.raw.LockExclusive()
	guard := &ReaderRwWriteGuard[T]{l: l}
	if l.poisoned.Load() {
		return Err(guard)
	}
	return Ok(guard)
}

// TryWrite attempts exclusive acquisition without blocking.
func (l *ReaderSpinRwLock[T]) TryWrite() TryLockResult[*ReaderRwWriteGuard[T]] {
	if !l.raw.TryLockExclusive() {
		return errTry[*ReaderRwWriteGuard[T]](WouldBlock[*ReaderRwWriteGuard[T]]())
	}
	guard := &ReaderRwWriteGuard[T]{l: l}
	if l.poisoned.Load() {
		return errTry(Poisoned(guard))
	}
	return okTry(guard)
}

// IsPoisoned observes the poisoned bit.
func (l *ReaderSpinRwLock[T]) IsPoisoned() bool { return l.poisoned.Load() }

// ClearPoison clears the poisoned bit explicitly.
func (l *ReaderSpinRwLock[T]) ClearPoison() { l.poisoned.Store(false) }
