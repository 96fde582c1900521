package once

import "sync/atomic"

// OnceLock composes Once with a single-writer cell. The payload is
// published by the Release store that CallOnce performs on completion;
// every caller that observes Complete via the paired Acquire load sees
// the fully-initialized payload (spec.md §4.5).
type OnceLock[T any] struct {
	once  Once
	value atomic.Pointer[T]
}

// GetOrInit returns the lazily-initialized payload, running f at most
// once. If a previous initializer panicked, GetOrInit panics with
// ErrOncePoisoned rather than silently re-running f, since there is no
// sensible zero-value T to hand back.
func (l *OnceLock[T]) GetOrInit(f func() T) T {
	err := l.once.CallOnce(func() {
		v := f()
		l.value.Store(&v)
	})
	if err != nil {
		panic(err)
	}
	return *l.value.Load()
}

// Get returns the payload and whether it has been initialized, without
// running any initializer.
func (l *OnceLock[T]) Get() (T, bool) {
	if !l.once.Done() {
		var zero T
		return zero, false
	}
	return *l.value.Load(), true
}

// Set initializes the cell if it has not already been initialized,
// reporting whether this call won the race.
func (l *OnceLock[T]) Set(val T) bool {
	won := false
	_ = l.once.CallOnce(func() {
		won = true
		l.value.Store(&val)
	})
	return won
}

// IsPoisoned reports whether a previous initializer panicked.
func (l *OnceLock[T]) IsPoisoned() bool {
	return l.once.State() == StatePoisoned
}
