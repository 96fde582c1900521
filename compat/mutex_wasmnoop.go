//go:build nostd_wasmnoop || (js && wasm)

// This file backs compat's single-threaded substrate: package noop's
// no-op variants, selected explicitly via nostd_wasmnoop or automatically
// whenever GOOS=js GOARCH=wasm (spec.md §6's "wasm-single-thread").
package compat

import (
	"errors"
	"time"

	"github.com/ewe-studios/foundation-nostd/noop"
)

var errPoisoned = errors.New("compat: lock poisoned by a panicking holder")
var errWouldBlock = errors.New("compat: operation would block")

type noopMutexAdapter[T any] struct{ m *noop.NoopMutex[T] }

func newMutexImpl[T any](val T) mutexImpl[T] {
	return &noopMutexAdapter[T]{m: noop.NewNoopMutex(val)}
}

func (a *noopMutexAdapter[T]) Lock() (Guard[T], error) { return a.m.Lock(), nil }

func (a *noopMutexAdapter[T]) TryLock() (Guard[T], error) {
	g, ok := a.m.TryLock()
	if !ok {
		return nil, errWouldBlock
	}
	return g, nil
}

func (a *noopMutexAdapter[T]) IsPoisoned() bool { return a.m.IsPoisoned() }

type noopRwLockAdapter[T any] struct{ l *noop.NoopRwLock[T] }

func newRwLockImpl[T any](val T) rwLockImpl[T] {
	return &noopRwLockAdapter[T]{l: noop.NewNoopRwLock(val)}
}

func (a *noopRwLockAdapter[T]) Read() (Guard[T], error)  { return a.l.Read(), nil }
func (a *noopRwLockAdapter[T]) Write() (Guard[T], error) { return a.l.Write(), nil }
func (a *noopRwLockAdapter[T]) IsPoisoned() bool         { return a.l.IsPoisoned() }

type noopCondVarMutexAdapter[T any] struct{ cm *noop.NoopCondVarMutex[T] }

func newCondVarMutexImpl[T any](val T) condVarMutexImpl[T] {
	return &noopCondVarMutexAdapter[T]{cm: noop.NewNoopCondVarMutex(val)}
}

func (a *noopCondVarMutexAdapter[T]) Lock() (Guard[T], error) { return a.cm.Lock(), nil }

func (a *noopCondVarMutexAdapter[T]) Wait(g Guard[T]) Guard[T] {
	return a.cm.Wait(g.(*noop.NoopGuard[T]))
}

func (a *noopCondVarMutexAdapter[T]) WaitWhile(g Guard[T], predicate func(*T) bool) Guard[T] {
	return a.cm.WaitWhile(g.(*noop.NoopGuard[T]), predicate)
}

func (a *noopCondVarMutexAdapter[T]) WaitTimeout(g Guard[T], d time.Duration) (Guard[T], WaitTimeoutResult) {
	ng, res := a.cm.WaitTimeout(g.(*noop.NoopGuard[T]), d)
	return ng, WaitTimeoutResult{timedOut: res.TimedOut()}
}

func (a *noopCondVarMutexAdapter[T]) NotifyOne() { a.cm.NotifyOne() }
func (a *noopCondVarMutexAdapter[T]) NotifyAll() { a.cm.NotifyAll() }

type noopBarrierAdapter struct{ b *noop.NoopBarrier }

func newBarrierImpl(n int) barrierImpl { return &noopBarrierAdapter{b: noop.NewNoopBarrier(n)} }

func (a *noopBarrierAdapter) Wait() bool { return a.b.Wait().IsLeader() }

type noopOnceAdapter struct{ o noop.NoopOnce }

func newOnceImpl() onceImpl { return &noopOnceAdapter{} }

// CallOnce only converts a panic into errPoisoned when this call did not
// run f itself - i.e. a prior call already poisoned the Once. The call
// that actually runs f and panics must have that panic propagate
// unmodified, matching the nostd_std and default spin substrates (whose
// underlying once.Once.CallOnce re-panics for the runner and only returns
// ErrOncePoisoned to callers that lost the race).
func (a *noopOnceAdapter) CallOnce(f func()) error {
	if a.o.IsPoisoned() {
		return errPoisoned
	}
	a.o.CallOnce(f)
	return nil
}

func (a *noopOnceAdapter) Done() bool { return a.o.Done() }

type noopOnceLockAdapter[T any] struct{ l noop.NoopOnceLock[T] }

func newOnceLockImpl[T any]() onceLockImpl[T] { return &noopOnceLockAdapter[T]{} }

func (a *noopOnceLockAdapter[T]) GetOrInit(f func() T) T { return a.l.GetOrInit(f) }
func (a *noopOnceLockAdapter[T]) Get() (T, bool)         { return a.l.Get() }
