//go:build !nostd_std && !nostd_wasmnoop && !(js && wasm)

// This file backs compat's default substrate: package nlock/condvar/barrier's
// spin-with-backoff primitives, selected whenever neither nostd_std nor
// nostd_wasmnoop is set and the target is not js/wasm.
package compat

import (
	"time"

	"github.com/ewe-studios/foundation-nostd/barrier"
	"github.com/ewe-studios/foundation-nostd/condvar"
	"github.com/ewe-studios/foundation-nostd/nlock"
	"github.com/ewe-studios/foundation-nostd/once"
)

type spinMutexAdapter[T any] struct{ m *nlock.SpinMutex[T] }

func newMutexImpl[T any](val T) mutexImpl[T] {
	return &spinMutexAdapter[T]{m: nlock.NewSpinMutex(val)}
}

func (a *spinMutexAdapter[T]) Lock() (Guard[T], error) {
	g, err := a.m.Lock().Get()
	return g, err
}

func (a *spinMutexAdapter[T]) TryLock() (Guard[T], error) {
	g, err := a.m.TryLock().Get()
	return g, err
}

func (a *spinMutexAdapter[T]) IsPoisoned() bool { return a.m.IsPoisoned() }

type spinRwLockAdapter[T any] struct{ l *nlock.SpinRwLock[T] }

func newRwLockImpl[T any](val T) rwLockImpl[T] {
	return &spinRwLockAdapter[T]{l: nlock.NewSpinRwLock(val)}
}

func (a *spinRwLockAdapter[T]) Read() (Guard[T], error) {
	g, err := a.l.Read().Get()
	return g, err
}

func (a *spinRwLockAdapter[T]) Write() (Guard[T], error) {
	g, err := a.l.Write().Get()
	return g, err
}

func (a *spinRwLockAdapter[T]) IsPoisoned() bool { return a.l.IsPoisoned() }

type spinCondVarMutexAdapter[T any] struct{ cm *condvar.CondVarMutex[T] }

func newCondVarMutexImpl[T any](val T) condVarMutexImpl[T] {
	return &spinCondVarMutexAdapter[T]{cm: condvar.NewCondVarMutex(val)}
}

func (a *spinCondVarMutexAdapter[T]) Lock() (Guard[T], error) {
	g, err := a.cm.Lock().Get()
	return g, err
}

func (a *spinCondVarMutexAdapter[T]) Wait(g Guard[T]) Guard[T] {
	return a.cm.Wait(g.(*nlock.MutexGuard[T]))
}

func (a *spinCondVarMutexAdapter[T]) WaitWhile(g Guard[T], predicate func(*T) bool) Guard[T] {
	return a.cm.WaitWhile(g.(*nlock.MutexGuard[T]), predicate)
}

func (a *spinCondVarMutexAdapter[T]) WaitTimeout(g Guard[T], d time.Duration) (Guard[T], WaitTimeoutResult) {
	ng, res := a.cm.WaitTimeout(g.(*nlock.MutexGuard[T]), d)
	return ng, WaitTimeoutResult{timedOut: res.TimedOut()}
}

func (a *spinCondVarMutexAdapter[T]) NotifyOne() { a.cm.NotifyOne() }
func (a *spinCondVarMutexAdapter[T]) NotifyAll() { a.cm.NotifyAll() }

type spinBarrierAdapter struct{ b *barrier.Barrier }

func newBarrierImpl(n int) barrierImpl { return &spinBarrierAdapter{b: barrier.New(n)} }

func (a *spinBarrierAdapter) Wait() bool { return a.b.Wait().IsLeader() }

type spinOnceAdapter struct{ o once.Once }

func newOnceImpl() onceImpl { return &spinOnceAdapter{} }

func (a *spinOnceAdapter) CallOnce(f func()) error { return a.o.CallOnce(f) }
func (a *spinOnceAdapter) Done() bool              { return a.o.Done() }

type spinOnceLockAdapter[T any] struct{ l once.OnceLock[T] }

func newOnceLockImpl[T any]() onceLockImpl[T] { return &spinOnceLockAdapter[T]{} }

func (a *spinOnceLockAdapter[T]) GetOrInit(f func() T) T { return a.l.GetOrInit(f) }
func (a *spinOnceLockAdapter[T]) Get() (T, bool)         { return a.l.Get() }
