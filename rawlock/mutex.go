// Package rawlock implements the pure state-machine locks described in
// spec.md §4.3: no poisoning, no payload, just an atomic state word and a
// spin-with-backoff acquisition loop. Higher layers (package nlock) wrap
// these with UnsafeCell-equivalent payloads, poisoning, and RAII guards.
package rawlock

import (
	"sync/atomic"

	"github.com/ewe-studios/foundation-nostd/spinwait"
)

const (
	mutexUnlocked uint32 = 0
	mutexLocked   uint32 = 1
)

// RawSpinMutex is a single atomic state word with a LOCKED bit. It has no
// notion of poisoning or ownership tracking; callers must not double
// unlock or unlock from a goroutine that never locked it (undefined
// behavior, matching spec.md's RawSpinMutex.unlock precondition).
//
// _pad isolates state onto its own cache line: under contention every
// spinning goroutine's CAS attempt hammers this word, and if it shared a
// line with an unrelated field, that field's readers would pay for the
// traffic too.
type RawSpinMutex struct {
	state uint32
	_pad  spinwait.CacheLinePad
}

// Lock spins (with exponential backoff) until it acquires the mutex.
// Cannot fail.
func (m *RawSpinMutex) Lock() {
	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
		return
	}
	var sw spinwait.SpinWait
	for {
		sw.Spin()
		if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
			return
		}
	}
}

// TryLock attempts a single CAS and reports whether it succeeded.
func (m *RawSpinMutex) TryLock() bool {
	return atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked)
}

// TryLockWithSpinLimit behaves like Lock but gives up, returning false,
// after n backoff iterations without having acquired the lock.
func (m *RawSpinMutex) TryLockWithSpinLimit(n int) bool {
	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
		return true
	}
	var sw spinwait.SpinWait
	for i := 0; i < n; i++ {
		sw.Spin()
		if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLocked) {
			return true
		}
	}
	return false
}

// Unlock clears the LOCKED bit. Precondition: the caller currently holds
// the lock; violating this is undefined behavior (per spec.md §4.3).
func (m *RawSpinMutex) Unlock() {
	atomic.StoreUint32(&m.state, mutexUnlocked)
}

// IsLocked observes the current state. Intended for diagnostics/tests
// only; the result may be stale the instant it is returned.
func (m *RawSpinMutex) IsLocked() bool {
	return atomic.LoadUint32(&m.state) == mutexLocked
}
