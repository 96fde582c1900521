package rawlock

import (
	"sync/atomic"

	"github.com/ewe-studios/foundation-nostd/spinwait"
)

// ReaderRawSpinRwLock is the reader-preferring counterpart to
// RawSpinRwLock: a pending writer does not block new readers, so writers
// may starve under sustained read load (spec.md §4.3 ReaderSpinRwLock).
// State layout is identical, but WRITER_WAITING is never used: readers are
// admitted whenever no writer is active, and LockExclusive never declares
// intent.
type ReaderRawSpinRwLock struct {
	state uint32
	_pad  spinwait.CacheLinePad
}

// LockShared blocks only while a writer is active, never while one is
// merely waiting.
func (l *ReaderRawSpinRwLock) LockShared() {
	var sw spinwait.SpinWait
	for {
		state := atomic.LoadUint32(&l.state)
		if state&rwWriterActive == 0 && readerCount(state) < rwReaderMask {
			if atomic.CompareAndSwapUint32(&l.state, state, state+1) {
				return
			}
		}
		sw.Spin()
	}
}

// TryLockShared is the non-blocking form of LockShared.
func (l *ReaderRawSpinRwLock) TryLockShared() bool {
	state := atomic.LoadUint32(&l.state)
	if state&rwWriterActive != 0 || readerCount(state) >= rwReaderMask {
		return false
	}
	return atomic.CompareAndSwapUint32(&l.state, state, state+1)
}

// UnlockShared releases one shared hold.
func (l *ReaderRawSpinRwLock) UnlockShared() {
	atomic.AddUint32(&l.state, ^uint32(0))
}

// LockExclusive blocks until exclusive access is granted. Because readers
// are never gated by writer intent, a writer here only needs to wait for
// the reader count to reach zero before claiming WRITER_ACTIVE.
func (l *ReaderRawSpinRwLock) LockExclusive() {
	var sw spinwait.SpinWait
	for {
		state := atomic.LoadUint32(&l.state)
		if readerCount(state) == 0 && state&rwWriterActive == 0 {
			if atomic.CompareAndSwapUint32(&l.state, state, state|rwWriterActive) {
				return
			}
		}
		sw.Spin()
	}
}

// TryLockExclusive attempts exclusive acquisition without blocking.
func (l *ReaderRawSpinRwLock) TryLockExclusive() bool {
	state := atomic.LoadUint32(&l.state)
	if state != 0 {
		return false
	}
	return atomic.CompareAndSwapUint32(&l.state, 0, rwWriterActive)
}

// UnlockExclusive clears WRITER_ACTIVE.
func (l *ReaderRawSpinRwLock) UnlockExclusive() {
	for {
		state := atomic.LoadUint32(&l.state)
		if atomic.CompareAndSwapUint32(&l.state, state, state&^rwWriterActive) {
			return
		}
	}
}

// ReaderCount returns a point-in-time reader count, for diagnostics/tests.
func (l *ReaderRawSpinRwLock) ReaderCount() uint32 {
	return readerCount(atomic.LoadUint32(&l.state))
}
