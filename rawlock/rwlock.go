package rawlock

import (
	"sync/atomic"

	"github.com/ewe-studios/foundation-nostd/spinwait"
)

const (
	rwReaderMask   uint32 = (1 << 30) - 1
	rwWriterWait   uint32 = 1 << 30
	rwWriterActive uint32 = 1 << 31

	// MaxReaders is the largest reader count the state word can hold
	// (spec.md §6 "Reader count: 2^30").
	MaxReaders uint32 = rwReaderMask
)

func readerCount(state uint32) uint32 { return state & rwReaderMask }

// RawSpinRwLock is a writer-preferring reader-writer lock: once a writer
// has declared intent (WRITER_WAITING set), new readers are blocked until
// that writer has acquired and released exclusive access at least once.
// Tie-breaking between concurrent writers is unspecified; first-to-CAS
// wins.
type RawSpinRwLock struct {
	state uint32
	_pad  spinwait.CacheLinePad
}

// LockShared blocks until shared (reader) access is granted.
func (l *RawSpinRwLock) LockShared() {
	var sw spinwait.SpinWait
	for {
		state := atomic.LoadUint32(&l.state)
		if state&(rwWriterActive|rwWriterWait) == 0 && readerCount(state) < rwReaderMask {
			if atomic.CompareAndSwapUint32(&l.state, state, state+1) {
				return
			}
		}
		sw.Spin()
	}
}

// TryLockShared attempts a single admission check + CAS.
func (l *RawSpinRwLock) TryLockShared() bool {
	state := atomic.LoadUint32(&l.state)
	if state&(rwWriterActive|rwWriterWait) != 0 || readerCount(state) >= rwReaderMask {
		return false
	}
	return atomic.CompareAndSwapUint32(&l.state, state, state+1)
}

// UnlockShared releases one shared hold.
func (l *RawSpinRwLock) UnlockShared() {
	atomic.AddUint32(&l.state, ^uint32(0)) // fetch-sub 1
}

// LockExclusive blocks until exclusive (writer) access is granted. It
// first declares intent (WRITER_WAITING), which blocks new readers, then
// spins until all readers have drained and no other writer is active.
func (l *RawSpinRwLock) LockExclusive() {
	var sw spinwait.SpinWait
	for !l.tryDeclareIntent() {
		sw.Spin()
	}
	sw.Reset()
	for {
		state := atomic.LoadUint32(&l.state)
		if readerCount(state) == 0 && state&rwWriterActive == 0 {
			newState := (state &^ rwWriterWait) | rwWriterActive
			if atomic.CompareAndSwapUint32(&l.state, state, newState) {
				return
			}
		}
		sw.Spin()
	}
}

// tryDeclareIntent sets WRITER_WAITING if it is not already set by
// another writer; returns true once this goroutine observes the bit set
// (whether it set it or another concurrent writer did - concurrent
// writers still all spin in LockExclusive's second loop, and only one
// will win the final CAS to WRITER_ACTIVE).
func (l *RawSpinRwLock) tryDeclareIntent() bool {
	state := atomic.LoadUint32(&l.state)
	if state&rwWriterWait != 0 {
		return true
	}
	return atomic.CompareAndSwapUint32(&l.state, state, state|rwWriterWait)
}

// TryLockExclusive attempts exclusive acquisition without blocking.
func (l *RawSpinRwLock) TryLockExclusive() bool {
	state := atomic.LoadUint32(&l.state)
	if state != 0 {
		return false
	}
	return atomic.CompareAndSwapUint32(&l.state, 0, rwWriterActive)
}

// UnlockExclusive clears WRITER_ACTIVE.
func (l *RawSpinRwLock) UnlockExclusive() {
	for {
		state := atomic.LoadUint32(&l.state)
		if atomic.CompareAndSwapUint32(&l.state, state, state&^rwWriterActive) {
			return
		}
	}
}

// ReaderCount returns a point-in-time reader count, for diagnostics/tests.
func (l *RawSpinRwLock) ReaderCount() uint32 {
	return readerCount(atomic.LoadUint32(&l.state))
}

// WriterWaiting reports whether a writer currently has intent declared.
func (l *RawSpinRwLock) WriterWaiting() bool {
	return atomic.LoadUint32(&l.state)&rwWriterWait != 0
}
