// Package spinwait implements the exponential-backoff helper shared by
// every spin-based primitive in this module (RawSpinMutex, RawSpinRwLock,
// and everything built on top of them). It trades CPU cycles and cache
// coherence traffic for avoiding a trip through the OS scheduler on the
// common, briefly-contended case.
package spinwait

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// yieldBound is the number of doublings before SpinWait gives up spinning
// and hands the goroutine back to the scheduler via runtime.Gosched. 2^10
// matches spec.md §4.2's "up to ~2^10" bound.
const yieldBound = 10

// SpinWait tracks an exponential-backoff counter. Each Spin call either
// busy-waits for a number of CPU hints that doubles every call, or, once
// the bound is exceeded, issues a cooperative yield instead.
//
// A zero-value SpinWait is ready to use.
type SpinWait struct {
	counter uint32
}

// Spin performs one backoff step: either a bounded busy-wait issuing a CPU
// "spin" hint (spinHint, an empty non-inlined call, since Go exposes no
// native PAUSE intrinsic), or, past yieldBound, a single cooperative
// yield via runtime.Gosched. It never blocks on the OS scheduler in a way that could exceed a
// single time-slice.
func (s *SpinWait) Spin() {
	if s.counter >= yieldBound {
		runtime.Gosched()
		return
	}
	iterations := uint32(1) << s.counter
	for i := uint32(0); i < iterations; i++ {
		spinHint()
	}
	s.counter++
}

// SpinNoYield is identical to Spin but never falls back to
// runtime.Gosched; callers that must not cooperatively yield (for example
// while they still intend to retry a handful more times under a spin
// limit) can use this to stay purely CPU-bound.
func (s *SpinWait) SpinNoYield() {
	iterations := uint32(1) << minU32(s.counter, yieldBound)
	for i := uint32(0); i < iterations; i++ {
		spinHint()
	}
	if s.counter < yieldBound {
		s.counter++
	}
}

// Exhausted reports whether Spin has reached the point where it would
// yield rather than busy-wait. A caller can poll it to bound total backoff
// iterations rather than wall-clock time; RawSpinMutex.TryLockWithSpinLimit
// does not use it and counts its own iterations instead.
func (s *SpinWait) Exhausted() bool {
	return s.counter >= yieldBound
}

// Reset returns the SpinWait to its initial state.
func (s *SpinWait) Reset() {
	s.counter = 0
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// CacheLinePad re-exports golang.org/x/sys/cpu's cache-line padding type,
// embedded after each rawlock state word (RawSpinMutex, RawSpinRwLock,
// ReaderRawSpinRwLock) so a contended atomic word does not share a cache
// line with an unrelated one. See joeycumines-go-utilpkg/eventloop's
// align_test.go for the same technique. Arena slots are not padded: they
// are only ever touched while the arena's single nlock.SpinMutex is held,
// so there is no concurrent traffic on a slot's memory to isolate.
type CacheLinePad = cpu.CacheLinePad
