// Package barrier implements spec.md §4.7: a fixed-width rendezvous point
// with a generation counter so a late waiter from a previous round can
// never be confused with the current round's leader.
package barrier

import "github.com/ewe-studios/foundation-nostd/condvar"

type barrierState struct {
	count      int
	generation uint64
}

// Barrier lets a fixed number of goroutines rendezvous repeatedly. Each
// round, exactly one caller's Wait returns a BarrierWaitResult with
// IsLeader() true.
type Barrier struct {
	n  int
	cm *condvar.CondVarMutex[barrierState]
}

// New returns a Barrier for n participants. n must be positive.
func New(n int) *Barrier {
	if n <= 0 {
		panic("barrier: n must be positive")
	}
	return &Barrier{n: n, cm: condvar.NewCondVarMutex(barrierState{})}
}

// BarrierWaitResult is returned from Wait; exactly one participant per
// round observes IsLeader() == true.
type BarrierWaitResult struct {
	leader bool
}

// IsLeader reports whether this call was the N-th arrival for its round.
func (r BarrierWaitResult) IsLeader() bool { return r.leader }

// Wait blocks until n goroutines have called Wait for the current round,
// then returns to all of them. The N-th arrival resets the counter,
// advances the generation, wakes every waiter, and is the sole leader for
// that round.
func (b *Barrier) Wait() BarrierWaitResult {
	guard := b.cm.Lock().Unwrap()
	myGen := guard.Deref().generation
	guard.Deref().count++

	if guard.Deref().count < b.n {
		guard = b.cm.WaitWhile(guard, func(s *barrierState) bool {
			return s.generation == myGen
		})
		guard.Unlock()
		return BarrierWaitResult{leader: false}
	}

	guard.Deref().count = 0
	guard.Deref().generation++
	guard.Unlock()
	b.cm.NotifyAll()
	return BarrierWaitResult{leader: true}
}

// N returns the configured participant count.
func (b *Barrier) N() int { return b.n }
