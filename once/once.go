// Package once implements the one-time-initialization state machine of
// spec.md §4.5: Once and OnceLock[T].
package once

import (
	"errors"
	"sync/atomic"

	"github.com/ewe-studios/foundation-nostd/spinwait"
)

const (
	stateUninit  uint32 = 0
	stateRunning uint32 = 1
	stateComplete uint32 = 2
	statePoisoned uint32 = 3
)

// ErrOncePoisoned is returned when call_once observes that a prior call's
// initializer panicked.
var ErrOncePoisoned = errors.New("once: initializer panicked on a previous call")

// Once is a one-shot gate: its initializer runs exactly once across any
// number of concurrent callers. Recursive calls to CallOnce from within
// the initializer on the same Once are forbidden (spec.md §4.5); behavior
// in that case is unspecified and will deadlock under this
// implementation's spin loop.
type Once struct {
	state uint32
}

// State reports the current OnceState, primarily for diagnostics.
type State uint32

const (
	StateUninit   State = State(stateUninit)
	StateRunning  State = State(stateRunning)
	StateComplete State = State(stateComplete)
	StatePoisoned State = State(statePoisoned)
)

// State returns the current state (Acquire load).
func (o *Once) State() State {
	return State(atomic.LoadUint32(&o.state))
}

// Done reports whether the initializer has already completed
// successfully.
func (o *Once) Done() bool {
	return atomic.LoadUint32(&o.state) == stateComplete
}

// CallOnce runs f exactly once. If a prior call's f panicked, CallOnce
// returns ErrOncePoisoned without running f again and without panicking
// itself - callers that want the original panic's process-termination
// semantics should panic on this error themselves.
func (o *Once) CallOnce(f func()) error {
	if atomic.LoadUint32(&o.state) == stateComplete {
		return nil
	}
	if atomic.CompareAndSwapUint32(&o.state, stateUninit, stateRunning) {
		o.run(f)
		return o.resultAfterRun()
	}
	return o.waitForOther()
}

func (o *Once) run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			atomic.StoreUint32(&o.state, statePoisoned)
			panic(r)
		}
	}()
	f()
	atomic.StoreUint32(&o.state, stateComplete)
}

func (o *Once) resultAfterRun() error {
	if atomic.LoadUint32(&o.state) == statePoisoned {
		return ErrOncePoisoned
	}
	return nil
}

func (o *Once) waitForOther() error {
	var sw spinwait.SpinWait
	for {
		switch atomic.LoadUint32(&o.state) {
		case stateComplete:
			return nil
		case statePoisoned:
			return ErrOncePoisoned
		}
		sw.Spin()
	}
}
