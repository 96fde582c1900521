package atomics

import "runtime"

// tinySpinner is a minimal exponential backoff used only by AtomicLazy's
// losing racers while they wait for the winner to publish. It intentionally
// duplicates a sliver of package spinwait's logic rather than importing it:
// spinwait sits a layer above atomics in this module's dependency order.
type tinySpinner struct {
	iter uint
}

func newSpinner() *tinySpinner {
	return &tinySpinner{}
}

const tinySpinBound = 10

func (s *tinySpinner) spin() {
	if s.iter < tinySpinBound {
		for i := 0; i < 1<<s.iter; i++ {
			runtime.Gosched()
		}
		s.iter++
		return
	}
	runtime.Gosched()
}
