package condvar

import (
	"time"

	"github.com/ewe-studios/foundation-nostd/nlock"
)

// RwLockCondVar pairs a CondVar with a poisoning SpinRwLock[T]. Condition
// variables only ever make sense paired with exclusive access (the
// predicate must be mutated under a write guard), so Wait takes and
// returns *RwWriteGuard[T].
type RwLockCondVar[T any] struct {
	mu *nlock.SpinRwLock[T]
	cv CondVar
}

// NewRwLockCondVar returns an RwLockCondVar initialized to hold val.
func NewRwLockCondVar[T any](val T) *RwLockCondVar[T] {
	return &RwLockCondVar[T]{mu: nlock.NewSpinRwLock(val)}
}

// Read acquires the rwlock for shared access (bypassing the condvar;
// readers never wait on the condition here).
func (r *RwLockCondVar[T]) Read() nlock.LockResult[*nlock.RwReadGuard[T]] {
	return r.mu.Read()
}

// Write acquires the rwlock for exclusive access.
func (r *RwLockCondVar[T]) Write() nlock.LockResult[*nlock.RwWriteGuard[T]] {
	return r.mu.Write()
}

// Wait atomically releases the write guard, suspends, and reacquires
// exclusive access on wakeup.
func (r *RwLockCondVar[T]) Wait(guard *nlock.RwWriteGuard[T]) *nlock.RwWriteGuard[T] {
	ch := r.cv.addWaiter()
	guard.Unlock()
	<-ch
	return r.mu.Write().Unwrap()
}

// WaitWhile loops Wait until predicate(&*guard) is false.
func (r *RwLockCondVar[T]) WaitWhile(guard *nlock.RwWriteGuard[T], predicate func(*T) bool) *nlock.RwWriteGuard[T] {
	for predicate(guard.Deref()) {
		guard = r.Wait(guard)
	}
	return guard
}

// WaitTimeout is like Wait but returns after d even without a notify.
func (r *RwLockCondVar[T]) WaitTimeout(guard *nlock.RwWriteGuard[T], d time.Duration) (*nlock.RwWriteGuard[T], WaitTimeoutResult) {
	ch := r.cv.addWaiter()
	guard.Unlock()
	timedOut := false
	select {
	case <-ch:
	case <-time.After(d):
		r.cv.removeWaiter(ch)
		timedOut = true
	}
	return r.mu.Write().Unwrap(), WaitTimeoutResult{timedOut: timedOut}
}

// NotifyOne wakes at most one waiter.
func (r *RwLockCondVar[T]) NotifyOne() { r.cv.NotifyOne() }

// NotifyAll wakes every current waiter.
func (r *RwLockCondVar[T]) NotifyAll() { r.cv.NotifyAll() }
