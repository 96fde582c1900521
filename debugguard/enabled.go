//go:build nostd_debug

package debugguard

import (
	"fmt"
	"sync/atomic"

	"github.com/petermattis/goid"
	deadlock "github.com/sasha-s/go-deadlock"
)

type mutexImpl[T any] interface {
	lock() func()
}

// noOwner is never a real goroutine id (goid.Get() is always positive).
const noOwner = 0

type debugMutex struct {
	dl    deadlock.Mutex
	owner atomic.Int64
}

func newMutexImpl[T any]() mutexImpl[T] {
	return &debugMutexHolder[T]{m: &debugMutex{}}
}

type debugMutexHolder[T any] struct{ m *debugMutex }

func (h *debugMutexHolder[T]) lock() func() {
	callerID := goid.Get()
	if h.m.owner.Load() == callerID {
		panic(fmt.Sprintf("debugguard: recursive Lock by goroutine %d", callerID))
	}
	h.m.dl.Lock()
	h.m.owner.Store(callerID)
	return func() {
		h.m.owner.Store(noOwner)
		h.m.dl.Unlock()
	}
}
