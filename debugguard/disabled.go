//go:build !nostd_debug

package debugguard

import "sync"

type mutexImpl[T any] interface {
	lock() func()
}

type plainMutexHolder[T any] struct{ mu sync.Mutex }

func newMutexImpl[T any]() mutexImpl[T] {
	return &plainMutexHolder[T]{}
}

func (h *plainMutexHolder[T]) lock() func() {
	h.mu.Lock()
	return h.mu.Unlock
}
