// Package arena implements the generational allocator of spec.md §4.8:
// a growable slab of slots, each carrying a generation counter, backing
// the cross-boundary handles (MemoryId) used by higher layers. The free
// list is protected by a poisoning SpinMutex (package nlock), per
// spec.md's "The generational arena uses component 4 to protect its free
// list."
//
// Deviation from the upstream source (spec.md §9): the upstream uses u64
// for length/capacity bookkeeping even on 32-bit hosts. Go's int is
// already word-sized and more than sufficient for any in-process slab, so
// this port uses plain int/uint32 throughout rather than forcing 64-bit
// arithmetic.
package arena

import "github.com/ewe-studios/foundation-nostd/nlock"

// MemoryId identifies a single allocation: a slot index plus the
// generation that slot held at allocation time. Dereferencing a MemoryId
// whose Generation no longer matches the slot's current generation
// yields NotFound (modeled here as (zero value, false) / false returns, per
// spec.md §7 error taxonomy item 3).
type MemoryId struct {
	Index      uint32
	Generation uint32
}

type slot[T any] struct {
	generation uint32
	occupied   bool
	value      T
	nextFree   uint32 // valid only when !occupied
}

type arenaState[T any] struct {
	slots    []slot[T]
	freeHead uint32
	freeLen  int
}

const noFree = ^uint32(0)

// MemoryAllocations is a growable generational arena. An arena returned by
// NewMemoryAllocations is empty; the zero value has no mutex and is not
// usable. Every Allocate returns a stable
// handle valid until that handle is explicitly Deallocate'd or the arena
// itself is dropped (in Go: garbage collected, which automatically drops
// every live payload exactly once - there is no separate Drop step to
// implement).
type MemoryAllocations[T any] struct {
	mu *nlock.SpinMutex[arenaState[T]]
}

// NewMemoryAllocations returns an empty arena.
func NewMemoryAllocations[T any]() *MemoryAllocations[T] {
	return &MemoryAllocations[T]{mu: nlock.NewSpinMutex(arenaState[T]{freeHead: noFree})}
}

// Allocate stores val in a free slot (or grows the arena) and returns a
// handle to it.
func (a *MemoryAllocations[T]) Allocate(val T) MemoryId {
	guard := a.mu.Lock().Unwrap()
	defer guard.Unlock()
	s := guard.Deref()

	if s.freeHead != noFree {
		idx := s.freeHead
		sl := &s.slots[idx]
		s.freeHead = sl.nextFree
		s.freeLen--
		sl.occupied = true
		sl.value = val
		return MemoryId{Index: idx, Generation: sl.generation}
	}

	idx := uint32(len(s.slots))
	s.slots = append(s.slots, slot[T]{generation: 0, occupied: true, value: val})
	return MemoryId{Index: idx, Generation: 0}
}

// Get returns a copy of the value at id, or ok=false if the handle is
// stale or was never allocated (spec.md §8 "Arena ABA resistance").
//
// Note: Go has no borrow checker, so unlike the upstream `&T`/`&mut T`
// split this returns T by value for Get and mutates in place via a
// callback for GetMut, rather than handing out a raw pointer that could
// alias past a concurrent Deallocate.
func (a *MemoryAllocations[T]) Get(id MemoryId) (T, bool) {
	guard := a.mu.Lock().Unwrap()
	defer guard.Unlock()
	s := guard.Deref()
	if int(id.Index) >= len(s.slots) {
		var zero T
		return zero, false
	}
	sl := &s.slots[id.Index]
	if !sl.occupied || sl.generation != id.Generation {
		var zero T
		return zero, false
	}
	return sl.value, true
}

// GetMut runs fn with exclusive access to the value at id and reports
// whether id was valid. fn is not called at all if id is stale.
func (a *MemoryAllocations[T]) GetMut(id MemoryId, fn func(*T)) bool {
	guard := a.mu.Lock().Unwrap()
	defer guard.Unlock()
	s := guard.Deref()
	if int(id.Index) >= len(s.slots) {
		return false
	}
	sl := &s.slots[id.Index]
	if !sl.occupied || sl.generation != id.Generation {
		return false
	}
	fn(&sl.value)
	return true
}

// Deallocate drops the value at id, frees the slot, and bumps its
// generation (wrapping, per spec.md §6 "Generation counter: wraps at
// 2^32"). Reports false if id was already stale/invalid - deallocating
// twice through the same handle is a no-op the second time, not an
// error.
func (a *MemoryAllocations[T]) Deallocate(id MemoryId) bool {
	guard := a.mu.Lock().Unwrap()
	defer guard.Unlock()
	s := guard.Deref()
	if int(id.Index) >= len(s.slots) {
		return false
	}
	sl := &s.slots[id.Index]
	if !sl.occupied || sl.generation != id.Generation {
		return false
	}
	var zero T
	sl.value = zero
	sl.occupied = false
	sl.generation++ // wraps at 2^32 by plain uint32 overflow
	sl.nextFree = s.freeHead
	s.freeHead = id.Index
	s.freeLen++
	return true
}

// Len returns the number of currently-occupied slots.
func (a *MemoryAllocations[T]) Len() int {
	guard := a.mu.Lock().Unwrap()
	defer guard.Unlock()
	s := guard.Deref()
	return len(s.slots) - s.freeLen
}

// Cap returns the total number of slots the arena has ever grown to.
func (a *MemoryAllocations[T]) Cap() int {
	guard := a.mu.Lock().Unwrap()
	defer guard.Unlock()
	return len(guard.Deref().slots)
}
