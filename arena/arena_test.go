package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateGetRoundTrip(t *testing.T) {
	a := NewMemoryAllocations[string]()
	id := a.Allocate("hello")
	v, ok := a.Get(id)
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

// TestArenaABAResistance is spec.md §8 scenario 5: allocate h1,
// deallocate, allocate h2 into the same slot; h1 must fail Get while h2
// succeeds, and their generations must differ.
func TestArenaABAResistance(t *testing.T) {
	a := NewMemoryAllocations[int]()
	h1 := a.Allocate(1)

	ok := a.Deallocate(h1)
	require.True(t, ok)

	h2 := a.Allocate(2)
	assert.Equal(t, h1.Index, h2.Index, "freed slot should be reused")
	assert.NotEqual(t, h1.Generation, h2.Generation)

	_, ok = a.Get(h1)
	assert.False(t, ok, "stale handle must not resolve")

	v, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestDeallocateTwiceReturnsFalseSecondTime(t *testing.T) {
	a := NewMemoryAllocations[int]()
	id := a.Allocate(1)
	assert.True(t, a.Deallocate(id))
	assert.False(t, a.Deallocate(id))
}

func TestGetMutMutatesInPlace(t *testing.T) {
	a := NewMemoryAllocations[int]()
	id := a.Allocate(10)
	ok := a.GetMut(id, func(v *int) { *v += 5 })
	require.True(t, ok)
	v, _ := a.Get(id)
	assert.Equal(t, 15, v)
}

func TestGetMutOnStaleHandleDoesNotCallFn(t *testing.T) {
	a := NewMemoryAllocations[int]()
	id := a.Allocate(1)
	a.Deallocate(id)
	called := false
	ok := a.GetMut(id, func(v *int) { called = true })
	assert.False(t, ok)
	assert.False(t, called)
}

func TestArenaConcurrentAllocateDeallocate(t *testing.T) {
	a := NewMemoryAllocations[int]()
	var wg sync.WaitGroup
	const goroutines = 20
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := a.Allocate(n)
				v, ok := a.Get(id)
				if ok {
					assert.Equal(t, n, v)
				}
				a.Deallocate(id)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, a.Len())
}

func TestArenaLenAndCap(t *testing.T) {
	a := NewMemoryAllocations[int]()
	assert.Equal(t, 0, a.Len())
	id1 := a.Allocate(1)
	a.Allocate(2)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 2, a.Cap())
	a.Deallocate(id1)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, a.Cap(), "capacity does not shrink on deallocate")
}
