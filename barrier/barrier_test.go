package barrier

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBarrierExactlyOneLeaderPerRound is spec.md §8 scenario 4: N
// goroutines each calling Wait once per round for 100 rounds, with exactly
// one leader per round. TestBarrierWaitBlocksUntilAllArrive covers that no
// goroutine returns before all N have arrived.
func TestBarrierExactlyOneLeaderPerRound(t *testing.T) {
	const n = 4
	const rounds = 100
	b := New(n)

	var wg sync.WaitGroup
	leaderCounts := make([]int32, rounds)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				res := b.Wait()
				if res.IsLeader() {
					atomic.AddInt32(&leaderCounts[r], 1)
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("barrier rounds did not complete")
	}

	for r, count := range leaderCounts {
		assert.EqualValues(t, 1, count, "round %d must have exactly one leader", r)
	}
}

func TestBarrierSingleParticipantAlwaysLeader(t *testing.T) {
	b := New(1)
	for i := 0; i < 5; i++ {
		res := b.Wait()
		assert.True(t, res.IsLeader())
	}
}

func TestBarrierWaitBlocksUntilAllArrive(t *testing.T) {
	const n = 3
	b := New(n)
	var arrived int32

	var wg sync.WaitGroup
	for i := 0; i < n-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Wait()
			atomic.AddInt32(&arrived, 1)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	require.EqualValues(t, 0, atomic.LoadInt32(&arrived), "no goroutine should return before the Nth arrival")

	b.Wait()
	wg.Wait()
	assert.EqualValues(t, n-1, atomic.LoadInt32(&arrived))
}
