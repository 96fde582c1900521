package spinwait

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinWaitEscalatesThenYields(t *testing.T) {
	var sw SpinWait
	assert.False(t, sw.Exhausted())
	for i := 0; i < yieldBound; i++ {
		sw.Spin()
	}
	assert.True(t, sw.Exhausted())
	// Further spins must not panic or block; they degrade to Gosched.
	sw.Spin()
	sw.Spin()
}

func TestSpinWaitReset(t *testing.T) {
	var sw SpinWait
	for i := 0; i < yieldBound; i++ {
		sw.Spin()
	}
	assert.True(t, sw.Exhausted())
	sw.Reset()
	assert.False(t, sw.Exhausted())
}
