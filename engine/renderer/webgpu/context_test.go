package webgpu

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResource struct {
	retains  atomic.Int32
	releases atomic.Int32
}

func (c *countingResource) retain()     { c.retains.Add(1) }
func (c *countingResource) releaseRef() { c.releases.Add(1) }

func TestContextDrainRespectsFrameWindow(t *testing.T) {
	ctx, _ := newTestContext()
	res := &countingResource{}

	ctx.FrameNumber = 1
	ctx.retainUntilDrained(1, []refCounted{res})

	ctx.drainCompleted()
	assert.Equal(t, int32(0), res.releases.Load())

	ctx.FrameNumber = 2
	ctx.drainCompleted()
	assert.Equal(t, int32(0), res.releases.Load())

	ctx.FrameNumber = 3
	ctx.drainCompleted()
	assert.Equal(t, int32(1), res.releases.Load())
}

func TestContextDrainReleasesOldestFirst(t *testing.T) {
	ctx, _ := newTestContext()
	old := &countingResource{}
	recent := &countingResource{}

	ctx.retainUntilDrained(1, []refCounted{old})
	ctx.retainUntilDrained(2, []refCounted{recent})

	ctx.FrameNumber = 3
	ctx.drainCompleted()
	assert.Equal(t, int32(1), old.releases.Load())
	assert.Equal(t, int32(0), recent.releases.Load())

	ctx.FrameNumber = 4
	ctx.drainCompleted()
	assert.Equal(t, int32(1), recent.releases.Load())
}

func TestContextRetentionOverflowReleasesEagerly(t *testing.T) {
	ctx, _ := newTestContext()

	resources := make([]refCounted, pendingQueueSize+5)
	for i := range resources {
		resources[i] = &countingResource{}
	}
	ctx.retainUntilDrained(1, resources)

	// The queue holds its capacity; the overflow was released immediately
	// rather than leaked.
	require.Equal(t, pendingQueueSize, ctx.pending.Count())
	released := 0
	for _, r := range resources {
		if r.(*countingResource).releases.Load() > 0 {
			released++
		}
	}
	assert.Equal(t, 5, released)
}
