package webgpu

import (
	"github.com/prism-engine/prism/engine/containers"
	"github.com/prism-engine/prism/engine/core"
)

// refCounted is the drain contract shared by physical buffers and textures:
// dropping the last reference performs the deferred native release when the
// resource was marked for destroy.
type refCounted interface {
	retain()
	releaseRef()
}

// Context is the per-logical-device state of the driver. Created once at
// driver initialization, it lives until device destruction and transitively
// owns every swapchain and resource container claimed under it.
type Context struct {
	Instance gpuInstance
	Adapter  gpuAdapter
	Device   gpuDevice
	Queue    gpuQueue

	// FrameNumber counts command buffer acquisitions. Used as the epoch for
	// draining in-flight resource references.
	FrameNumber uint64

	pending *containers.RingQueue[pendingRelease]
}

// pendingRelease ties a retained physical resource to the frame that used it.
type pendingRelease struct {
	frame    uint64
	resource refCounted
}

func NewContext(instance gpuInstance) *Context {
	return &Context{
		Instance: instance,
		pending:  containers.NewRingQueue[pendingRelease](pendingQueueSize),
	}
}

// retainUntilDrained records that the given resources are referenced by the
// frame currently being recorded. Their references drop once the frame is
// MaxFramesInFlight acquisitions old.
func (ctx *Context) retainUntilDrained(frame uint64, resources []refCounted) {
	for _, r := range resources {
		if err := ctx.pending.Enqueue(pendingRelease{frame: frame, resource: r}); err != nil {
			// Queue overflow means the application retains far more resources
			// per frame than the driver budgets for. Release eagerly rather
			// than leak; worst case is a stall, not a hazard.
			core.LogWarn("in-flight retention queue full, releasing resource reference eagerly")
			r.releaseRef()
		}
	}
}

// drainCompleted releases references held by frames old enough that the GPU
// can no longer be reading them.
func (ctx *Context) drainCompleted() {
	for !ctx.pending.IsEmpty() {
		entry, err := ctx.pending.Peek()
		if err != nil {
			return
		}
		if ctx.FrameNumber-entry.frame < MaxFramesInFlight {
			return
		}
		if _, err := ctx.pending.Dequeue(); err != nil {
			return
		}
		entry.resource.releaseRef()
	}
}
