package webgpu

import (
	"fmt"
	"sync/atomic"

	"github.com/prism-engine/prism/engine/containers"
	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// PhysicalBuffer is an actual GPU-visible allocation. Handles across
// in-flight frames may reference one backing while it drains; destruction is
// deferred until the reference count reaches zero.
type PhysicalBuffer struct {
	buffer gpuBuffer
	size   uint64
	usage  metadata.BufferUsage
	label  string

	refCount         atomic.Int32
	markedForDestroy atomic.Bool
}

func (pb *PhysicalBuffer) retain() {
	pb.refCount.Add(1)
}

func (pb *PhysicalBuffer) releaseRef() {
	if pb.refCount.Add(-1) == 0 && pb.markedForDestroy.Load() {
		pb.buffer.Release()
		core.LogDebug("physical buffer '%s' released", pb.label)
	}
}

// BufferHandle is a thin indirection from a logical buffer to one of its
// physical backings. The owning container decides which handle is active.
type BufferHandle struct {
	backing   *PhysicalBuffer
	container *BufferContainer
}

// Backing exposes the physical resource for frame-in-flight tracking.
func (h *BufferHandle) Backing() *PhysicalBuffer {
	return h.backing
}

// BufferContainer is a logical buffer identity holding an ordered, growable
// collection of handles. Exactly one handle is active at a time; the active
// handle always points at backing storage safe to write for the current
// frame.
type BufferContainer struct {
	device  gpuDevice
	handles *containers.Array[*BufferHandle]
	active  *BufferHandle

	size  uint64
	usage metadata.BufferUsage
	label string

	// cycle counts allocated backings, used to suffix debug labels.
	cycle int
}

// NewBufferContainer creates the logical buffer and its first physical
// backing, which starts active.
func NewBufferContainer(device gpuDevice, size uint64, usage metadata.BufferUsage, label string) (*BufferContainer, error) {
	if label == "" {
		label = core.IdentifierLabel("buffer")
	}
	c := &BufferContainer{
		device:  device,
		handles: containers.NewArray[*BufferHandle](containers.DefaultArrayCapacity),
		size:    size,
		usage:   usage,
		label:   label,
	}
	h, err := c.allocateHandle()
	if err != nil {
		return nil, err
	}
	c.active = h
	return c, nil
}

// AcquireWritable returns a handle whose backing is not referenced by any
// still-executing frame. Existing backings are reused when idle; otherwise a
// new physical backing is allocated and appended, never overwriting one in
// use. Returns core.ErrOutOfMemory when allocation fails; the caller should
// treat that as fatal for this call only.
func (c *BufferContainer) AcquireWritable() (*BufferHandle, error) {
	for i := 0; i < c.handles.Len(); i++ {
		h := c.handles.Get(i)
		if h.backing.markedForDestroy.Load() {
			continue
		}
		if h.backing.refCount.Load() == baselineRefCount {
			c.active = h
			return h, nil
		}
	}

	h, err := c.allocateHandle()
	if err != nil {
		core.LogError("buffer '%s': cycle allocation failed: %s", c.label, err.Error())
		return nil, core.ErrOutOfMemory
	}
	c.active = h
	return h, nil
}

// ActiveHandle returns the handle write commands should target.
func (c *BufferContainer) ActiveHandle() *BufferHandle {
	return c.active
}

// HandleCount returns how many physical backings the container has cycled
// through so far.
func (c *BufferContainer) HandleCount() int {
	return c.handles.Len()
}

// MarkForDestroy flags every backing for destruction and drops the
// container's own reference to each. Physical release happens when each
// backing's reference count drains to zero, never synchronously.
func (c *BufferContainer) MarkForDestroy() {
	for i := 0; i < c.handles.Len(); i++ {
		backing := c.handles.Get(i).backing
		if backing.markedForDestroy.Swap(true) {
			continue
		}
		backing.releaseRef()
	}
	c.active = nil
}

func (c *BufferContainer) allocateHandle() (*BufferHandle, error) {
	label := c.label
	if c.cycle > 0 {
		label = fmt.Sprintf("%s-cycle-%d", c.label, c.cycle)
	}
	buffer, err := c.device.CreateBuffer(&BufferDescriptor{
		Label: label,
		Size:  c.size,
		Usage: c.usage,
	})
	if err != nil {
		return nil, err
	}
	backing := &PhysicalBuffer{
		buffer: buffer,
		size:   c.size,
		usage:  c.usage,
		label:  label,
	}
	backing.refCount.Store(baselineRefCount)
	h := &BufferHandle{backing: backing, container: c}
	c.handles.Push(h)
	c.cycle++
	return h, nil
}
