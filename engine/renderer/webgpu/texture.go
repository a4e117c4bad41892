package webgpu

import (
	"fmt"
	"sync/atomic"

	"github.com/prism-engine/prism/engine/containers"
	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// TextureSubresource is one (layer, mip) slice of a physical texture. Views
// are created lazily and cached for the lifetime of the backing. The
// transitioned flag marks whether a layout transition has already been
// issued during the current recording session, so redundant transitions
// within one pass are skipped.
type TextureSubresource struct {
	parent *PhysicalTexture
	layer  uint32
	mip    uint32

	renderTargetView gpuTextureView
	computeWriteView gpuTextureView
	depthStencilView gpuTextureView

	transitioned bool
}

func (sr *TextureSubresource) Layer() uint32 { return sr.layer }
func (sr *TextureSubresource) Mip() uint32   { return sr.mip }

// Transitioned reports whether the subresource has already been transitioned
// during this recording session.
func (sr *TextureSubresource) Transitioned() bool {
	return sr.transitioned
}

// MarkTransitioned records that the required transition has been issued.
func (sr *TextureSubresource) MarkTransitioned() {
	sr.transitioned = true
}

// RenderTargetView returns the cached color-target view, creating it on
// first use.
func (sr *TextureSubresource) RenderTargetView() (gpuTextureView, error) {
	if sr.renderTargetView != nil {
		return sr.renderTargetView, nil
	}
	v, err := sr.parent.texture.CreateView(&TextureViewDescriptor{
		Label:          fmt.Sprintf("%s-rt-l%d-m%d", sr.parent.label, sr.layer, sr.mip),
		BaseArrayLayer: sr.layer,
		BaseMipLevel:   sr.mip,
	})
	if err != nil {
		return nil, err
	}
	sr.renderTargetView = v
	return v, nil
}

// ComputeWriteView returns the cached storage-write view, creating it on
// first use.
func (sr *TextureSubresource) ComputeWriteView() (gpuTextureView, error) {
	if sr.computeWriteView != nil {
		return sr.computeWriteView, nil
	}
	v, err := sr.parent.texture.CreateView(&TextureViewDescriptor{
		Label:          fmt.Sprintf("%s-cw-l%d-m%d", sr.parent.label, sr.layer, sr.mip),
		BaseArrayLayer: sr.layer,
		BaseMipLevel:   sr.mip,
	})
	if err != nil {
		return nil, err
	}
	sr.computeWriteView = v
	return v, nil
}

// DepthStencilView returns the cached depth-stencil view, creating it on
// first use.
func (sr *TextureSubresource) DepthStencilView() (gpuTextureView, error) {
	if sr.depthStencilView != nil {
		return sr.depthStencilView, nil
	}
	v, err := sr.parent.texture.CreateView(&TextureViewDescriptor{
		Label:          fmt.Sprintf("%s-ds-l%d-m%d", sr.parent.label, sr.layer, sr.mip),
		BaseArrayLayer: sr.layer,
		BaseMipLevel:   sr.mip,
	})
	if err != nil {
		return nil, err
	}
	sr.depthStencilView = v
	return v, nil
}

func (sr *TextureSubresource) releaseViews() {
	if sr.renderTargetView != nil {
		sr.renderTargetView.Release()
		sr.renderTargetView = nil
	}
	if sr.computeWriteView != nil {
		sr.computeWriteView.Release()
		sr.computeWriteView = nil
	}
	if sr.depthStencilView != nil {
		sr.depthStencilView.Release()
		sr.depthStencilView = nil
	}
}

// PhysicalTexture is an actual GPU-visible texture allocation with one
// subresource per (layer, mip) pair.
type PhysicalTexture struct {
	texture gpuTexture
	desc    TextureDescriptor
	label   string

	subresources []*TextureSubresource

	refCount         atomic.Int32
	markedForDestroy atomic.Bool
}

// Subresource returns the (layer, mip) slice, or nil when out of range.
func (pt *PhysicalTexture) Subresource(layer, mip uint32) *TextureSubresource {
	if layer >= pt.desc.LayerCount || mip >= pt.desc.MipLevels {
		return nil
	}
	return pt.subresources[layer*pt.desc.MipLevels+mip]
}

// resetTransitions clears every subresource's transitioned flag. Called once
// per recording session.
func (pt *PhysicalTexture) resetTransitions() {
	for _, sr := range pt.subresources {
		sr.transitioned = false
	}
}

func (pt *PhysicalTexture) retain() {
	pt.refCount.Add(1)
}

func (pt *PhysicalTexture) releaseRef() {
	if pt.refCount.Add(-1) == 0 && pt.markedForDestroy.Load() {
		// Views must go before the texture they view.
		for _, sr := range pt.subresources {
			sr.releaseViews()
		}
		pt.texture.Release()
		core.LogDebug("physical texture '%s' released", pt.label)
	}
}

// TextureHandle is a thin indirection from a logical texture to one of its
// physical backings.
type TextureHandle struct {
	backing   *PhysicalTexture
	container *TextureContainer
}

func (h *TextureHandle) Backing() *PhysicalTexture {
	return h.backing
}

// TextureContainer is a logical texture identity with the same cycling
// semantics as BufferContainer.
type TextureContainer struct {
	device  gpuDevice
	handles *containers.Array[*TextureHandle]
	active  *TextureHandle

	desc  TextureDescriptor
	label string
	cycle int
}

func NewTextureContainer(device gpuDevice, desc TextureDescriptor) (*TextureContainer, error) {
	if desc.Label == "" {
		desc.Label = core.IdentifierLabel("texture")
	}
	if desc.LayerCount == 0 {
		desc.LayerCount = 1
	}
	if desc.MipLevels == 0 {
		desc.MipLevels = 1
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}
	c := &TextureContainer{
		device:  device,
		handles: containers.NewArray[*TextureHandle](containers.DefaultArrayCapacity),
		desc:    desc,
		label:   desc.Label,
	}
	h, err := c.allocateHandle()
	if err != nil {
		return nil, err
	}
	c.active = h
	return c, nil
}

// AcquireWritable returns a handle safe to write for the current frame,
// reusing an idle backing or allocating a fresh one.
func (c *TextureContainer) AcquireWritable() (*TextureHandle, error) {
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
		core.LogError("texture '%s': cycle allocation failed: %s", c.label, err.Error())
		return nil, core.ErrOutOfMemory
	}
	c.active = h
	return h, nil
}

func (c *TextureContainer) ActiveHandle() *TextureHandle {
	return c.active
}

func (c *TextureContainer) HandleCount() int {
	return c.handles.Len()
}

// MarkForDestroy flags every backing; native release is deferred until each
// backing's reference count drains.
func (c *TextureContainer) MarkForDestroy() {
	for i := 0; i < c.handles.Len(); i++ {
		backing := c.handles.Get(i).backing
		if backing.markedForDestroy.Swap(true) {
			continue
		}
		backing.releaseRef()
	}
	c.active = nil
}

// resetTransitions clears the transitioned flags on all backings at the
// start of a recording session.
func (c *TextureContainer) resetTransitions() {
	for i := 0; i < c.handles.Len(); i++ {
		c.handles.Get(i).backing.resetTransitions()
	}
}

func (c *TextureContainer) allocateHandle() (*TextureHandle, error) {
	desc := c.desc
	if c.cycle > 0 {
		desc.Label = fmt.Sprintf("%s-cycle-%d", c.label, c.cycle)
	}
	texture, err := c.device.CreateTexture(&desc)
	if err != nil {
		return nil, err
	}
	backing := &PhysicalTexture{
		texture: texture,
		desc:    desc,
		label:   desc.Label,
	}
	backing.subresources = make([]*TextureSubresource, 0, desc.LayerCount*desc.MipLevels)
	for layer := uint32(0); layer < desc.LayerCount; layer++ {
		for mip := uint32(0); mip < desc.MipLevels; mip++ {
			backing.subresources = append(backing.subresources, &TextureSubresource{
				parent: backing,
				layer:  layer,
				mip:    mip,
			})
		}
	}
	backing.refCount.Store(baselineRefCount)
	h := &TextureHandle{backing: backing, container: c}
	c.handles.Push(h)
	c.cycle++
	return h, nil
}

// MetadataTexture builds the frontend-visible description of the container.
func (c *TextureContainer) MetadataTexture() *metadata.Texture {
	return &metadata.Texture{
		ID:           core.IdentifierNew(),
		Width:        c.desc.Width,
		Height:       c.desc.Height,
		LayerCount:   c.desc.LayerCount,
		MipLevels:    c.desc.MipLevels,
		Format:       c.desc.Format,
		Usage:        c.desc.Usage,
		SampleCount:  c.desc.SampleCount,
		Name:         c.label,
		InternalData: c,
	}
}
