package webgpu

import (
	"fmt"
	"time"

	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// Options configure driver bootstrap and per-window presentation defaults.
type Options struct {
	PresentMode     metadata.PresentMode
	SampleCount     uint32
	PowerPreference PowerPreference
	DeviceTimeout   time.Duration
}

// Renderer is the WebGPU driver. It owns the device context, one swapchain
// per claimed window, and every resource container created through it.
type Renderer struct {
	ctx  *Context
	opts Options

	windows map[Window]*Swapchain

	bufferContainers  []*BufferContainer
	textureContainers []*TextureContainer

	// current is the command buffer being recorded this frame, nil between
	// frames.
	current *CommandBuffer
}

// New builds the driver against the real native API. Initialize must be
// called before any other method.
func New(opts Options) *Renderer {
	return newRenderer(newNativeInstance(), opts)
}

func newRenderer(instance gpuInstance, opts Options) *Renderer {
	if opts.SampleCount == 0 {
		opts.SampleCount = 1
	}
	if opts.DeviceTimeout == 0 {
		opts.DeviceTimeout = 5 * time.Second
	}
	return &Renderer{
		ctx:     NewContext(instance),
		opts:    opts,
		windows: make(map[Window]*Swapchain),
	}
}

// Initialize runs device bootstrap. On failure the device stays nil and every
// other entry point reports core.ErrDeviceNotReady instead of crashing.
func (r *Renderer) Initialize() error {
	core.LogInfo("WebGPU driver initializing...")
	err := DeviceCreate(r.ctx, &DeviceOptions{
		Label:            "prism-device",
		PowerPreference:  r.opts.PowerPreference,
		RequiredFeatures: []FeatureName{FeatureDepth32FloatStencil8},
	}, r.opts.DeviceTimeout)
	if err != nil {
		core.LogError("WebGPU driver initialization failed: %s", err.Error())
		return err
	}
	return nil
}

// Shutdown tears down every claimed window, flags all containers for
// destruction, drains the retention queue, and releases the device.
func (r *Renderer) Shutdown() {
	for win, sc := range r.windows {
		sc.Destroy()
		win.DeleteProperty(swapchainProperty)
		delete(r.windows, win)
	}
	for _, c := range r.textureContainers {
		c.MarkForDestroy()
	}
	for _, c := range r.bufferContainers {
		c.MarkForDestroy()
	}
	r.textureContainers = nil
	r.bufferContainers = nil

	// Force the retention queue empty; nothing is in flight past shutdown.
	r.ctx.FrameNumber += MaxFramesInFlight
	r.ctx.drainCompleted()

	DeviceDestroy(r.ctx)
	if r.ctx.Instance != nil {
		r.ctx.Instance.Release()
		r.ctx.Instance = nil
	}
	core.LogInfo("WebGPU driver shut down.")
}

func (r *Renderer) deviceReady() error {
	if r.ctx.Device == nil {
		return core.ErrDeviceNotReady
	}
	return nil
}

// ClaimWindow creates presentation state for the window and stores it under
// the window's driver property.
func (r *Renderer) ClaimWindow(win Window) error {
	if err := r.deviceReady(); err != nil {
		core.LogError("claim window: %s", err.Error())
		return err
	}
	if _, ok := r.windows[win]; ok {
		err := fmt.Errorf("window already claimed")
		core.LogError(err.Error())
		return err
	}
	sc, err := SwapchainCreate(r.ctx, win, r.opts.PresentMode, r.opts.SampleCount)
	if err != nil {
		return err
	}
	r.windows[win] = sc
	win.SetProperty(swapchainProperty, sc)
	return nil
}

// ReleaseWindow destroys the window's presentation state.
func (r *Renderer) ReleaseWindow(win Window) {
	sc, ok := r.windows[win]
	if !ok {
		return
	}
	sc.Destroy()
	win.DeleteProperty(swapchainProperty)
	delete(r.windows, win)
}

// Resized flags the window's swapchain for lazy recreation. Safe to call
// from window system callbacks; no GPU work happens here.
func (r *Renderer) Resized(win Window, width, height uint32) {
	if sc, ok := r.windows[win]; ok {
		sc.RequestRecreate(width, height)
	}
}

// SetPresentMode switches every claimed window's presentation mode.
func (r *Renderer) SetPresentMode(mode metadata.PresentMode) {
	r.opts.PresentMode = mode
	for _, sc := range r.windows {
		sc.SetPresentMode(mode)
	}
}

// AcquireCommandBuffer opens a new frame: advances the frame counter, drains
// resource references old enough to be safe, resets per-recording texture
// state, and returns a fresh command buffer.
func (r *Renderer) AcquireCommandBuffer() (*metadata.CommandBuffer, error) {
	if err := r.deviceReady(); err != nil {
		core.LogError("acquire command buffer: %s", err.Error())
		return nil, err
	}
	if r.current != nil {
		core.LogWarn("previous frame's command buffer was never submitted, dropping it")
	}
	r.ctx.FrameNumber++
	r.ctx.drainCompleted()

	for _, c := range r.textureContainers {
		c.resetTransitions()
	}

	cb, err := NewCommandBuffer(r.ctx, "")
	if err != nil {
		return nil, err
	}
	r.current = cb
	return &metadata.CommandBuffer{
		State:        cb.State(),
		InternalData: cb,
	}, nil
}

// AcquireSwapchainTexture returns the window's presentable color target and
// its extent. A nil texture with a nil error never happens; on failure the
// caller should skip the frame and try again next frame.
func (r *Renderer) AcquireSwapchainTexture(win Window) (*metadata.Texture, uint32, uint32, error) {
	if err := r.deviceReady(); err != nil {
		core.LogError("acquire swapchain texture: %s", err.Error())
		return nil, 0, 0, err
	}
	sc, ok := r.windows[win]
	if !ok {
		err := fmt.Errorf("window not claimed")
		core.LogError(err.Error())
		return nil, 0, 0, err
	}
	tex, err := sc.AcquireTexture()
	if err != nil {
		return nil, 0, 0, err
	}
	if r.current != nil {
		r.current.addPresentTarget(sc)
	}
	w, h := sc.Size()
	return tex, w, h, nil
}

// WindowDepthTexture returns the depth-stencil target sized to the window's
// swapchain.
func (r *Renderer) WindowDepthTexture(win Window) *metadata.Texture {
	if sc, ok := r.windows[win]; ok {
		return sc.DepthTexture()
	}
	return nil
}

func unwrapCommandBuffer(cb *metadata.CommandBuffer) (*CommandBuffer, error) {
	internal, ok := cb.InternalData.(*CommandBuffer)
	if !ok {
		return nil, fmt.Errorf("command buffer has no driver data")
	}
	return internal, nil
}

// BeginRenderPass opens a pass on the command buffer over the given
// attachments. Depth and stencil load/store behavior is controlled
// independently through the attachment config.
func (r *Renderer) BeginRenderPass(cb *metadata.CommandBuffer, colors []metadata.RenderPassColorAttachmentConfig, depthStencil *metadata.RenderPassDepthStencilAttachmentConfig) error {
	internal, err := unwrapCommandBuffer(cb)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := internal.BeginRenderPass(colors, depthStencil); err != nil {
		return err
	}
	cb.State = internal.State()
	return nil
}

// EndRenderPass closes the open pass.
func (r *Renderer) EndRenderPass(cb *metadata.CommandBuffer) error {
	internal, err := unwrapCommandBuffer(cb)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := internal.EndRenderPass(); err != nil {
		return err
	}
	cb.State = internal.State()
	return nil
}

// Submit finishes and submits the frame's commands, then presents every
// swapchain rendered to.
func (r *Renderer) Submit(cb *metadata.CommandBuffer) error {
	internal, err := unwrapCommandBuffer(cb)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := internal.Submit(); err != nil {
		return err
	}
	cb.State = internal.State()
	if r.current == internal {
		r.current = nil
	}
	return nil
}

// BufferCreate allocates a logical buffer with one physical backing.
func (r *Renderer) BufferCreate(size uint64, usage metadata.BufferUsage, name string) (*metadata.Buffer, error) {
	if err := r.deviceReady(); err != nil {
		core.LogError("buffer create: %s", err.Error())
		return nil, err
	}
	c, err := NewBufferContainer(r.ctx.Device, size, usage, name)
	if err != nil {
		return nil, err
	}
	r.bufferContainers = append(r.bufferContainers, c)
	return &metadata.Buffer{
		ID:           core.IdentifierNew(),
		TotalSize:    size,
		Usage:        usage,
		Name:         c.label,
		InternalData: c,
	}, nil
}

// BufferAcquireWritable cycles the buffer to a backing safe to write this
// frame.
func (r *Renderer) BufferAcquireWritable(b *metadata.Buffer) error {
	c, ok := b.InternalData.(*BufferContainer)
	if !ok {
		err := fmt.Errorf("buffer '%s' has no driver data", b.Name)
		core.LogError(err.Error())
		return err
	}
	_, err := c.AcquireWritable()
	return err
}

// BufferMarkForDestroy schedules every backing of the buffer for deferred
// destruction.
func (r *Renderer) BufferMarkForDestroy(b *metadata.Buffer) {
	if c, ok := b.InternalData.(*BufferContainer); ok {
		c.MarkForDestroy()
	}
	b.InternalData = nil
}

// TextureCreate allocates a logical texture with one physical backing.
func (r *Renderer) TextureCreate(desc TextureDescriptor) (*metadata.Texture, error) {
	if err := r.deviceReady(); err != nil {
		core.LogError("texture create: %s", err.Error())
		return nil, err
	}
	c, err := NewTextureContainer(r.ctx.Device, desc)
	if err != nil {
		return nil, err
	}
	r.textureContainers = append(r.textureContainers, c)
	return c.MetadataTexture(), nil
}

// TextureAcquireWritable cycles the texture to a backing safe to write this
// frame.
func (r *Renderer) TextureAcquireWritable(t *metadata.Texture) error {
	c, ok := t.InternalData.(*TextureContainer)
	if !ok {
		err := fmt.Errorf("texture '%s' has no driver data", t.Name)
		core.LogError(err.Error())
		return err
	}
	_, err := c.AcquireWritable()
	return err
}

// TextureMarkForDestroy schedules every backing of the texture for deferred
// destruction.
func (r *Renderer) TextureMarkForDestroy(t *metadata.Texture) {
	if c, ok := t.InternalData.(*TextureContainer); ok {
		c.MarkForDestroy()
	}
	t.InternalData = nil
}

// DriverInfo reports the backend identity to the abstract GPU layer.
func (r *Renderer) DriverInfo() metadata.DriverInfo {
	return metadata.DriverInfo{
		Name:         DriverName,
		ShaderFormat: ShaderFormat,
	}
}
