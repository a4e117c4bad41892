package webgpu

import (
	"fmt"
	"sync/atomic"

	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/math"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// renderTarget is the InternalData carried by swapchain-provided textures. It
// lets the render pass encoder tell a presentable target apart from an
// application-owned container.
type renderTarget struct {
	view    gpuTextureView
	resolve gpuTextureView
}

// Swapchain owns one window's presentation state: the native surface, its
// configuration, and the depth and multisample targets sized to match it.
// Recreation is lazy; resize and present-mode changes only raise a flag that
// the next texture acquisition consumes.
type Swapchain struct {
	ctx    *Context
	window Window

	surface     gpuSurface
	format      metadata.TextureFormat
	presentMode metadata.PresentMode
	sampleCount uint32
	width       uint32
	height      uint32

	depthTexture gpuTexture
	depthView    gpuTextureView
	msaaTexture  gpuTexture
	msaaView     gpuTextureView

	needsRecreate atomic.Bool
	pendingWidth  atomic.Uint32
	pendingHeight atomic.Uint32

	// Per-frame presentable objects, valid between acquire and present.
	frameTexture gpuTexture
	frameView    gpuTextureView
	frameMeta    *metadata.Texture
	depthMeta    *metadata.Texture
}

// SwapchainCreate claims the window's surface and builds the initial
// presentation resources at the window's current pixel size.
func SwapchainCreate(ctx *Context, window Window, presentMode metadata.PresentMode, sampleCount uint32) (*Swapchain, error) {
	if sampleCount == 0 {
		sampleCount = 1
	}
	sc := &Swapchain{
		ctx:         ctx,
		window:      window,
		presentMode: presentMode,
		sampleCount: sampleCount,
	}
	w, h := window.PixelSize()
	if err := sc.createResources(w, h); err != nil {
		return nil, err
	}
	core.LogInfo("swapchain created %dx%d, format %d, samples %d", sc.width, sc.height, sc.format, sc.sampleCount)
	return sc, nil
}

// createResources builds, in order: surface, surface configuration, depth
// texture, depth view, multisample texture, multisample view. Teardown must
// run in the exact reverse order.
func (sc *Swapchain) createResources(width, height uint32) error {
	surface, err := sc.ctx.Instance.CreateSurface(sc.window)
	if err != nil {
		e := fmt.Errorf("swapchain surface creation failed: %w", err)
		core.LogError(e.Error())
		return e
	}
	sc.surface = surface
	sc.format = surface.PreferredFormat(sc.ctx.Adapter)

	// Zero extents happen while a window is minimized.
	sc.width = math.Clamp(width, 1, 1<<14)
	sc.height = math.Clamp(height, 1, 1<<14)

	if err := surface.Configure(sc.ctx.Adapter, sc.ctx.Device, &SurfaceConfiguration{
		Width:       sc.width,
		Height:      sc.height,
		Format:      sc.format,
		Usage:       metadata.TextureUsageRenderAttachment,
		PresentMode: sc.presentMode,
	}); err != nil {
		surface.Release()
		sc.surface = nil
		e := fmt.Errorf("surface configuration failed: %w", err)
		core.LogError(e.Error())
		return e
	}

	depth, err := sc.ctx.Device.CreateTexture(&TextureDescriptor{
		Label:       "swapchain-depth",
		Width:       sc.width,
		Height:      sc.height,
		LayerCount:  1,
		MipLevels:   1,
		SampleCount: sc.sampleCount,
		Format:      metadata.TextureFormatDepth24PlusStencil8,
		Usage:       metadata.TextureUsageDepthStencilAttachment,
	})
	if err != nil {
		sc.teardownResources()
		e := fmt.Errorf("depth texture creation failed: %w", err)
		core.LogError(e.Error())
		return e
	}
	sc.depthTexture = depth

	depthView, err := depth.CreateView(&TextureViewDescriptor{Label: "swapchain-depth-view"})
	if err != nil {
		sc.teardownResources()
		e := fmt.Errorf("depth view creation failed: %w", err)
		core.LogError(e.Error())
		return e
	}
	sc.depthView = depthView

	if sc.sampleCount > 1 {
		msaa, err := sc.ctx.Device.CreateTexture(&TextureDescriptor{
			Label:       "swapchain-msaa",
			Width:       sc.width,
			Height:      sc.height,
			LayerCount:  1,
			MipLevels:   1,
			SampleCount: sc.sampleCount,
			Format:      sc.format,
			Usage:       metadata.TextureUsageRenderAttachment,
		})
		if err != nil {
			sc.teardownResources()
			e := fmt.Errorf("multisample texture creation failed: %w", err)
			core.LogError(e.Error())
			return e
		}
		sc.msaaTexture = msaa

		msaaView, err := msaa.CreateView(&TextureViewDescriptor{Label: "swapchain-msaa-view"})
		if err != nil {
			sc.teardownResources()
			e := fmt.Errorf("multisample view creation failed: %w", err)
			core.LogError(e.Error())
			return e
		}
		sc.msaaView = msaaView
	}

	sc.depthMeta = &metadata.Texture{
		ID:           core.IdentifierNew(),
		Width:        sc.width,
		Height:       sc.height,
		LayerCount:   1,
		MipLevels:    1,
		Format:       metadata.TextureFormatDepth24PlusStencil8,
		Usage:        metadata.TextureUsageDepthStencilAttachment,
		SampleCount:  sc.sampleCount,
		Name:         "swapchain-depth",
		InternalData: &renderTarget{view: sc.depthView},
	}

	return nil
}

// teardownResources destroys what createResources built, strictly reversed:
// multisample view, multisample texture, depth view, depth texture, surface
// configuration, surface.
func (sc *Swapchain) teardownResources() {
	if sc.msaaView != nil {
		sc.msaaView.Release()
		sc.msaaView = nil
	}
	if sc.msaaTexture != nil {
		sc.msaaTexture.Release()
		sc.msaaTexture = nil
	}
	if sc.depthView != nil {
		sc.depthView.Release()
		sc.depthView = nil
	}
	if sc.depthTexture != nil {
		sc.depthTexture.Release()
		sc.depthTexture = nil
	}
	if sc.surface != nil {
		sc.surface.Unconfigure()
		sc.surface.Release()
		sc.surface = nil
	}
	sc.depthMeta = nil
}

// Destroy tears the swapchain down immediately. Any in-flight frame using its
// targets must have drained; the driver enforces that by destroying windows
// only between frames.
func (sc *Swapchain) Destroy() {
	sc.teardownResources()
	core.LogDebug("swapchain destroyed")
}

// RequestRecreate flags the swapchain for recreation at the next acquire.
// Safe to call from window system callbacks.
func (sc *Swapchain) RequestRecreate(width, height uint32) {
	sc.pendingWidth.Store(width)
	sc.pendingHeight.Store(height)
	sc.needsRecreate.Store(true)
}

// SetPresentMode switches the presentation mode and schedules a recreate.
func (sc *Swapchain) SetPresentMode(mode metadata.PresentMode) {
	if sc.presentMode == mode {
		return
	}
	sc.presentMode = mode
	sc.RequestRecreate(sc.window.PixelSize())
}

// recreate performs the full teardown and rebuild, including the surface
// itself. Surface loss is the one case where reconfiguring in place is not
// enough.
func (sc *Swapchain) recreate(width, height uint32) error {
	core.LogDebug("recreating swapchain at %dx%d", width, height)
	sc.teardownResources()
	return sc.createResources(width, height)
}

// AcquireTexture returns the presentable color target for the frame. When the
// recreate flag is raised, exactly one recreation runs first, regardless of
// how many resize or mode-change events were coalesced into the flag. With
// multisampling the returned target is the multisample texture and the
// surface view rides along as the resolve target.
func (sc *Swapchain) AcquireTexture() (*metadata.Texture, error) {
	if sc.needsRecreate.Swap(false) {
		w, h := sc.pendingWidth.Load(), sc.pendingHeight.Load()
		if w == 0 || h == 0 {
			w, h = sc.window.PixelSize()
		}
		if err := sc.recreate(w, h); err != nil {
			// A failed recreate leaves the resources torn down. Re-raise the
			// flag so the next acquire retries instead of touching them.
			sc.RequestRecreate(w, h)
			return nil, err
		}
	}
	if sc.surface == nil {
		return nil, core.ErrSurfaceLost
	}

	tex, err := sc.surface.AcquireTexture()
	if err != nil {
		// Surface loss is recoverable: flag a recreate and let the caller
		// skip the frame.
		core.LogWarn("surface texture acquisition failed: %s", err.Error())
		sc.RequestRecreate(sc.window.PixelSize())
		return nil, core.ErrSurfaceLost
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		e := fmt.Errorf("surface view creation failed: %w", err)
		core.LogError(e.Error())
		return nil, e
	}
	sc.frameTexture = tex
	sc.frameView = view

	target := &renderTarget{view: view}
	if sc.sampleCount > 1 {
		target = &renderTarget{view: sc.msaaView, resolve: view}
	}
	sc.frameMeta = &metadata.Texture{
		ID:           core.IdentifierNew(),
		Width:        sc.width,
		Height:       sc.height,
		LayerCount:   1,
		MipLevels:    1,
		Format:       sc.format,
		Usage:        metadata.TextureUsageRenderAttachment,
		SampleCount:  sc.sampleCount,
		Name:         "swapchain-color",
		InternalData: target,
	}
	return sc.frameMeta, nil
}

// DepthTexture returns the depth-stencil target matching the current extent.
func (sc *Swapchain) DepthTexture() *metadata.Texture {
	return sc.depthMeta
}

// Size returns the current configured extent.
func (sc *Swapchain) Size() (uint32, uint32) {
	return sc.width, sc.height
}

// Present hands the acquired texture to the presentation engine and drops the
// per-frame view and texture.
func (sc *Swapchain) Present() {
	if sc.frameTexture == nil {
		return
	}
	sc.surface.Present()
	sc.frameView.Release()
	sc.frameTexture.Release()
	sc.frameView = nil
	sc.frameTexture = nil
	sc.frameMeta = nil
}
