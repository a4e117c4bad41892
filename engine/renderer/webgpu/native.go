package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// wgpu-backed implementations of the gpu* seam. Each type is a thin wrapper;
// all descriptor lowering happens here so the lifecycle engine never touches
// a wgpu type directly.

// surfaceSource is implemented by windows that can describe a native surface.
// *platform.Window provides it via wgpuglfw.
type surfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

type nativeInstance struct {
	instance *wgpu.Instance
}

func newNativeInstance() gpuInstance {
	return &nativeInstance{instance: wgpu.CreateInstance(nil)}
}

func (n *nativeInstance) CreateSurface(win Window) (gpuSurface, error) {
	src, ok := win.(surfaceSource)
	if !ok {
		return nil, fmt.Errorf("window does not expose a surface descriptor")
	}
	s := n.instance.CreateSurface(src.SurfaceDescriptor())
	if s == nil {
		return nil, fmt.Errorf("failed to create surface")
	}
	return &nativeSurface{surface: s}, nil
}

// RequestAdapter dispatches the native request on a separate goroutine and
// delivers the result through the callback, mirroring the callback-driven
// contract of the underlying API.
func (n *nativeInstance) RequestAdapter(opts *AdapterOptions, callback func(gpuAdapter, error)) {
	go func() {
		a, err := n.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference: powerPreferenceToNative(opts.PowerPreference),
		})
		if err != nil {
			callback(nil, err)
			return
		}
		callback(&nativeAdapter{adapter: a}, nil)
	}()
}

func (n *nativeInstance) Release() {
	n.instance.Release()
}

type nativeAdapter struct {
	adapter *wgpu.Adapter
}

func (n *nativeAdapter) RequestDevice(opts *DeviceOptions, callback func(gpuDevice, error)) {
	go func() {
		features := make([]wgpu.FeatureName, 0, len(opts.RequiredFeatures))
		for _, f := range opts.RequiredFeatures {
			features = append(features, featureToNative(f))
		}
		d, err := n.adapter.RequestDevice(&wgpu.DeviceDescriptor{
			Label:            opts.Label,
			RequiredFeatures: features,
		})
		if err != nil {
			callback(nil, err)
			return
		}
		callback(&nativeDevice{device: d}, nil)
	}()
}

func (n *nativeAdapter) Release() {
	n.adapter.Release()
}

type nativeDevice struct {
	device *wgpu.Device
}

func (n *nativeDevice) CreateBuffer(desc *BufferDescriptor) (gpuBuffer, error) {
	b, err := n.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: bufferUsageToNative(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	return &nativeBuffer{buffer: b, size: desc.Size}, nil
}

func (n *nativeDevice) CreateTexture(desc *TextureDescriptor) (gpuTexture, error) {
	t, err := n.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.LayerCount,
		},
		MipLevelCount: desc.MipLevels,
		SampleCount:   desc.SampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        textureFormatToNative(desc.Format),
		Usage:         textureUsageToNative(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	return &nativeTexture{texture: t}, nil
}

func (n *nativeDevice) CreateCommandEncoder(label string) (gpuCommandEncoder, error) {
	e, err := n.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &nativeCommandEncoder{encoder: e}, nil
}

func (n *nativeDevice) Queue() gpuQueue {
	return &nativeQueue{queue: n.device.GetQueue()}
}

func (n *nativeDevice) Release() {
	n.device.Release()
}

type nativeQueue struct {
	queue *wgpu.Queue
}

func (n *nativeQueue) Submit(commands gpuCommandBuffer) {
	n.queue.Submit(commands.(*nativeCommandBuffer).buffer)
}

type nativeSurface struct {
	surface *wgpu.Surface
}

func (n *nativeSurface) PreferredFormat(adapter gpuAdapter) metadata.TextureFormat {
	na, ok := adapter.(*nativeAdapter)
	if !ok {
		return metadata.TextureFormatBGRA8Unorm
	}
	caps := n.surface.GetCapabilities(na.adapter)
	if len(caps.Formats) == 0 {
		// No capability information; fall back to the format every backend
		// is required to support.
		return metadata.TextureFormatBGRA8Unorm
	}
	return textureFormatFromNative(caps.Formats[0])
}

func (n *nativeSurface) Configure(adapter gpuAdapter, device gpuDevice, cfg *SurfaceConfiguration) error {
	na := adapter.(*nativeAdapter)
	nd := device.(*nativeDevice)
	caps := n.surface.GetCapabilities(na.adapter)
	alphaMode := wgpu.CompositeAlphaModeOpaque
	if len(caps.AlphaModes) > 0 {
		alphaMode = caps.AlphaModes[0]
	}
	n.surface.Configure(na.adapter, nd.device, &wgpu.SurfaceConfiguration{
		Usage:       textureUsageToNative(cfg.Usage),
		Format:      textureFormatToNative(cfg.Format),
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: presentModeToNative(cfg.PresentMode),
		AlphaMode:   alphaMode,
	})
	return nil
}

func (n *nativeSurface) Unconfigure() {
	// wgpu v0.23.0 exposes no Surface.Unconfigure; the configuration is
	// freed when the surface is released, which the caller does right after.
}

func (n *nativeSurface) AcquireTexture() (gpuTexture, error) {
	t, err := n.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	return &nativeTexture{texture: t}, nil
}

func (n *nativeSurface) Present() {
	n.surface.Present()
}

func (n *nativeSurface) Release() {
	n.surface.Release()
}

type nativeTexture struct {
	texture *wgpu.Texture
}

func (n *nativeTexture) CreateView(desc *TextureViewDescriptor) (gpuTextureView, error) {
	var nd *wgpu.TextureViewDescriptor
	if desc != nil {
		nd = &wgpu.TextureViewDescriptor{
			Label:           desc.Label,
			BaseArrayLayer:  desc.BaseArrayLayer,
			ArrayLayerCount: 1,
			BaseMipLevel:    desc.BaseMipLevel,
			MipLevelCount:   1,
			Dimension:       wgpu.TextureViewDimension2D,
		}
	}
	v, err := n.texture.CreateView(nd)
	if err != nil {
		return nil, err
	}
	return &nativeTextureView{view: v}, nil
}

func (n *nativeTexture) Release() {
	n.texture.Release()
}

type nativeTextureView struct {
	view *wgpu.TextureView
}

func (n *nativeTextureView) Release() {
	n.view.Release()
}

type nativeBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

func (n *nativeBuffer) Size() uint64 {
	return n.size
}

func (n *nativeBuffer) Release() {
	n.buffer.Release()
}

type nativeCommandEncoder struct {
	encoder *wgpu.CommandEncoder
}

func (n *nativeCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) (gpuRenderPass, error) {
	colors := make([]wgpu.RenderPassColorAttachment, 0, len(desc.ColorAttachments))
	for _, ca := range desc.ColorAttachments {
		attachment := wgpu.RenderPassColorAttachment{
			View:    ca.View.(*nativeTextureView).view,
			LoadOp:  loadOpToNative(ca.LoadOp),
			StoreOp: storeOpToNative(ca.StoreOp),
			ClearValue: wgpu.Color{
				R: ca.ClearColor.R,
				G: ca.ClearColor.G,
				B: ca.ClearColor.B,
				A: ca.ClearColor.A,
			},
		}
		if ca.ResolveTarget != nil {
			attachment.ResolveTarget = ca.ResolveTarget.(*nativeTextureView).view
		}
		colors = append(colors, attachment)
	}

	nd := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: colors,
	}
	if ds := desc.DepthStencilAttachment; ds != nil {
		nd.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:              ds.View.(*nativeTextureView).view,
			DepthLoadOp:       loadOpToNative(ds.DepthLoadOp),
			DepthStoreOp:      storeOpToNative(ds.DepthStoreOp),
			DepthClearValue:   ds.DepthClearValue,
			StencilLoadOp:     loadOpToNative(ds.StencilLoadOp),
			StencilStoreOp:    storeOpToNative(ds.StencilStoreOp),
			StencilClearValue: ds.StencilClearValue,
		}
	}

	pass := n.encoder.BeginRenderPass(nd)
	if pass == nil {
		return nil, fmt.Errorf("failed to begin render pass")
	}
	return &nativeRenderPass{pass: pass}, nil
}

func (n *nativeCommandEncoder) Finish(label string) (gpuCommandBuffer, error) {
	cb, err := n.encoder.Finish(&wgpu.CommandBufferDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &nativeCommandBuffer{buffer: cb}, nil
}

func (n *nativeCommandEncoder) Release() {
	n.encoder.Release()
}

type nativeRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (n *nativeRenderPass) End() {
	n.pass.End()
}

func (n *nativeRenderPass) Release() {
	n.pass.Release()
}

type nativeCommandBuffer struct {
	buffer *wgpu.CommandBuffer
}

func (n *nativeCommandBuffer) Release() {
	n.buffer.Release()
}
