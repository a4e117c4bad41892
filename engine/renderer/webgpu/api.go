package webgpu

import (
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// The gpu* interfaces form the seam between the resource lifecycle engine and
// the native WebGPU objects. They mirror exactly the calls the driver records
// against, nothing more; native.go provides the wgpu-backed implementations
// and the package tests provide instrumented fakes.

// Window is the slice of the windowing collaborator the driver needs: pixel
// dimensions and an opaque per-window property blob. *platform.Window
// satisfies it.
type Window interface {
	PixelSize() (uint32, uint32)
	SetProperty(key string, value interface{})
	Property(key string) interface{}
	DeleteProperty(key string)
}

type PowerPreference int

const (
	PowerPreferenceHighPerformance PowerPreference = iota
	PowerPreferenceLowPower
)

type FeatureName int

const (
	// Combined depth/stencil float format, required at device creation.
	FeatureDepth32FloatStencil8 FeatureName = iota
)

type AdapterOptions struct {
	PowerPreference PowerPreference
}

type DeviceOptions struct {
	Label            string
	PowerPreference  PowerPreference
	RequiredFeatures []FeatureName
}

// Adapter and device negotiation is callback-driven: the native API invokes
// the callback from its own dispatch, never inline with an error only.
type gpuInstance interface {
	CreateSurface(win Window) (gpuSurface, error)
	RequestAdapter(opts *AdapterOptions, callback func(gpuAdapter, error))
	Release()
}

type gpuAdapter interface {
	RequestDevice(opts *DeviceOptions, callback func(gpuDevice, error))
	Release()
}

type gpuDevice interface {
	CreateBuffer(desc *BufferDescriptor) (gpuBuffer, error)
	CreateTexture(desc *TextureDescriptor) (gpuTexture, error)
	CreateCommandEncoder(label string) (gpuCommandEncoder, error)
	Queue() gpuQueue
	Release()
}

type gpuQueue interface {
	Submit(commands gpuCommandBuffer)
}

type gpuSurface interface {
	// PreferredFormat reports the adapter's preferred presentable format, or
	// a fixed fallback when capabilities are unavailable.
	PreferredFormat(adapter gpuAdapter) metadata.TextureFormat
	// Configure builds the swapchain for the surface.
	Configure(adapter gpuAdapter, device gpuDevice, cfg *SurfaceConfiguration) error
	// Unconfigure destroys the swapchain, leaving the surface itself alive.
	Unconfigure()
	// AcquireTexture returns the current presentable texture.
	AcquireTexture() (gpuTexture, error)
	Present()
	Release()
}

type gpuTexture interface {
	CreateView(desc *TextureViewDescriptor) (gpuTextureView, error)
	Release()
}

type gpuTextureView interface {
	Release()
}

type gpuBuffer interface {
	Size() uint64
	Release()
}

type gpuCommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) (gpuRenderPass, error)
	Finish(label string) (gpuCommandBuffer, error)
	Release()
}

type gpuRenderPass interface {
	End()
	Release()
}

type gpuCommandBuffer interface {
	Release()
}

type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage metadata.BufferUsage
}

type TextureDescriptor struct {
	Label       string
	Width       uint32
	Height      uint32
	LayerCount  uint32
	MipLevels   uint32
	SampleCount uint32
	Format      metadata.TextureFormat
	Usage       metadata.TextureUsage
}

type TextureViewDescriptor struct {
	Label          string
	BaseArrayLayer uint32
	BaseMipLevel   uint32
}

type SurfaceConfiguration struct {
	Width       uint32
	Height      uint32
	Format      metadata.TextureFormat
	Usage       metadata.TextureUsage
	PresentMode metadata.PresentMode
}

// RenderPassDescriptor is the translated, still backend-agnostic form of the
// abstract attachment configs; native.go lowers it to the wgpu descriptor.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
}

type RenderPassColorAttachment struct {
	View          gpuTextureView
	ResolveTarget gpuTextureView
	LoadOp        metadata.RenderPassLoadOp
	StoreOp       metadata.RenderPassStoreOp
	ClearColor    metadata.Color
}

type RenderPassDepthStencilAttachment struct {
	View              gpuTextureView
	DepthLoadOp       metadata.RenderPassLoadOp
	DepthStoreOp      metadata.RenderPassStoreOp
	DepthClearValue   float32
	StencilLoadOp     metadata.RenderPassLoadOp
	StencilStoreOp    metadata.RenderPassStoreOp
	StencilClearValue uint32
}
