package renderer

import (
	"github.com/prism-engine/prism/engine/renderer/metadata"
	"github.com/prism-engine/prism/engine/renderer/webgpu"
)

type RendererBackend interface {
	Initialize() error
	Shutdown()
	ClaimWindow(win webgpu.Window) error
	ReleaseWindow(win webgpu.Window)
	Resized(win webgpu.Window, width, height uint32)
	SetPresentMode(mode metadata.PresentMode)
	AcquireCommandBuffer() (*metadata.CommandBuffer, error)
	AcquireSwapchainTexture(win webgpu.Window) (*metadata.Texture, uint32, uint32, error)
	WindowDepthTexture(win webgpu.Window) *metadata.Texture
	BeginRenderPass(cb *metadata.CommandBuffer, colors []metadata.RenderPassColorAttachmentConfig, depthStencil *metadata.RenderPassDepthStencilAttachmentConfig) error
	EndRenderPass(cb *metadata.CommandBuffer) error
	Submit(cb *metadata.CommandBuffer) error
	BufferCreate(size uint64, usage metadata.BufferUsage, name string) (*metadata.Buffer, error)
	BufferAcquireWritable(b *metadata.Buffer) error
	BufferMarkForDestroy(b *metadata.Buffer)
	TextureCreate(desc webgpu.TextureDescriptor) (*metadata.Texture, error)
	TextureAcquireWritable(t *metadata.Texture) error
	TextureMarkForDestroy(t *metadata.Texture)
	DriverInfo() metadata.DriverInfo
}
