package renderer

import (
	"sync"

	"github.com/prism-engine/prism/engine/config"
	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/renderer/metadata"
	"github.com/prism-engine/prism/engine/renderer/webgpu"
)

type Renderer struct {
	backend RendererBackend
}

var initRenderer sync.Once
var renderer *Renderer

// Initialize builds the WebGPU backend from the application configuration and
// runs device bootstrap. Window resize and config file change events are
// wired so the backend reacts without the application forwarding them.
func Initialize(cfg *config.ApplicationConfig) error {
	presentMode, err := cfg.Renderer.ParsePresentMode()
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	timeout, err := cfg.Renderer.ParseDeviceTimeout()
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	power := webgpu.PowerPreferenceHighPerformance
	if cfg.Renderer.PowerPreference == "low-power" {
		power = webgpu.PowerPreferenceLowPower
	}

	initRenderer.Do(func() {
		renderer = &Renderer{
			backend: webgpu.New(webgpu.Options{
				PresentMode:     presentMode,
				SampleCount:     cfg.Renderer.SampleCount,
				PowerPreference: power,
				DeviceTimeout:   timeout,
			}),
		}
	})

	if err := renderer.backend.Initialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_RESIZED, renderer, onResized)
	core.EventRegister(core.EVENT_CODE_RENDERER_CONFIG_CHANGED, renderer, onConfigChanged)

	info := renderer.backend.DriverInfo()
	core.LogInfo("renderer initialized with driver '%s' (%s)", info.Name, info.ShaderFormat)
	return nil
}

func Shutdown() {
	if renderer == nil {
		return
	}
	core.EventUnregister(core.EVENT_CODE_RESIZED, renderer)
	core.EventUnregister(core.EVENT_CODE_RENDERER_CONFIG_CHANGED, renderer)
	renderer.backend.Shutdown()
}

func onResized(code core.SystemEventCode, sender interface{}, data core.EventContext) bool {
	win, ok := sender.(webgpu.Window)
	if !ok {
		return false
	}
	renderer.backend.Resized(win, data.Data.U32[0], data.Data.U32[1])
	// Other systems may care about resizes too.
	return false
}

func onConfigChanged(code core.SystemEventCode, sender interface{}, data core.EventContext) bool {
	path := data.Data.C[0]
	cfg, err := config.Load(path)
	if err != nil {
		core.LogWarn("ignoring config reload from %s: %s", path, err.Error())
		return false
	}
	mode, err := cfg.Renderer.ParsePresentMode()
	if err != nil {
		core.LogWarn("ignoring config reload from %s: %s", path, err.Error())
		return false
	}
	core.LogInfo("config reloaded, present mode now %q", cfg.Renderer.PresentMode)
	renderer.backend.SetPresentMode(mode)
	return false
}

func ClaimWindow(win webgpu.Window) error {
	return renderer.backend.ClaimWindow(win)
}

func ReleaseWindow(win webgpu.Window) {
	renderer.backend.ReleaseWindow(win)
}

func SetPresentMode(mode metadata.PresentMode) {
	renderer.backend.SetPresentMode(mode)
}

func AcquireCommandBuffer() (*metadata.CommandBuffer, error) {
	return renderer.backend.AcquireCommandBuffer()
}

func AcquireSwapchainTexture(win webgpu.Window) (*metadata.Texture, uint32, uint32, error) {
	return renderer.backend.AcquireSwapchainTexture(win)
}

func WindowDepthTexture(win webgpu.Window) *metadata.Texture {
	return renderer.backend.WindowDepthTexture(win)
}

func BeginRenderPass(cb *metadata.CommandBuffer, colors []metadata.RenderPassColorAttachmentConfig, depthStencil *metadata.RenderPassDepthStencilAttachmentConfig) error {
	return renderer.backend.BeginRenderPass(cb, colors, depthStencil)
}

func EndRenderPass(cb *metadata.CommandBuffer) error {
	return renderer.backend.EndRenderPass(cb)
}

func Submit(cb *metadata.CommandBuffer) error {
	return renderer.backend.Submit(cb)
}

func BufferCreate(size uint64, usage metadata.BufferUsage, name string) (*metadata.Buffer, error) {
	return renderer.backend.BufferCreate(size, usage, name)
}

func BufferAcquireWritable(b *metadata.Buffer) error {
	return renderer.backend.BufferAcquireWritable(b)
}

func BufferMarkForDestroy(b *metadata.Buffer) {
	renderer.backend.BufferMarkForDestroy(b)
}

func TextureCreate(desc webgpu.TextureDescriptor) (*metadata.Texture, error) {
	return renderer.backend.TextureCreate(desc)
}

func TextureAcquireWritable(t *metadata.Texture) error {
	return renderer.backend.TextureAcquireWritable(t)
}

func TextureMarkForDestroy(t *metadata.Texture) {
	renderer.backend.TextureMarkForDestroy(t)
}

func DriverInfo() metadata.DriverInfo {
	return renderer.backend.DriverInfo()
}
