package platform

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/prism-engine/prism/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform owns GLFW and the windows created through it.
type Platform struct {
	windows []*Window
}

// Window wraps a native window with a property store. Backends stash their
// per-window state (swapchain, cached sizes) here instead of keeping a side
// table keyed by window pointer.
type Window struct {
	Handle *glfw.Window

	mu         sync.RWMutex
	properties map[string]interface{}
}

func New() *Platform {
	return &Platform{}
}

func (p *Platform) Startup() error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}
	return nil
}

// CreateWindow opens a visible, resizable window without a client API
// context. Framebuffer resizes are forwarded to the event system with the
// window as the sender.
func (p *Platform) CreateWindow(title string, x, y, width, height uint32) (*Window, error) {
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Rendering goes through WebGPU.

	handle, err := glfw.CreateWindow(int(width), int(height), title, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		return nil, err
	}

	window := &Window{
		Handle:     handle,
		properties: make(map[string]interface{}),
	}

	handle.SetFramebufferSizeCallback(func(w *glfw.Window, newWidth, newHeight int) {
		ctx := core.EventContext{}
		ctx.Data.U32[0] = uint32(newWidth)
		ctx.Data.U32[1] = uint32(newHeight)
		core.EventFire(core.EVENT_CODE_RESIZED, window, ctx)
	})
	handle.SetCloseCallback(func(w *glfw.Window) {
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, window, core.EventContext{})
	})
	handle.SetPos(int(x), int(y))
	handle.Show()

	p.windows = append(p.windows, window)
	return window, nil
}

func (p *Platform) Shutdown() error {
	for _, w := range p.windows {
		w.Handle.Destroy()
	}
	p.windows = nil
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending OS events. Returns false once every window
// has been closed.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	for _, w := range p.windows {
		if !w.Handle.ShouldClose() {
			return true
		}
	}
	return len(p.windows) == 0
}

func GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

// PixelSize returns the framebuffer dimensions in pixels, which on high-DPI
// displays differ from the window size.
func (w *Window) PixelSize() (uint32, uint32) {
	width, height := w.Handle.GetFramebufferSize()
	return uint32(width), uint32(height)
}

// SurfaceDescriptor returns the platform-specific descriptor a WebGPU
// surface is created from.
func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.Handle)
}

// SetProperty attaches an opaque value to the window under the given key.
func (w *Window) SetProperty(key string, value interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.properties[key] = value
}

// Property returns the value attached under key, or nil.
func (w *Window) Property(key string) interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.properties[key]
}

// DeleteProperty removes the value attached under key.
func (w *Window) DeleteProperty(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.properties, key)
}

func (w *Window) String() string {
	return fmt.Sprintf("window(%p)", w.Handle)
}
