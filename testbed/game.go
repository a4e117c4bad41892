package testbed

import (
	"math"
	"os"

	"github.com/prism-engine/prism/engine/config"
	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/platform"
	"github.com/prism-engine/prism/engine/renderer"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

const configPath = "prism.toml"

// Demo clears the window with a slowly cycling color. Small as it is, it
// drives the whole frame loop: acquire, record, pass, submit, present.
type Demo struct {
	cfg      *config.ApplicationConfig
	platform *platform.Platform
	window   *platform.Window
	watcher  *config.Watcher
	clock    *core.Clock

	running bool
}

func NewDemo() *Demo {
	cfg := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			core.LogWarn("ignoring %s: %s", configPath, err.Error())
		} else {
			cfg = loaded
		}
	}
	return &Demo{
		cfg:      cfg,
		platform: platform.New(),
		clock:    core.NewClock(),
	}
}

func (d *Demo) Initialize() error {
	core.SetLogLevel(d.cfg.LogLevel)
	core.EventSystemInitialize()
	core.MetricsInitialize()

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, d, d.onQuit)

	if err := d.platform.Startup(); err != nil {
		return err
	}
	window, err := d.platform.CreateWindow(d.cfg.Name, d.cfg.StartPosX, d.cfg.StartPosY, d.cfg.StartWidth, d.cfg.StartHeight)
	if err != nil {
		return err
	}
	d.window = window

	if err := renderer.Initialize(d.cfg); err != nil {
		return err
	}
	if err := renderer.ClaimWindow(d.window); err != nil {
		return err
	}

	if watcher, err := config.NewWatcher(configPath); err == nil {
		if err := watcher.Start(); err != nil {
			core.LogWarn("config watching disabled: %s", err.Error())
		} else {
			d.watcher = watcher
		}
	}

	d.running = true
	return nil
}

func (d *Demo) onQuit(code core.SystemEventCode, sender interface{}, data core.EventContext) bool {
	d.running = false
	return false
}

// Run executes the frame loop until the window closes or quit is requested.
func (d *Demo) Run() error {
	d.clock.Start()
	lastTime := 0.0

	for d.running && d.platform.PumpMessages() {
		d.clock.Update()
		now := d.clock.Elapsed()
		delta := now - lastTime
		lastTime = now

		if err := d.renderFrame(now); err != nil {
			core.LogError("frame aborted: %s", err.Error())
			return err
		}

		core.MetricsUpdate(delta)
	}
	return nil
}

func (d *Demo) renderFrame(elapsed float64) error {
	cb, err := renderer.AcquireCommandBuffer()
	if err != nil {
		return err
	}

	target, _, _, err := renderer.AcquireSwapchainTexture(d.window)
	if err != nil {
		// Swapchain out of date or minimized; skip this frame.
		core.LogDebug("skipping frame: %s", err.Error())
		return nil
	}

	colors := []metadata.RenderPassColorAttachmentConfig{{
		Texture: target,
		LoadOp:  metadata.LoadOpClear,
		StoreOp: metadata.StoreOpStore,
		ClearColor: metadata.Color{
			R: 0.5 + 0.5*math.Sin(elapsed),
			G: 0.5 + 0.5*math.Sin(elapsed*0.7),
			B: 0.5 + 0.5*math.Sin(elapsed*1.3),
			A: 1.0,
		},
	}}
	depthStencil := &metadata.RenderPassDepthStencilAttachmentConfig{
		Texture:           renderer.WindowDepthTexture(d.window),
		DepthLoadOp:       metadata.LoadOpClear,
		DepthStoreOp:      metadata.StoreOpDontCare,
		DepthClearValue:   1.0,
		StencilLoadOp:     metadata.LoadOpClear,
		StencilStoreOp:    metadata.StoreOpDontCare,
		StencilClearValue: 0,
	}

	if err := renderer.BeginRenderPass(cb, colors, depthStencil); err != nil {
		return err
	}
	if err := renderer.EndRenderPass(cb); err != nil {
		return err
	}
	return renderer.Submit(cb)
}

func (d *Demo) Shutdown() error {
	d.running = false
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.window != nil {
		renderer.ReleaseWindow(d.window)
	}
	renderer.Shutdown()
	if err := d.platform.Shutdown(); err != nil {
		return err
	}
	core.EventSystemShutdown()

	fps, frameTime := core.MetricsFrame()
	core.LogInfo("session ended at %.1f fps (%.2fms avg)", fps, frameTime)
	return nil
}
