package webgpu

import (
	"errors"
	"testing"
	"time"

	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (*Renderer, *fakeInstance) {
	t.Helper()
	inst := newFakeInstance()
	r := newRenderer(inst, Options{
		PresentMode:   metadata.PresentModeFIFO,
		SampleCount:   1,
		DeviceTimeout: time.Second,
	})
	require.NoError(t, r.Initialize())
	return r, inst
}

func TestRendererGuardsEverythingBeforeInitialize(t *testing.T) {
	inst := newFakeInstance()
	r := newRenderer(inst, Options{})
	win := newFakeWindow(800, 600)

	assert.ErrorIs(t, r.ClaimWindow(win), core.ErrDeviceNotReady)
	_, err := r.AcquireCommandBuffer()
	assert.ErrorIs(t, err, core.ErrDeviceNotReady)
	_, _, _, err = r.AcquireSwapchainTexture(win)
	assert.ErrorIs(t, err, core.ErrDeviceNotReady)
	_, err = r.BufferCreate(64, metadata.BufferUsageVertex, "verts")
	assert.ErrorIs(t, err, core.ErrDeviceNotReady)
	_, err = r.TextureCreate(testTextureDesc("atlas"))
	assert.ErrorIs(t, err, core.ErrDeviceNotReady)
}

func TestRendererInitializeFailureLeavesGuardsUp(t *testing.T) {
	inst := newFakeInstance()
	inst.adapterErr = errors.New("no adapter")
	r := newRenderer(inst, Options{DeviceTimeout: time.Second})

	require.Error(t, r.Initialize())
	_, err := r.AcquireCommandBuffer()
	assert.ErrorIs(t, err, core.ErrDeviceNotReady)
}

func TestRendererClaimWindowStoresSwapchainProperty(t *testing.T) {
	r, _ := newTestRenderer(t)
	win := newFakeWindow(800, 600)

	require.NoError(t, r.ClaimWindow(win))
	sc, ok := win.Property(swapchainProperty).(*Swapchain)
	require.True(t, ok)
	w, h := sc.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)

	// Double claim is rejected.
	assert.Error(t, r.ClaimWindow(win))

	r.ReleaseWindow(win)
	assert.Nil(t, win.Property(swapchainProperty))
}

func TestRendererFullFrame(t *testing.T) {
	r, inst := newTestRenderer(t)
	win := newFakeWindow(800, 600)
	require.NoError(t, r.ClaimWindow(win))

	cb, err := r.AcquireCommandBuffer()
	require.NoError(t, err)

	target, w, h, err := r.AcquireSwapchainTexture(win)
	require.NoError(t, err)
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)

	colors := []metadata.RenderPassColorAttachmentConfig{colorAttachment(target)}
	depth := &metadata.RenderPassDepthStencilAttachmentConfig{
		Texture:         r.WindowDepthTexture(win),
		DepthLoadOp:     metadata.LoadOpClear,
		DepthStoreOp:    metadata.StoreOpDontCare,
		DepthClearValue: 1.0,
		StencilLoadOp:   metadata.LoadOpClear,
		StencilStoreOp:  metadata.StoreOpDontCare,
	}
	require.NoError(t, r.BeginRenderPass(cb, colors, depth))
	assert.Equal(t, metadata.COMMAND_BUFFER_STATE_IN_RENDER_PASS, cb.State)
	require.NoError(t, r.EndRenderPass(cb))
	require.NoError(t, r.Submit(cb))
	assert.Equal(t, metadata.COMMAND_BUFFER_STATE_SUBMITTED, cb.State)

	// The acquired swapchain was presented as part of submission.
	assert.Equal(t, 1, inst.log.count("surface.present"))
}

func TestRendererResizeRecreatesOnceOnNextAcquire(t *testing.T) {
	r, inst := newTestRenderer(t)
	win := newFakeWindow(800, 600)
	require.NoError(t, r.ClaimWindow(win))

	r.Resized(win, 1024, 768)
	r.Resized(win, 1024, 768)

	_, err := r.AcquireCommandBuffer()
	require.NoError(t, err)
	inst.log.reset()
	_, w, h, err := r.AcquireSwapchainTexture(win)
	require.NoError(t, err)

	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
	assert.Equal(t, 1, inst.log.count("surface.unconfigure"))
	assert.Equal(t, 1, inst.log.count("surface.configure 1024x768 mode=0"))
}

func TestRendererSetPresentModeAppliesToAllWindows(t *testing.T) {
	r, inst := newTestRenderer(t)
	winA := newFakeWindow(800, 600)
	winB := newFakeWindow(400, 300)
	require.NoError(t, r.ClaimWindow(winA))
	require.NoError(t, r.ClaimWindow(winB))

	r.SetPresentMode(metadata.PresentModeImmediate)

	_, err := r.AcquireCommandBuffer()
	require.NoError(t, err)
	inst.log.reset()
	_, _, _, err = r.AcquireSwapchainTexture(winA)
	require.NoError(t, err)
	_, _, _, err = r.AcquireSwapchainTexture(winB)
	require.NoError(t, err)

	assert.Equal(t, 1, inst.log.count("surface.configure 800x600 mode=2"))
	assert.Equal(t, 1, inst.log.count("surface.configure 400x300 mode=2"))
}

func TestRendererFrameCounterDrivesDrain(t *testing.T) {
	r, inst := newTestRenderer(t)
	win := newFakeWindow(800, 600)
	require.NoError(t, r.ClaimWindow(win))

	tex, err := r.TextureCreate(testTextureDesc("offscreen"))
	require.NoError(t, err)

	// Frame 1 renders into the offscreen texture.
	cb, err := r.AcquireCommandBuffer()
	require.NoError(t, err)
	require.NoError(t, r.BeginRenderPass(cb, []metadata.RenderPassColorAttachmentConfig{colorAttachment(tex)}, nil))
	require.NoError(t, r.EndRenderPass(cb))
	require.NoError(t, r.Submit(cb))

	r.TextureMarkForDestroy(tex)
	assert.Equal(t, 0, inst.log.count("texture.release offscreen"))

	// Two more frame acquisitions age the reference past the in-flight
	// window; the second drain performs the release.
	_, err = r.AcquireCommandBuffer()
	require.NoError(t, err)
	assert.Equal(t, 0, inst.log.count("texture.release offscreen"))
	_, err = r.AcquireCommandBuffer()
	require.NoError(t, err)
	assert.Equal(t, 1, inst.log.count("texture.release offscreen"))
}

func TestRendererAbandonedCommandBufferDoesNotLeakIntoNextFrame(t *testing.T) {
	r, inst := newTestRenderer(t)
	win := newFakeWindow(800, 600)
	require.NoError(t, r.ClaimWindow(win))

	// Frame 1 acquires a swapchain texture but is never submitted.
	cb1, err := r.AcquireCommandBuffer()
	require.NoError(t, err)
	_, _, _, err = r.AcquireSwapchainTexture(win)
	require.NoError(t, err)

	// Frame 2 replaces the abandoned recording.
	cb2, err := r.AcquireCommandBuffer()
	require.NoError(t, err)
	assert.NotSame(t, cb1.InternalData, cb2.InternalData)

	// Submitting frame 2 presents only its own targets; the abandoned frame
	// never registered with it.
	require.NoError(t, r.Submit(cb2))
	assert.Equal(t, 0, inst.log.count("surface.present"))
}

func TestRendererShutdownReleasesEverything(t *testing.T) {
	r, inst := newTestRenderer(t)
	win := newFakeWindow(800, 600)
	require.NoError(t, r.ClaimWindow(win))
	_, err := r.BufferCreate(64, metadata.BufferUsageVertex, "verts")
	require.NoError(t, err)

	r.Shutdown()

	calls := inst.log.snapshot()
	assert.Contains(t, calls, "surface.release")
	assert.Contains(t, calls, "buffer.release verts")
	assert.Contains(t, calls, "device.release")
	assert.Contains(t, calls, "adapter.release")
	assert.Contains(t, calls, "instance.release")
	assert.Nil(t, win.Property(swapchainProperty))
}

func TestRendererDriverInfo(t *testing.T) {
	r, _ := newTestRenderer(t)
	info := r.DriverInfo()
	assert.Equal(t, "webgpu", info.Name)
	assert.Equal(t, "wgsl", info.ShaderFormat)
}

func TestRendererBufferLifecycleThroughFacade(t *testing.T) {
	r, _ := newTestRenderer(t)

	buf, err := r.BufferCreate(128, metadata.BufferUsageUniform, "globals")
	require.NoError(t, err)
	require.NoError(t, r.BufferAcquireWritable(buf))

	c := buf.InternalData.(*BufferContainer)
	assert.Equal(t, 1, c.HandleCount())

	r.BufferMarkForDestroy(buf)
	assert.Nil(t, buf.InternalData)
}
