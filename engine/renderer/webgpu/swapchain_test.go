package webgpu

import (
	"errors"
	"testing"

	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapchainCreateBuildsResourcesInOrder(t *testing.T) {
	ctx, inst := newTestContext()
	win := newFakeWindow(800, 600)

	_, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	require.Equal(t, []string{
		"surface.create",
		"surface.configure 800x600 mode=0",
		"texture.create swapchain-depth",
		"view.create swapchain-depth-view",
	}, inst.log.snapshot())
}

func TestSwapchainDestroyTearsDownInExactReverseOrder(t *testing.T) {
	ctx, inst := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 4)
	require.NoError(t, err)

	inst.log.reset()
	sc.Destroy()

	require.Equal(t, []string{
		"view.release swapchain-msaa-view",
		"texture.release swapchain-msaa",
		"view.release swapchain-depth-view",
		"texture.release swapchain-depth",
		"surface.unconfigure",
		"surface.release",
	}, inst.log.snapshot())
}

func TestSwapchainZeroExtentClampedToOne(t *testing.T) {
	ctx, _ := newTestContext()
	win := newFakeWindow(0, 0)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	w, h := sc.Size()
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), h)
}

func TestSwapchainAcquireReturnsSurfaceTarget(t *testing.T) {
	ctx, _ := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	tex, err := sc.AcquireTexture()
	require.NoError(t, err)
	target, ok := tex.InternalData.(*renderTarget)
	require.True(t, ok)
	assert.NotNil(t, target.view)
	assert.Nil(t, target.resolve)
	assert.Equal(t, uint32(1), tex.SampleCount)
}

func TestSwapchainAcquireWithMultisamplingReturnsResolveTarget(t *testing.T) {
	ctx, _ := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 4)
	require.NoError(t, err)

	tex, err := sc.AcquireTexture()
	require.NoError(t, err)
	target, ok := tex.InternalData.(*renderTarget)
	require.True(t, ok)
	// Rendering goes to the multisample target, the surface view only
	// receives the resolve.
	assert.Same(t, sc.msaaView, target.view)
	assert.NotNil(t, target.resolve)
	assert.Equal(t, uint32(4), tex.SampleCount)
}

func TestSwapchainCoalescedRecreateRunsExactlyOnce(t *testing.T) {
	ctx, inst := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	// Many resize events before the next frame collapse into one flag.
	sc.RequestRecreate(900, 700)
	sc.RequestRecreate(1000, 750)
	sc.RequestRecreate(1024, 768)

	inst.log.reset()
	_, err = sc.AcquireTexture()
	require.NoError(t, err)

	assert.Equal(t, 1, inst.log.count("surface.unconfigure"))
	assert.Equal(t, 1, inst.log.count("surface.configure 1024x768 mode=0"))

	w, h := sc.Size()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)

	// The flag was consumed; the next acquire does not recreate again.
	sc.Present()
	inst.log.reset()
	_, err = sc.AcquireTexture()
	require.NoError(t, err)
	assert.Equal(t, 0, inst.log.count("surface.unconfigure"))
}

func TestSwapchainPresentModeChangeRecreates(t *testing.T) {
	ctx, inst := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	sc.SetPresentMode(metadata.PresentModeMailbox)
	inst.log.reset()
	_, err = sc.AcquireTexture()
	require.NoError(t, err)

	assert.Equal(t, 1, inst.log.count("surface.configure 800x600 mode=1"))
}

func TestSwapchainPresentModeUnchangedIsNoop(t *testing.T) {
	ctx, _ := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	sc.SetPresentMode(metadata.PresentModeFIFO)
	assert.False(t, sc.needsRecreate.Load())
}

func TestSwapchainSurfaceLossFlagsRecreate(t *testing.T) {
	ctx, _ := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	sc.surface.(*fakeSurface).acquireErr = errors.New("surface lost")
	_, err = sc.AcquireTexture()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSurfaceLost)
	assert.True(t, sc.needsRecreate.Load())
}

func TestSwapchainFailedRecreateRetriesOnNextAcquire(t *testing.T) {
	ctx, inst := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	// The recreate tears everything down, then fails rebuilding the depth
	// texture. The frame is skipped but the swapchain must stay recoverable.
	sc.RequestRecreate(1024, 768)
	inst.device.failNextTexture = true
	_, err = sc.AcquireTexture()
	require.Error(t, err)
	assert.True(t, sc.needsRecreate.Load())

	// The next acquire retries the recreate and succeeds.
	tex, err := sc.AcquireTexture()
	require.NoError(t, err)
	require.NotNil(t, tex)
	w, h := sc.Size()
	assert.Equal(t, uint32(1024), w)
	assert.Equal(t, uint32(768), h)
}

func TestSwapchainAcquireAfterDestroyFailsWithoutPanic(t *testing.T) {
	ctx, _ := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)
	sc.Destroy()

	_, err = sc.AcquireTexture()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSurfaceLost)
}

func TestSwapchainPresentReleasesFrameObjects(t *testing.T) {
	ctx, inst := newTestContext()
	win := newFakeWindow(800, 600)

	sc, err := SwapchainCreate(ctx, win, metadata.PresentModeFIFO, 1)
	require.NoError(t, err)

	_, err = sc.AcquireTexture()
	require.NoError(t, err)

	inst.log.reset()
	sc.Present()
	require.Equal(t, []string{
		"surface.present",
		"view.release surface-texture-view",
		"texture.release surface-texture",
	}, inst.log.snapshot())

	// Present without an acquired texture is a no-op.
	inst.log.reset()
	sc.Present()
	assert.Empty(t, inst.log.snapshot())
}
