package webgpu

import (
	"fmt"
	"time"

	"github.com/prism-engine/prism/engine/core"
)

type adapterResult struct {
	adapter gpuAdapter
	err     error
}

type deviceResult struct {
	device gpuDevice
	err    error
}

// DeviceCreate runs the two-step adapter/device negotiation. Both steps are
// callback-driven against the native API's dispatch; each callback signals a
// one-shot channel the caller blocks on with a bounded timeout. On failure
// the context's device stays nil and every driver entry point guards on it.
func DeviceCreate(ctx *Context, opts *DeviceOptions, timeout time.Duration) error {
	adapterCh := make(chan adapterResult, 1)
	ctx.Instance.RequestAdapter(&AdapterOptions{
		PowerPreference: opts.PowerPreference,
	}, func(adapter gpuAdapter, err error) {
		adapterCh <- adapterResult{adapter: adapter, err: err}
	})

	select {
	case res := <-adapterCh:
		if res.err != nil {
			err := fmt.Errorf("adapter request failed: %w", res.err)
			core.LogError(err.Error())
			return err
		}
		ctx.Adapter = res.adapter
	case <-time.After(timeout):
		err := fmt.Errorf("adapter negotiation timed out after %s", timeout)
		core.LogError(err.Error())
		return err
	}

	core.LogDebug("adapter acquired, requesting device...")

	deviceCh := make(chan deviceResult, 1)
	ctx.Adapter.RequestDevice(opts, func(device gpuDevice, err error) {
		deviceCh <- deviceResult{device: device, err: err}
	})

	select {
	case res := <-deviceCh:
		if res.err != nil {
			err := fmt.Errorf("device request failed: %w", res.err)
			core.LogError(err.Error())
			return err
		}
		ctx.Device = res.device
	case <-time.After(timeout):
		err := fmt.Errorf("device negotiation timed out after %s", timeout)
		core.LogError(err.Error())
		return err
	}

	ctx.Queue = ctx.Device.Queue()

	core.LogInfo("WebGPU device created.")
	return nil
}

// DeviceDestroy releases the negotiated objects in reverse acquisition order.
func DeviceDestroy(ctx *Context) {
	if ctx.Device != nil {
		ctx.Device.Release()
		ctx.Device = nil
		ctx.Queue = nil
	}
	if ctx.Adapter != nil {
		ctx.Adapter.Release()
		ctx.Adapter = nil
	}
}
