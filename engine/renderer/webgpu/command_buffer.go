package webgpu

import (
	"fmt"

	"github.com/prism-engine/prism/engine/core"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// CommandBuffer records one frame's worth of GPU work. It wraps a native
// command encoder and tracks which physical resources the recorded commands
// reference, so their release can be deferred until the frame drains.
type CommandBuffer struct {
	ctx     *Context
	encoder gpuCommandEncoder
	pass    gpuRenderPass
	state   metadata.CommandBufferState
	frame   uint64
	label   string

	retained []refCounted
	targets  []*Swapchain
}

// NewCommandBuffer allocates the frame's encoder. Fails when the device never
// finished bootstrapping.
func NewCommandBuffer(ctx *Context, label string) (*CommandBuffer, error) {
	if ctx.Device == nil {
		err := core.ErrDeviceNotReady
		core.LogError("command buffer acquisition: %s", err.Error())
		return nil, err
	}
	if label == "" {
		label = core.IdentifierLabel("cmd")
	}
	encoder, err := ctx.Device.CreateCommandEncoder(label)
	if err != nil {
		e := fmt.Errorf("command encoder creation failed: %w", err)
		core.LogError(e.Error())
		return nil, e
	}
	return &CommandBuffer{
		ctx:     ctx,
		encoder: encoder,
		state:   metadata.COMMAND_BUFFER_STATE_READY,
		frame:   ctx.FrameNumber,
		label:   label,
	}, nil
}

func (cb *CommandBuffer) State() metadata.CommandBufferState {
	return cb.state
}

// addPresentTarget remembers a swapchain whose texture this frame renders to,
// so submission can present it.
func (cb *CommandBuffer) addPresentTarget(sc *Swapchain) {
	for _, t := range cb.targets {
		if t == sc {
			return
		}
	}
	cb.targets = append(cb.targets, sc)
}

// resolveColorView maps an abstract texture to its native view and optional
// resolve target, retaining container-owned backings for the frame.
func (cb *CommandBuffer) resolveColorView(t *metadata.Texture) (gpuTextureView, gpuTextureView, error) {
	switch internal := t.InternalData.(type) {
	case *renderTarget:
		return internal.view, internal.resolve, nil
	case *TextureContainer:
		h := internal.ActiveHandle()
		if h == nil {
			return nil, nil, fmt.Errorf("texture '%s' has no active backing", t.Name)
		}
		sr := h.Backing().Subresource(0, 0)
		view, err := sr.RenderTargetView()
		if err != nil {
			return nil, nil, err
		}
		h.Backing().retain()
		cb.retained = append(cb.retained, h.Backing())
		return view, nil, nil
	default:
		return nil, nil, fmt.Errorf("texture '%s' has no driver data", t.Name)
	}
}

func (cb *CommandBuffer) resolveDepthView(t *metadata.Texture) (gpuTextureView, error) {
	switch internal := t.InternalData.(type) {
	case *renderTarget:
		return internal.view, nil
	case *TextureContainer:
		h := internal.ActiveHandle()
		if h == nil {
			return nil, fmt.Errorf("texture '%s' has no active backing", t.Name)
		}
		sr := h.Backing().Subresource(0, 0)
		view, err := sr.DepthStencilView()
		if err != nil {
			return nil, err
		}
		h.Backing().retain()
		cb.retained = append(cb.retained, h.Backing())
		return view, nil
	default:
		return nil, fmt.Errorf("texture '%s' has no driver data", t.Name)
	}
}

// BeginRenderPass opens a pass over the given attachments. A pass with zero
// color attachments is rejected before any native state is touched, so a
// failed begin leaves the encoder reusable.
func (cb *CommandBuffer) BeginRenderPass(colors []metadata.RenderPassColorAttachmentConfig, depthStencil *metadata.RenderPassDepthStencilAttachmentConfig) error {
	if len(colors) == 0 {
		err := fmt.Errorf("render pass requires at least one color attachment")
		core.LogError(err.Error())
		return err
	}
	if cb.state != metadata.COMMAND_BUFFER_STATE_READY {
		err := fmt.Errorf("render pass begun in state %d, expected ready", cb.state)
		core.LogError(err.Error())
		return err
	}

	desc := &RenderPassDescriptor{
		Label:            cb.label,
		ColorAttachments: make([]RenderPassColorAttachment, 0, len(colors)),
	}
	for _, ca := range colors {
		view, resolve, err := cb.resolveColorView(ca.Texture)
		if err != nil {
			core.LogError(err.Error())
			return err
		}
		desc.ColorAttachments = append(desc.ColorAttachments, RenderPassColorAttachment{
			View:          view,
			ResolveTarget: resolve,
			LoadOp:        ca.LoadOp,
			StoreOp:       ca.StoreOp,
			ClearColor:    ca.ClearColor,
		})
	}
	if depthStencil != nil {
		view, err := cb.resolveDepthView(depthStencil.Texture)
		if err != nil {
			core.LogError(err.Error())
			return err
		}
		desc.DepthStencilAttachment = &RenderPassDepthStencilAttachment{
			View:              view,
			DepthLoadOp:       depthStencil.DepthLoadOp,
			DepthStoreOp:      depthStencil.DepthStoreOp,
			DepthClearValue:   depthStencil.DepthClearValue,
			StencilLoadOp:     depthStencil.StencilLoadOp,
			StencilStoreOp:    depthStencil.StencilStoreOp,
			StencilClearValue: depthStencil.StencilClearValue,
		}
	}

	pass, err := cb.encoder.BeginRenderPass(desc)
	if err != nil {
		e := fmt.Errorf("render pass begin failed: %w", err)
		core.LogError(e.Error())
		return e
	}
	cb.pass = pass
	cb.state = metadata.COMMAND_BUFFER_STATE_IN_RENDER_PASS
	return nil
}

// EndRenderPass closes the open pass and returns the encoder to the ready
// state. Multiple sequential passes per command buffer are allowed.
func (cb *CommandBuffer) EndRenderPass() error {
	if cb.state != metadata.COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		err := fmt.Errorf("render pass ended in state %d, expected in-render-pass", cb.state)
		core.LogError(err.Error())
		return err
	}
	cb.pass.End()
	cb.pass.Release()
	cb.pass = nil
	cb.state = metadata.COMMAND_BUFFER_STATE_READY
	return nil
}

// Submit finishes recording, hands the commands to the queue, presents every
// swapchain rendered to this frame, and schedules the retained resource
// references for release once the frame drains.
func (cb *CommandBuffer) Submit() error {
	if cb.state == metadata.COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		err := fmt.Errorf("submit called with a render pass still open")
		core.LogError(err.Error())
		return err
	}
	if cb.state != metadata.COMMAND_BUFFER_STATE_READY {
		err := fmt.Errorf("submit called in state %d", cb.state)
		core.LogError(err.Error())
		return err
	}

	commands, err := cb.encoder.Finish(cb.label)
	if err != nil {
		e := fmt.Errorf("command encoder finish failed: %w", err)
		core.LogError(e.Error())
		return e
	}
	cb.state = metadata.COMMAND_BUFFER_STATE_RECORDING_ENDED

	cb.ctx.Queue.Submit(commands)
	commands.Release()
	cb.encoder.Release()
	cb.encoder = nil

	for _, sc := range cb.targets {
		sc.Present()
	}
	cb.targets = nil

	cb.ctx.retainUntilDrained(cb.frame, cb.retained)
	cb.retained = nil
	cb.state = metadata.COMMAND_BUFFER_STATE_SUBMITTED
	return nil
}
