package metadata

/**
 * @brief Describes one color attachment of a render pass in
 * backend-agnostic terms.
 */
type RenderPassColorAttachmentConfig struct {
	/** @brief The texture rendered into. For a multisample swapchain target
	 * this is the MSAA texture handed out by AcquireSwapchainTexture. */
	Texture *Texture
	/** @brief Load operation applied when the pass begins. */
	LoadOp RenderPassLoadOp
	/** @brief Store operation applied when the pass ends. */
	StoreOp RenderPassStoreOp
	/** @brief The clear color, used when LoadOp is LoadOpClear. */
	ClearColor Color
}

/**
 * @brief Describes the optional depth/stencil attachment of a render pass.
 * Depth and stencil channels carry independent load/store operations and
 * clear values; backends must never derive one channel's ops from the other.
 */
type RenderPassDepthStencilAttachmentConfig struct {
	/** @brief The depth/stencil texture. */
	Texture *Texture
	/** @brief Load operation for the depth channel. */
	DepthLoadOp RenderPassLoadOp
	/** @brief Store operation for the depth channel. */
	DepthStoreOp RenderPassStoreOp
	/** @brief The depth clear value, used when DepthLoadOp is LoadOpClear. */
	DepthClearValue float32
	/** @brief Load operation for the stencil channel. */
	StencilLoadOp RenderPassLoadOp
	/** @brief Store operation for the stencil channel. */
	StencilStoreOp RenderPassStoreOp
	/** @brief The stencil clear value, used when StencilLoadOp is LoadOpClear. */
	StencilClearValue uint32
}

/** @brief The recording state of a command buffer. */
type CommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY CommandBufferState = iota
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

/**
 * @brief A one-shot recording context. Acquired per frame, not reusable
 * after submission.
 */
type CommandBuffer struct {
	/** @brief The recording State of the command buffer. */
	State CommandBufferState
	/** @brief A pointer to internal, render API-specific data. */
	InternalData interface{}
}
