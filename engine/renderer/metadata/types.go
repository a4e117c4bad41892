package metadata

/** @brief Presentation modes supported by a swapchain. */
type PresentMode int

const (
	/** @brief First-in-first-out, i.e. vsync. Always available. */
	PresentModeFIFO PresentMode = 0x0
	/** @brief Triple-buffered low-latency mode. Falls back to FIFO when unavailable. */
	PresentModeMailbox PresentMode = 0x1
	/** @brief Present as fast as possible, allows tearing. */
	PresentModeImmediate PresentMode = 0x2
)

/** @brief What happens to the contents of an attachment when a render pass begins. */
type RenderPassLoadOp int

const (
	/** @brief Clear the attachment to the clear value. */
	LoadOpClear RenderPassLoadOp = iota
	/** @brief Keep the existing contents. */
	LoadOpLoad
	/** @brief Contents are undefined; cheapest when everything is overwritten. */
	LoadOpDontCare
)

/** @brief What happens to the contents of an attachment when a render pass ends. */
type RenderPassStoreOp int

const (
	/** @brief Keep the results. */
	StoreOpStore RenderPassStoreOp = iota
	/** @brief Discard the results, e.g. a multisample target after resolve. */
	StoreOpDontCare
)

/** @brief The subset of texture formats the driver hands out. */
type TextureFormat int

const (
	TextureFormatUnknown TextureFormat = iota
	TextureFormatBGRA8Unorm
	TextureFormatRGBA8Unorm
	TextureFormatDepth24PlusStencil8
	TextureFormatDepth32FloatStencil8
)

/** @brief Usage flags for buffer backings. */
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageTransferSrc
	BufferUsageTransferDst
)

/** @brief Usage flags for texture backings. */
type TextureUsage uint32

const (
	TextureUsageRenderAttachment TextureUsage = 1 << iota
	TextureUsageDepthStencilAttachment
	TextureUsageSampled
	TextureUsageStorageWrite
	TextureUsageTransferSrc
	TextureUsageTransferDst
)

/** @brief A normalized RGBA clear color. */
type Color struct {
	R, G, B, A float64
}

/**
 * @brief Static information about the backend driver, exposed to the
 * abstract GPU layer for driver selection.
 */
type DriverInfo struct {
	/** @brief The driver name, e.g. "webgpu". */
	Name string
	/** @brief The shader intermediate format the driver accepts. */
	ShaderFormat string
}
