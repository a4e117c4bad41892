package webgpu

const (
	// DriverName identifies this backend to the abstract GPU layer.
	DriverName = "webgpu"
	// ShaderFormat is the shader intermediate format the driver accepts.
	ShaderFormat = "wgsl"

	// MaxFramesInFlight bounds how many submitted frames may be executing
	// before resources retained by the oldest are considered drained.
	MaxFramesInFlight = 2

	// swapchainProperty is the window property key the driver stores its
	// per-window swapchain state under.
	swapchainProperty = "prism.webgpu.swapchain"

	// baselineRefCount is a physical backing's reference count when only its
	// owning container references it, i.e. no in-flight frame is using it.
	baselineRefCount = 1

	// pendingQueueSize bounds the in-flight resource retention queue. Two
	// frames of retained resources plus slack.
	pendingQueueSize = 1024
)
