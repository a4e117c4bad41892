package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/prism-engine/prism/engine/renderer/metadata"
)

func presentModeToNative(mode metadata.PresentMode) wgpu.PresentMode {
	switch mode {
	case metadata.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	case metadata.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeFifo
	}
}

func loadOpToNative(op metadata.RenderPassLoadOp) wgpu.LoadOp {
	switch op {
	case metadata.LoadOpLoad:
		return wgpu.LoadOpLoad
	default:
		// WebGPU has no "don't care" load; clear is the closest equivalent.
		return wgpu.LoadOpClear
	}
}

func storeOpToNative(op metadata.RenderPassStoreOp) wgpu.StoreOp {
	switch op {
	case metadata.StoreOpDontCare:
		return wgpu.StoreOpDiscard
	default:
		return wgpu.StoreOpStore
	}
}

func textureFormatToNative(format metadata.TextureFormat) wgpu.TextureFormat {
	switch format {
	case metadata.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case metadata.TextureFormatDepth24PlusStencil8:
		return wgpu.TextureFormatDepth24PlusStencil8
	case metadata.TextureFormatDepth32FloatStencil8:
		return wgpu.TextureFormatDepth32FloatStencil8
	default:
		return wgpu.TextureFormatBGRA8Unorm
	}
}

func textureFormatFromNative(format wgpu.TextureFormat) metadata.TextureFormat {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm:
		return metadata.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatBGRA8Unorm:
		return metadata.TextureFormatBGRA8Unorm
	case wgpu.TextureFormatDepth24PlusStencil8:
		return metadata.TextureFormatDepth24PlusStencil8
	case wgpu.TextureFormatDepth32FloatStencil8:
		return metadata.TextureFormatDepth32FloatStencil8
	default:
		return metadata.TextureFormatUnknown
	}
}

func bufferUsageToNative(usage metadata.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if usage&metadata.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if usage&metadata.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if usage&metadata.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if usage&metadata.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if usage&metadata.BufferUsageTransferSrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if usage&metadata.BufferUsageTransferDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func textureUsageToNative(usage metadata.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if usage&(metadata.TextureUsageRenderAttachment|metadata.TextureUsageDepthStencilAttachment) != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	if usage&metadata.TextureUsageSampled != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if usage&metadata.TextureUsageStorageWrite != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if usage&metadata.TextureUsageTransferSrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if usage&metadata.TextureUsageTransferDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	return out
}

func powerPreferenceToNative(pref PowerPreference) wgpu.PowerPreference {
	if pref == PowerPreferenceLowPower {
		return wgpu.PowerPreferenceLowPower
	}
	return wgpu.PowerPreferenceHighPerformance
}

func featureToNative(feature FeatureName) wgpu.FeatureName {
	switch feature {
	case FeatureDepth32FloatStencil8:
		return wgpu.FeatureNameDepth32FloatStencil8
	default:
		return wgpu.FeatureNameUndefined
	}
}
