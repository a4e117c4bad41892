package core

import (
	"errors"
)

var (
	// ErrOutOfMemory is returned when a physical backing allocation fails.
	// The failing call is lost but the renderer remains usable.
	ErrOutOfMemory = errors.New("out of device memory")
	// ErrDeviceNotReady is returned when an operation is attempted before the
	// adapter/device negotiation has completed successfully.
	ErrDeviceNotReady = errors.New("device not ready")
	// ErrSurfaceLost is returned when the presentable surface cannot provide a
	// texture. The caller should skip the frame, not retry in a loop.
	ErrSurfaceLost = errors.New("surface lost")
)
