package driver

import (
	"errors"
	"time"
)

// Driver errors.
var (
	// ErrDriverNotFound is returned by Open for an unregistered driver name.
	ErrDriverNotFound = errors.New("driver: driver not found")

	// ErrNoDriver is returned by OpenDefault when no driver is registered.
	ErrNoDriver = errors.New("driver: no driver registered")

	// ErrInvalidHandle is returned when a handle does not name a live object.
	ErrInvalidHandle = errors.New("driver: invalid handle")

	// ErrInvalidDescriptor is returned for descriptors with zero extents.
	ErrInvalidDescriptor = errors.New("driver: invalid descriptor")

	// ErrClosed is returned when creating objects on a closed driver.
	ErrClosed = errors.New("driver: closed")
)

// TimerQueries measures GPU time between a begin and an end marker.
//
// Results become available asynchronously, typically a few frames after
// EndTimerQuery. TimerQueryValue never blocks: it reports false until the
// GPU has produced the result.
type TimerQueries interface {
	// CreateTimerQuery allocates a timer query.
	CreateTimerQuery() (TimerQueryHandle, error)

	// DestroyTimerQuery releases a timer query.
	DestroyTimerQuery(q TimerQueryHandle)

	// BeginTimerQuery starts measuring GPU time.
	BeginTimerQuery(q TimerQueryHandle)

	// EndTimerQuery stops measuring GPU time.
	EndTimerQuery(q TimerQueryHandle)

	// TimerQueryValue returns the elapsed GPU time of the last
	// begin/end pair and whether it is available yet.
	TimerQueryValue(q TimerQueryHandle) (time.Duration, bool)
}

// TimerQueryFailures is implemented by drivers whose timer queries can
// fail after EndTimerQuery, for example when the readback cannot be mapped.
// A failed query never produces a value, so callers waiting on it use
// TimerQueryFailed to give up on the result.
type TimerQueryFailures interface {
	// TimerQueryFailed reports whether the last begin/end pair of q failed.
	// It is reset by the next BeginTimerQuery.
	TimerQueryFailed(q TimerQueryHandle) bool
}

// Textures allocates and releases GPU textures.
type Textures interface {
	// CreateTexture allocates a texture with the identity swizzle.
	CreateTexture(desc TextureDescriptor) (TextureHandle, error)

	// CreateTextureSwizzled allocates a texture whose channels are
	// remapped when sampled.
	CreateTextureSwizzled(desc TextureDescriptor, swizzle SwizzleMapping) (TextureHandle, error)

	// DestroyTexture releases a texture.
	DestroyTexture(t TextureHandle)
}

// RenderTargets allocates and releases render targets.
type RenderTargets interface {
	// CreateRenderTarget groups texture attachments into a render target.
	CreateRenderTarget(desc RenderTargetDescriptor) (RenderTargetHandle, error)

	// DestroyRenderTarget releases a render target. Attached textures are
	// not affected.
	DestroyRenderTarget(rt RenderTargetHandle)
}

// Driver is the complete set of capabilities a framepace.Pacer needs.
type Driver interface {
	TimerQueries
	Textures
	RenderTargets

	// Close releases the driver. Objects still alive are destroyed.
	Close() error
}
