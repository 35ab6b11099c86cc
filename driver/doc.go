// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the GPU capabilities consumed by framepace.
//
// The frame time estimator needs asynchronous timer queries and the texture
// cache needs texture and render target allocation. Both receive these
// capabilities as explicit dependencies: nothing in framepace looks up a
// device through global state.
//
// # Handles
//
// Driver objects are referred to by small opaque integer handles
// ([TimerQueryHandle], [TextureHandle], [RenderTargetHandle]). The zero
// handle is never returned by a successful create call, so it can be used
// as a "no resource" marker.
//
// # Implementations
//
//   - driver/haldriver: github.com/gogpu/wgpu/hal devices (Vulkan, Metal,
//     DX12, GLES, software, noop)
//   - driver/simdriver: deterministic in-memory driver for tests and
//     simulations
//
// Implementations register themselves by name:
//
//	import _ "github.com/gogpu/framepace/driver/simdriver"
//
//	drv, err := driver.Open("sim")
//
// # Threading
//
// Drivers are used from the single rendering goroutine that calls
// BeginFrame/EndFrame. Implementations are not required to be safe for
// concurrent use.
package driver
