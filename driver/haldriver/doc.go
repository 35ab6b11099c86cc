// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package haldriver implements driver.Driver on top of the gogpu/wgpu
// hardware abstraction layer.
//
// # Opening a device
//
// A Driver wraps a hal.Device and hal.Queue. They can come from an
// application that already owns a device:
//
//	drv, err := haldriver.FromProvider(provider) // gpucontext.DeviceProvider
//
// or be opened from a registered hal backend:
//
//	import _ "github.com/gogpu/wgpu/hal/noop"
//
//	drv, err := haldriver.OpenDefault()
//
// Importing this package registers it with the driver registry under the
// name "hal".
//
// # Timer queries
//
// Each timer query owns a two-entry timestamp query set. Begin and end
// markers are written by empty compute passes, resolved into a buffer and
// copied to a mappable readback buffer. The result is read once the queue
// reports the end submission complete; reading never blocks.
//
// Backends without timestamp support (software, noop, some GLES drivers)
// fall back to timing submissions on the CPU: the elapsed time runs from
// BeginTimerQuery until completion of the end submission is first observed.
//
// # Textures
//
// Textures map one to one to hal textures. hal texture views have no
// component mapping, so the swizzle passed to CreateTextureSwizzled is
// recorded and exposed through [Driver.Swizzle] for the shader side.
// Render targets are sets of single-level texture views.
//
// # Thread Safety
//
// A Driver is safe for concurrent use.
package haldriver
