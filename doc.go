// Package framepace paces a real-time renderer.
//
// # Overview
//
// A Pacer owns the two per-frame helpers a renderer needs to hold a frame
// rate on a GPU of unknown speed:
//
//   - a frame time estimator ([frameinfo.Manager]) that measures every frame
//     with a GPU timer query and turns the denoised frame time into a
//     workload scale with a PI controller;
//   - a texture cache ([resource.TextureCache]) that recycles the transient
//     textures of the render graph instead of reallocating them each frame.
//
// An optional dynamic resolution controller ([resolution.Controller])
// converts the workload scale into a viewport scale.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/framepace"
//	    "github.com/gogpu/framepace/driver/haldriver"
//	    "github.com/gogpu/framepace/resolution"
//	)
//
//	drv, err := haldriver.FromProvider(provider)
//	if err != nil {
//	    return err
//	}
//	p, err := framepace.New(drv, framepace.WithDynamicResolution(resolution.DefaultOptions()))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	for running {
//	    if _, err := p.BeginFrame(); err != nil {
//	        return err
//	    }
//	    w, h := p.Resolution().Apply(width, height)
//	    // render at w x h, allocating transients from p.Textures()
//	    _ = p.EndFrame()
//	}
//
// # Frame Order
//
// Every frame runs BeginFrame, the renderer's work, then EndFrame. EndFrame
// closes the frame's timer query and then runs one texture cache GC step, so
// textures released during the frame are aged from the next frame on.
//
// # Drivers
//
// The Pacer talks to the GPU through [driver.Driver]. The driver/haldriver
// package implements it on gogpu/wgpu's hal; driver/simdriver is a
// deterministic in-memory driver for tests and simulations.
package framepace

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
