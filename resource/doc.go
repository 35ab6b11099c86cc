// Package resource recycles transient GPU textures across frames.
//
// A [TextureCache] sits between render-graph code and the driver. Destroying
// a texture does not release it: the handle is filed in a cache under the
// parameters it was created with, and a later request with the same
// parameters gets the handle back without a driver call. [TextureCache.GC]
// runs once per frame and releases at most one texture that has sat in the
// cache for [Config.MaxAge] frames, spreading release cost over frames.
//
// Render targets are passed straight through to the driver and never
// cached.
//
// Every handle returned by CreateTexture is in exactly one of two states
// until Terminate: in use by the caller, or cached. Destroying a handle the
// cache does not know, or terminating while handles are in use, panics with
// [ErrUnknownTexture] or [ErrTexturesInUse].
//
// A TextureCache is not safe for concurrent use.
package resource
