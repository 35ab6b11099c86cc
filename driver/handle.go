package driver

import "fmt"

// TimerQueryHandle identifies a timer query.
type TimerQueryHandle uint32

// TextureHandle identifies a texture.
type TextureHandle uint32

// RenderTargetHandle identifies a render target.
type RenderTargetHandle uint32

// IsValid reports whether the handle names an object.
func (h TimerQueryHandle) IsValid() bool { return h != 0 }

// IsValid reports whether the handle names an object.
func (h TextureHandle) IsValid() bool { return h != 0 }

// IsValid reports whether the handle names an object.
func (h RenderTargetHandle) IsValid() bool { return h != 0 }

func (h TimerQueryHandle) String() string   { return fmt.Sprintf("TimerQuery(%d)", uint32(h)) }
func (h TextureHandle) String() string      { return fmt.Sprintf("Texture(%d)", uint32(h)) }
func (h RenderTargetHandle) String() string { return fmt.Sprintf("RenderTarget(%d)", uint32(h)) }
