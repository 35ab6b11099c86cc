package resource

import (
	"errors"
	"fmt"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/framepace/internal/cache"
)

// Texture cache errors. They are raised as panics since they indicate a
// caller bug.
var (
	// ErrUnknownTexture reports DestroyTexture on a handle that is not in
	// use.
	ErrUnknownTexture = errors.New("resource: texture not in use")

	// ErrTexturesInUse reports Terminate with textures still in use.
	ErrTexturesInUse = errors.New("resource: textures still in use")

	// ErrTerminated reports use of a terminated TextureCache.
	ErrTerminated = errors.New("resource: texture cache terminated")
)

// DefaultMaxAge is the number of GC calls a texture may stay cached.
const DefaultMaxAge = 30

// Config controls the texture cache.
type Config struct {
	// MaxAge is the number of GC calls after which a cached texture may be
	// released. Zero means DefaultMaxAge.
	MaxAge uint32

	// MaxCacheBytes bounds the cache. When no entry is old enough and the
	// cache holds more than MaxCacheBytes, GC releases the oldest entry.
	// Zero means unbounded.
	MaxCacheBytes uint64

	// Hashed selects a hash map over the default linear scan list. Use it
	// when a frame keeps more than about a thousand textures.
	Hashed bool
}

// DefaultConfig returns the default texture cache configuration.
func DefaultConfig() Config {
	return Config{MaxAge: DefaultMaxAge}
}

func (c Config) normalized() Config {
	if c.MaxAge == 0 {
		c.MaxAge = DefaultMaxAge
	}
	return c
}

// Backend is the part of the driver the texture cache uses.
type Backend interface {
	driver.Textures
	driver.RenderTargets
}

// State is the state of a texture handle in a TextureCache.
type State uint8

const (
	// StateUnknown means the cache never returned the handle or already
	// released it.
	StateUnknown State = iota
	// StateInUse means the handle is owned by the caller.
	StateInUse
	// StateCached means the handle waits in the cache for reuse.
	StateCached
)

func (s State) String() string {
	switch s {
	case StateInUse:
		return "in-use"
	case StateCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of the texture cache.
type Stats struct {
	Cached     int
	InUse      int
	CacheBytes uint64
	Age        uint32
	Hits       uint64
	Misses     uint64
	Evictions  uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("cached=%d (%d bytes) in-use=%d age=%d hits=%d misses=%d evictions=%d",
		s.Cached, s.CacheBytes, s.InUse, s.Age, s.Hits, s.Misses, s.Evictions)
}

type cacheEntry struct {
	handle driver.TextureHandle
	age    uint32
	size   uint64
	name   string
}

// TextureCache recycles textures. See the package documentation.
type TextureCache struct {
	backend Backend
	cfg     Config

	// cache is keyed by TextureKey.match(); inUse keeps the original key so
	// the name survives a round trip.
	cache cache.Container[TextureKey, cacheEntry]
	inUse cache.Container[driver.TextureHandle, TextureKey]

	age       uint32
	cacheSize uint64

	hits, misses, evictions uint64
	terminated              bool
}

// NewTextureCache creates a texture cache allocating from b.
func NewTextureCache(b Backend, cfg Config) *TextureCache {
	cfg = cfg.normalized()
	c := &TextureCache{backend: b, cfg: cfg}
	if cfg.Hashed {
		c.cache = cache.NewHashed[TextureKey, cacheEntry]()
		c.inUse = cache.NewHashed[driver.TextureHandle, TextureKey]()
	} else {
		c.cache = cache.NewList[TextureKey, cacheEntry]()
		c.inUse = cache.NewList[driver.TextureHandle, TextureKey]()
	}
	return c
}

// Config returns the normalized configuration of the cache.
func (c *TextureCache) Config() Config {
	return c.cfg
}

// CreateTexture returns a texture matching key. A cached texture with an
// equal key is reused without a driver call; otherwise a new texture is
// allocated. The swizzle is normalized before matching and the driver
// receives the normalized form. The swizzled driver entry point is only
// used when the swizzle is not the identity.
func (c *TextureCache) CreateTexture(key TextureKey) (driver.TextureHandle, error) {
	if c.terminated {
		panic(ErrTerminated)
	}
	key.Samples = max(key.Samples, 1)
	key.Swizzle = key.Swizzle.Normalize()

	if e, ok := c.cache.Remove(key.match()); ok {
		c.cacheSize -= e.size
		c.hits++
		c.inUse.Insert(e.handle, key)
		slogger().Debug("resource: texture reused",
			"name", key.Name, "handle", e.handle, "idle", c.age-e.age)
		return e.handle, nil
	}

	var (
		h   driver.TextureHandle
		err error
	)
	desc := key.Descriptor()
	if key.Swizzle.IsIdentity() {
		h, err = c.backend.CreateTexture(desc)
	} else {
		h, err = c.backend.CreateTextureSwizzled(desc, key.Swizzle)
	}
	if err != nil {
		return 0, fmt.Errorf("resource: create texture %q: %w", key.Name, err)
	}
	c.misses++
	c.inUse.Insert(h, key)
	slogger().Debug("resource: texture created", "name", key.Name, "handle", h, "key", key)
	return h, nil
}

// DestroyTexture moves a texture returned by CreateTexture into the cache.
// The texture is not released. It panics with ErrUnknownTexture if h is not
// in use.
func (c *TextureCache) DestroyTexture(h driver.TextureHandle) {
	key, ok := c.inUse.Remove(h)
	if !ok {
		panic(fmt.Errorf("%w: %v", ErrUnknownTexture, h))
	}
	size := key.Size()
	c.cache.Insert(key.match(), cacheEntry{handle: h, age: c.age, size: size, name: key.Name})
	c.cacheSize += size
}

// CreateRenderTarget creates a render target. Render targets are not
// cached.
func (c *TextureCache) CreateRenderTarget(desc driver.RenderTargetDescriptor) (driver.RenderTargetHandle, error) {
	rt, err := c.backend.CreateRenderTarget(desc)
	if err != nil {
		return 0, fmt.Errorf("resource: create render target %q: %w", desc.Label, err)
	}
	return rt, nil
}

// DestroyRenderTarget releases a render target.
func (c *TextureCache) DestroyRenderTarget(rt driver.RenderTargetHandle) {
	c.backend.DestroyRenderTarget(rt)
}

// GC advances the cache age and releases at most one cached texture: the
// first one idle for at least MaxAge calls or, failing that, the oldest one
// when the cache is over MaxCacheBytes.
func (c *TextureCache) GC() {
	c.age++

	_, e, ok := c.cache.RemoveFunc(func(_ TextureKey, e cacheEntry) bool {
		return c.age-e.age >= c.cfg.MaxAge
	})
	if !ok && c.cfg.MaxCacheBytes > 0 && c.cacheSize > c.cfg.MaxCacheBytes {
		e, ok = c.removeOldest()
	}
	if !ok {
		return
	}
	c.backend.DestroyTexture(e.handle)
	c.cacheSize -= e.size
	c.evictions++
	slogger().Debug("resource: texture released",
		"name", e.name, "handle", e.handle, "idle", c.age-e.age, "size", e.size)
}

func (c *TextureCache) removeOldest() (cacheEntry, bool) {
	var (
		oldest cacheEntry
		found  bool
	)
	for _, e := range c.cache.All() {
		if !found || c.age-e.age > c.age-oldest.age {
			oldest, found = e, true
		}
	}
	if !found {
		return cacheEntry{}, false
	}
	_, e, ok := c.cache.RemoveFunc(func(_ TextureKey, e cacheEntry) bool {
		return e.handle == oldest.handle
	})
	return e, ok
}

// Terminate releases every cached texture. It panics with ErrTexturesInUse
// if a texture returned by CreateTexture was not destroyed. Calling
// Terminate again is a no-op.
func (c *TextureCache) Terminate() {
	if n := c.inUse.Len(); n > 0 {
		panic(fmt.Errorf("%w: %d textures", ErrTexturesInUse, n))
	}
	if c.terminated {
		return
	}
	n := c.cache.Len()
	for _, e := range c.cache.All() {
		c.backend.DestroyTexture(e.handle)
	}
	c.cache.Clear()
	released := c.cacheSize
	c.cacheSize = 0
	c.terminated = true
	slogger().Info("resource: texture cache terminated",
		"released", n, "bytes", released, "hits", c.hits, "misses", c.misses)
}

// Stats returns a snapshot of the cache.
func (c *TextureCache) Stats() Stats {
	return Stats{
		Cached:     c.cache.Len(),
		InUse:      c.inUse.Len(),
		CacheBytes: c.cacheSize,
		Age:        c.age,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}

// State reports whether h is in use, cached or unknown.
func (c *TextureCache) State(h driver.TextureHandle) State {
	if _, ok := c.inUse.Find(h); ok {
		return StateInUse
	}
	for _, e := range c.cache.All() {
		if e.handle == h {
			return StateCached
		}
	}
	return StateUnknown
}

// Dump logs every cached and in-use texture at debug level.
func (c *TextureCache) Dump() {
	l := slogger()
	l.Debug("resource: texture cache", "stats", c.Stats())
	for k, e := range c.cache.All() {
		l.Debug("resource: cached",
			"name", e.name, "handle", e.handle, "idle", c.age-e.age, "size", e.size, "key", k)
	}
	for h, k := range c.inUse.All() {
		l.Debug("resource: in use", "handle", h, "key", k)
	}
}
