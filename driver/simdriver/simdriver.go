// Package simdriver provides a deterministic in-memory driver.
//
// Timer query results become available after a configurable number of
// polls and report a GPU time chosen by a cost function, which makes the
// frame time estimator fully reproducible. Every allocation is counted so
// tests can assert how many driver calls a component issued.
//
// The driver registers itself as "sim":
//
//	import _ "github.com/gogpu/framepace/driver/simdriver"
package simdriver

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/framepace/driver"
)

// DefaultCost is the GPU time reported when Options.Cost is nil.
const DefaultCost = 10 * time.Millisecond

func init() {
	driver.Register(driver.NameSim, func() (driver.Driver, error) {
		return New(Options{}), nil
	})
}

// Options configures a simulated driver.
type Options struct {
	// Latency is the number of TimerQueryValue calls, on any query, that
	// follow an EndTimerQuery before its result becomes available. With one
	// poll per frame this is the GPU latency in frames beyond the first.
	Latency int

	// Cost returns the GPU time of the n-th ended query (starting at 0).
	Cost func(n uint64) time.Duration

	// Stalled makes every query result unavailable, as on a lost device.
	Stalled bool
}

// Stats counts driver calls.
type Stats struct {
	QueriesCreated   int
	QueriesDestroyed int
	QueriesBegun     int
	// QueriesReissued counts BeginTimerQuery calls on a query whose
	// result was never read.
	QueriesReissued int

	TexturesCreated   int
	TexturesSwizzled  int
	TexturesDestroyed int
	LiveTextures      int

	RenderTargetsCreated   int
	RenderTargetsDestroyed int
}

// Texture is the record kept for each live texture.
type Texture struct {
	Desc    driver.TextureDescriptor
	Swizzle driver.SwizzleMapping
}

type queryState uint8

const (
	queryIdle queryState = iota
	queryRunning
	queryWaiting
	queryReady
)

type query struct {
	state   queryState
	elapsed time.Duration
	readyAt uint64
}

// Driver is a simulated driver.Driver. It is safe for concurrent use.
type Driver struct {
	mu sync.Mutex

	opts   Options
	next   uint32
	ended  uint64
	polls  uint64
	closed bool

	queries  map[driver.TimerQueryHandle]*query
	textures map[driver.TextureHandle]Texture
	targets  map[driver.RenderTargetHandle]driver.RenderTargetDescriptor

	stats Stats
}

var _ driver.Driver = (*Driver)(nil)

// New creates a simulated driver.
func New(opts Options) *Driver {
	return &Driver{
		opts:     opts,
		queries:  make(map[driver.TimerQueryHandle]*query),
		textures: make(map[driver.TextureHandle]Texture),
		targets:  make(map[driver.RenderTargetHandle]driver.RenderTargetDescriptor),
	}
}

// SetCost replaces the cost function used for queries ended from now on.
func (d *Driver) SetCost(cost func(n uint64) time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Cost = cost
}

// SetStalled toggles whether query results ever become available.
func (d *Driver) SetStalled(stalled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Stalled = stalled
}

// Stats returns a snapshot of the call counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.stats
	s.LiveTextures = len(d.textures)
	return s
}

// Texture returns the record of a live texture.
func (d *Driver) Texture(h driver.TextureHandle) (Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[h]
	return t, ok
}

func (d *Driver) handle() uint32 {
	d.next++
	return d.next
}

// CreateTimerQuery allocates a timer query.
func (d *Driver) CreateTimerQuery() (driver.TimerQueryHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, driver.ErrClosed
	}
	h := driver.TimerQueryHandle(d.handle())
	d.queries[h] = &query{}
	d.stats.QueriesCreated++
	return h, nil
}

// DestroyTimerQuery releases a timer query.
func (d *Driver) DestroyTimerQuery(h driver.TimerQueryHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mustQuery(h)
	delete(d.queries, h)
	d.stats.QueriesDestroyed++
}

// BeginTimerQuery starts a measurement.
func (d *Driver) BeginTimerQuery(h driver.TimerQueryHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	if q.state == queryRunning || q.state == queryWaiting {
		d.stats.QueriesReissued++
	}
	*q = query{state: queryRunning}
	d.stats.QueriesBegun++
}

// EndTimerQuery ends a measurement; its elapsed time is taken from the
// cost function now.
func (d *Driver) EndTimerQuery(h driver.TimerQueryHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	if q.state != queryRunning {
		return
	}
	cost := DefaultCost
	if d.opts.Cost != nil {
		cost = d.opts.Cost(d.ended)
	}
	d.ended++
	q.state = queryWaiting
	q.elapsed = cost
	q.readyAt = d.polls + uint64(max(d.opts.Latency, 0)) + 1
}

// TimerQueryValue reports the elapsed time once Latency further polls
// have been made.
func (d *Driver) TimerQueryValue(h driver.TimerQueryHandle) (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q := d.mustQuery(h)
	d.polls++
	switch q.state {
	case queryReady:
		return q.elapsed, true
	case queryWaiting:
		if d.opts.Stalled || d.polls < q.readyAt {
			return 0, false
		}
		q.state = queryReady
		return q.elapsed, true
	default:
		return 0, false
	}
}

// CreateTexture allocates a texture.
func (d *Driver) CreateTexture(desc driver.TextureDescriptor) (driver.TextureHandle, error) {
	return d.createTexture(desc, driver.DefaultSwizzle)
}

// CreateTextureSwizzled allocates a texture with a channel mapping.
func (d *Driver) CreateTextureSwizzled(desc driver.TextureDescriptor, swizzle driver.SwizzleMapping) (driver.TextureHandle, error) {
	h, err := d.createTexture(desc, swizzle)
	if err == nil {
		d.mu.Lock()
		d.stats.TexturesSwizzled++
		d.mu.Unlock()
	}
	return h, err
}

func (d *Driver) createTexture(desc driver.TextureDescriptor, swizzle driver.SwizzleMapping) (driver.TextureHandle, error) {
	if err := desc.Validate(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, driver.ErrClosed
	}
	h := driver.TextureHandle(d.handle())
	d.textures[h] = Texture{Desc: desc, Swizzle: swizzle}
	d.stats.TexturesCreated++
	return h, nil
}

// DestroyTexture releases a texture.
func (d *Driver) DestroyTexture(h driver.TextureHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.textures[h]; !ok {
		panic(fmt.Errorf("%w: destroy %v", driver.ErrInvalidHandle, h))
	}
	delete(d.textures, h)
	d.stats.TexturesDestroyed++
}

// CreateRenderTarget records a render target. Every attachment must name a
// live texture.
func (d *Driver) CreateRenderTarget(desc driver.RenderTargetDescriptor) (driver.RenderTargetHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, driver.ErrClosed
	}
	for _, a := range attachments(&desc) {
		if _, ok := d.textures[a.Texture]; !ok {
			return 0, fmt.Errorf("%w: render target %q attaches %v", driver.ErrInvalidHandle, desc.Label, a.Texture)
		}
	}
	h := driver.RenderTargetHandle(d.handle())
	d.targets[h] = desc
	d.stats.RenderTargetsCreated++
	return h, nil
}

// DestroyRenderTarget releases a render target.
func (d *Driver) DestroyRenderTarget(h driver.RenderTargetHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.targets[h]; !ok {
		panic(fmt.Errorf("%w: destroy %v", driver.ErrInvalidHandle, h))
	}
	delete(d.targets, h)
	d.stats.RenderTargetsDestroyed++
}

// Close drops every object. Further create calls fail with driver.ErrClosed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	clear(d.queries)
	clear(d.textures)
	clear(d.targets)
	return nil
}

func (d *Driver) mustQuery(h driver.TimerQueryHandle) *query {
	q, ok := d.queries[h]
	if !ok {
		panic(fmt.Errorf("%w: %v", driver.ErrInvalidHandle, h))
	}
	return q
}

func attachments(desc *driver.RenderTargetDescriptor) []driver.Attachment {
	var out []driver.Attachment
	for _, a := range desc.Color {
		if a.Texture.IsValid() {
			out = append(out, a)
		}
	}
	if desc.Depth.Texture.IsValid() {
		out = append(out, desc.Depth)
	}
	if desc.Stencil.Texture.IsValid() {
		out = append(out, desc.Stencil)
	}
	return out
}
