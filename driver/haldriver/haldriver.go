// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package haldriver

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/framepace/driver"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Errors returned when opening a device.
var (
	// ErrNoBackend is returned when no hal backend is registered.
	ErrNoBackend = errors.New("haldriver: no hal backend registered")

	// ErrNoAdapter is returned when a backend exposes no adapter.
	ErrNoAdapter = errors.New("haldriver: no GPU adapter found")

	// ErrNotHAL is returned by FromProvider for providers that do not
	// expose hal objects.
	ErrNotHAL = errors.New("haldriver: provider does not expose a hal device")
)

// backendOrder is the preference order of OpenDefault.
var backendOrder = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
	gputypes.BackendEmpty,
}

func init() {
	driver.Register(driver.NameHAL, func() (driver.Driver, error) {
		d, err := OpenDefault()
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Driver implements driver.Driver on a hal device.
type Driver struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	info   gputypes.AdapterInfo

	// release destroys the device and instance when the Driver opened them.
	release func()

	timestamps bool
	period     float64 // nanoseconds per timestamp tick
	now        func() time.Time

	next     uint32
	queries  map[driver.TimerQueryHandle]*timerQuery
	textures map[driver.TextureHandle]*texture
	targets  map[driver.RenderTargetHandle]*renderTarget
	inflight []submission
	closed   bool
}

var (
	_ driver.Driver             = (*Driver)(nil)
	_ driver.TimerQueryFailures = (*Driver)(nil)
)

// New wraps an open hal device. The caller keeps ownership of device and
// queue: Close releases the objects created through the Driver only.
//
// GPU timestamps are used when the device supports them; the first failed
// query set allocation switches the Driver to CPU submission timing.
func New(device hal.Device, queue hal.Queue) (*Driver, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", ErrNotHAL)
	}
	return newDriver(device, queue, gputypes.AdapterInfo{}, true, nil), nil
}

func newDriver(device hal.Device, queue hal.Queue, info gputypes.AdapterInfo, timestamps bool, release func()) *Driver {
	return &Driver{
		device:     device,
		queue:      queue,
		info:       info,
		release:    release,
		timestamps: timestamps,
		period:     float64(queue.GetTimestampPeriod()),
		now:        time.Now,
		queries:    make(map[driver.TimerQueryHandle]*timerQuery),
		textures:   make(map[driver.TextureHandle]*texture),
		targets:    make(map[driver.RenderTargetHandle]*renderTarget),
	}
}

// halProvider is implemented by providers that hand out hal objects
// directly. gpucontext.DeviceProvider returns opaque tokens, so this is
// checked first.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// FromProvider wraps the device of an application that already owns one.
// The provider keeps ownership of the device.
func FromProvider(p gpucontext.DeviceProvider) (*Driver, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrNotHAL)
	}
	var dev, q any
	if hp, ok := p.(halProvider); ok {
		dev, q = hp.HalDevice(), hp.HalQueue()
	} else {
		dev, q = p.Device(), p.Queue()
	}
	device, ok := dev.(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: device is %T", ErrNotHAL, dev)
	}
	queue, ok := q.(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: queue is %T", ErrNotHAL, q)
	}
	d, err := New(device, queue)
	if err != nil {
		return nil, err
	}
	info := p.AdapterInfo()
	d.info = gputypes.AdapterInfo{Name: info.Name, DeviceType: deviceType(info.Type)}
	return d, nil
}

func deviceType(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// Open creates an instance of the given hal backend and opens a device on
// its best adapter: a discrete GPU, then an integrated one, then whatever
// comes first. Close destroys the device and instance.
func Open(variant gputypes.Backend) (*Driver, error) {
	backend, ok := hal.GetBackend(variant)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoBackend, variant)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("haldriver: create %v instance: %w", variant, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: backend %v", ErrNoAdapter, variant)
	}
	exposed := pickAdapter(adapters)

	features := gputypes.Features(0)
	timestamps := exposed.Features.Contains(gputypes.FeatureTimestampQuery)
	if timestamps {
		features.Insert(gputypes.FeatureTimestampQuery)
	}
	od, err := exposed.Adapter.Open(features, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("haldriver: open %q: %w", exposed.Info.Name, err)
	}

	slogger().Info("haldriver: device opened",
		"backend", variant,
		"adapter", exposed.Info.Name,
		"type", exposed.Info.DeviceType,
		"timestamps", timestamps)

	release := func() {
		od.Device.Destroy()
		instance.Destroy()
	}
	return newDriver(od.Device, od.Queue, exposed.Info, timestamps, release), nil
}

func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for _, want := range []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU} {
		for i := range adapters {
			if adapters[i].Info.DeviceType == want {
				return &adapters[i]
			}
		}
	}
	return &adapters[0]
}

// OpenDefault opens the first registered hal backend in the order Vulkan,
// Metal, DX12, GL, noop.
func OpenDefault() (*Driver, error) {
	registered := hal.AvailableBackends()
	var errs []error
	for _, variant := range backendOrder {
		if !slices.Contains(registered, variant) {
			continue
		}
		d, err := Open(variant)
		if err == nil {
			return d, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoBackend
	}
	return nil, errors.Join(errs...)
}

// AdapterInfo describes the adapter the Driver runs on. It is zero for
// drivers created by New.
func (d *Driver) AdapterInfo() gputypes.AdapterInfo {
	return d.info
}

// GPUTimestamps reports whether timer queries use GPU timestamps rather
// than CPU submission timing.
func (d *Driver) GPUTimestamps() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timestamps
}

func (d *Driver) handle() uint32 {
	d.next++
	return d.next
}

// Close waits for the device to go idle and destroys every object created
// through the Driver. It also destroys the device when the Driver opened
// it. Calling Close again is a no-op.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if werr := d.device.WaitIdle(); werr != nil {
		err = fmt.Errorf("haldriver: wait idle: %w", werr)
	}
	d.reclaim(true)

	for _, rt := range d.targets {
		d.destroyViews(rt.views)
	}
	for _, t := range d.textures {
		d.device.DestroyTexture(t.tex)
	}
	for _, q := range d.queries {
		d.destroyQuery(q)
	}
	clear(d.targets)
	clear(d.textures)
	clear(d.queries)

	if d.release != nil {
		d.release()
		d.release = nil
	}
	return err
}
