package driver

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
)

// Driver names used by the bundled implementations.
const (
	NameHAL = "hal"
	NameSim = "sim"
)

// Factory opens a driver.
type Factory func() (Driver, error)

// Priority order for OpenDefault: a real device first, the simulator last.
var drivers = gpucontext.NewRegistry[Factory](gpucontext.WithPriority(NameHAL, NameSim))

// Register registers a driver factory with the given name.
// This is typically called from init() functions in driver packages.
// If a driver with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	drivers.Register(name, func() Factory { return factory })
}

// Unregister removes a driver from the registry.
// This is useful for testing.
func Unregister(name string) {
	drivers.Unregister(name)
}

// Available returns the registered driver names in sorted order.
func Available() []string {
	names := drivers.Available()
	slices.Sort(names)
	return names
}

// Open opens the driver registered under name.
func Open(name string) (Driver, error) {
	factory := drivers.Get(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrDriverNotFound, name)
	}
	d, err := factory()
	if err != nil {
		return nil, fmt.Errorf("driver: open %q: %w", name, err)
	}
	return d, nil
}

// OpenDefault opens the highest priority registered driver that opens
// successfully and returns its name along with it. A driver whose factory
// fails is skipped in favor of the next one; the joined errors are returned
// when none opens.
func OpenDefault() (Driver, string, error) {
	names := defaultOrder()
	if len(names) == 0 {
		return nil, "", ErrNoDriver
	}
	var errs []error
	for _, name := range names {
		d, err := Open(name)
		if err == nil {
			return d, name, nil
		}
		errs = append(errs, err)
	}
	return nil, "", errors.Join(errs...)
}

// defaultOrder lists the registered drivers by priority: the best one, then
// the bundled drivers, then the rest in name order.
func defaultOrder() []string {
	var names []string
	if best := drivers.BestName(); best != "" {
		names = append(names, best)
	}
	for _, name := range append([]string{NameHAL, NameSim}, Available()...) {
		if drivers.Has(name) && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}
