package driver

import (
	"errors"
	"slices"
	"testing"
	"time"
)

type stubDriver struct{ name string }

func (stubDriver) CreateTimerQuery() (TimerQueryHandle, error) {
	return 1, nil
}

func (stubDriver) DestroyTimerQuery(TimerQueryHandle) {}

func (stubDriver) BeginTimerQuery(TimerQueryHandle) {}

func (stubDriver) EndTimerQuery(TimerQueryHandle) {}

func (stubDriver) TimerQueryValue(TimerQueryHandle) (time.Duration, bool) {
	return 0, false
}

func (stubDriver) CreateTexture(TextureDescriptor) (TextureHandle, error) {
	return 1, nil
}

func (stubDriver) CreateTextureSwizzled(TextureDescriptor, SwizzleMapping) (TextureHandle, error) {
	return 1, nil
}

func (stubDriver) DestroyTexture(TextureHandle) {}

func (stubDriver) CreateRenderTarget(RenderTargetDescriptor) (RenderTargetHandle, error) {
	return 1, nil
}

func (stubDriver) DestroyRenderTarget(RenderTargetHandle) {}

func (stubDriver) Close() error { return nil }

func TestRegistryOpen(t *testing.T) {
	Register("stub-a", func() (Driver, error) { return stubDriver{"a"}, nil })
	t.Cleanup(func() { Unregister("stub-a") })

	if !slices.Contains(Available(), "stub-a") {
		t.Fatalf("Available() = %v, want it to contain stub-a", Available())
	}

	d, err := Open("stub-a")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := d.(stubDriver).name; got != "a" {
		t.Errorf("Open() returned driver %q, want a", got)
	}
}

func TestRegistryOpenUnknown(t *testing.T) {
	_, err := Open("does-not-exist")
	if !errors.Is(err, ErrDriverNotFound) {
		t.Errorf("Open() error = %v, want ErrDriverNotFound", err)
	}
}

func TestRegistryOpenFactoryError(t *testing.T) {
	boom := errors.New("boom")
	Register("stub-err", func() (Driver, error) { return nil, boom })
	t.Cleanup(func() { Unregister("stub-err") })

	_, err := Open("stub-err")
	if !errors.Is(err, boom) {
		t.Errorf("Open() error = %v, want wrapped boom", err)
	}
}

func TestRegistryDefaultPriority(t *testing.T) {
	Register(NameSim, func() (Driver, error) { return stubDriver{NameSim}, nil })
	t.Cleanup(func() { Unregister(NameSim) })

	d, name, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error = %v", err)
	}
	if name != NameSim {
		t.Errorf("OpenDefault() name = %q, want %q", name, NameSim)
	}

	Register(NameHAL, func() (Driver, error) { return stubDriver{NameHAL}, nil })
	t.Cleanup(func() { Unregister(NameHAL) })

	d, name, err = OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error = %v", err)
	}
	if name != NameHAL || d.(stubDriver).name != NameHAL {
		t.Errorf("OpenDefault() = %q, want the hal driver to win", name)
	}
}

func TestRegistryDefaultFallback(t *testing.T) {
	boom := errors.New("no adapter")
	Register(NameHAL, func() (Driver, error) { return nil, boom })
	Register(NameSim, func() (Driver, error) { return stubDriver{NameSim}, nil })
	t.Cleanup(func() {
		Unregister(NameHAL)
		Unregister(NameSim)
	})

	_, name, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error = %v", err)
	}
	if name != NameSim {
		t.Errorf("OpenDefault() name = %q, want fallback to %q", name, NameSim)
	}

	Unregister(NameSim)
	if _, _, err := OpenDefault(); !errors.Is(err, boom) {
		t.Errorf("OpenDefault() error = %v, want the hal error", err)
	}
}
