package resolution

import (
	"math"
	"testing"

	"github.com/gogpu/framepace/frameinfo"
)

func sample(scale float64) frameinfo.FrameInfo {
	return frameinfo.FrameInfo{Valid: true, Scale: scale}
}

func TestControllerHomogeneous(t *testing.T) {
	tests := []struct {
		scale float64
		want  float64
	}{
		{1, 1},
		{4, 1},
		{0.64, 0.8},
		{0.25, 0.5},
		{0.01, 0.5},
	}
	for _, tt := range tests {
		c := New(DefaultOptions())
		got := c.Update(sample(tt.scale))
		if math.Abs(got.X-tt.want) > 1e-12 || got.X != got.Y {
			t.Errorf("Update(%v) = %+v, want %v on both axes", tt.scale, got, tt.want)
		}
	}
}

func TestControllerAnisotropic(t *testing.T) {
	opts := DefaultOptions()
	opts.Homogeneous = false

	tests := []struct {
		scale float64
		want  Scale
	}{
		{0.8, Scale{0.8, 1}},
		{0.3, Scale{0.5, 0.6}},
		{0.1, Scale{0.5, 0.5}},
		{2, Scale{1, 1}},
	}
	for _, tt := range tests {
		c := New(opts)
		got := c.Update(sample(tt.scale))
		if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
			t.Errorf("Update(%v) = %+v, want %+v", tt.scale, got, tt.want)
		}
	}
}

func TestControllerKeepsScaleOnInvalidSample(t *testing.T) {
	c := New(DefaultOptions())
	c.Update(sample(0.25))
	if got := c.Update(frameinfo.FrameInfo{Scale: 4}); got != (Scale{0.5, 0.5}) {
		t.Errorf("invalid sample changed the scale to %+v", got)
	}
	if got := c.Update(sample(math.NaN())); got != (Scale{0.5, 0.5}) {
		t.Errorf("NaN scale changed the scale to %+v", got)
	}
}

func TestControllerDisabled(t *testing.T) {
	c := New(Options{})
	if got := c.Update(sample(0.25)); got != Identity {
		t.Errorf("disabled controller returned %+v, want identity", got)
	}
}

func TestOptionsNormalized(t *testing.T) {
	got := Options{Enabled: true, MinScale: 2, MaxScale: 0.75}.normalized()
	if got.MinScale != 0.75 || got.MaxScale != 2 {
		t.Errorf("normalized() = %+v, want bounds swapped", got)
	}
	got = Options{}.normalized()
	if got.MinScale != 0.5 || got.MaxScale != 1 {
		t.Errorf("normalized() = %+v, want default bounds", got)
	}
}

func TestScaleApply(t *testing.T) {
	tests := []struct {
		s            Scale
		w, h         uint32
		wantW, wantH uint32
	}{
		{Identity, 1920, 1080, 1920, 1080},
		{Scale{0.5, 0.5}, 1920, 1080, 960, 540},
		{Scale{0.75, 1}, 1280, 720, 960, 720},
		{Scale{0.5, 0.5}, 1, 1, 1, 1},
	}
	for _, tt := range tests {
		w, h := tt.s.Apply(tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("%+v.Apply(%d, %d) = %d, %d; want %d, %d", tt.s, tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}
