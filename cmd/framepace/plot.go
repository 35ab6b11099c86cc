package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"strconv"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Plot geometry in output pixels. The chart is drawn at supersample times
// this size and filtered down.
const (
	plotWidth    = 960
	plotHeight   = 480
	supersample  = 2
	marginLeft   = 64
	marginRight  = 56
	marginTop    = 36
	marginBottom = 40
	labelSize    = 11
)

var (
	plotBackground = color.RGBA{R: 0x1c, G: 0x1c, B: 0x22, A: 0xff}
	plotGrid       = color.RGBA{R: 0x3a, G: 0x3a, B: 0x44, A: 0xff}
	plotText       = color.RGBA{R: 0xc8, G: 0xc8, B: 0xd0, A: 0xff}
	plotCost       = color.RGBA{R: 0xff, G: 0x5f, B: 0x87, A: 0xff}
	plotDenoised   = color.RGBA{R: 0x5f, G: 0xd7, B: 0xff, A: 0xff}
	plotTarget     = color.RGBA{R: 0xff, G: 0xd7, B: 0x5f, A: 0xff}
	plotScale      = color.RGBA{R: 0x87, G: 0xd7, B: 0x5f, A: 0xff}
)

var errShortRun = errors.New("plot: need at least two frames")

// writePlot renders samples to a PNG file at path.
func writePlot(path string, samples []sample, target time.Duration) error {
	img, err := renderPlot(samples, target)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("plot: encode %s: %w", path, err)
	}
	return f.Close()
}

// renderPlot draws the GPU cost, the denoised estimate and the frame
// target in milliseconds on the left axis, and the workload scale on the
// right axis.
func renderPlot(samples []sample, target time.Duration) (*image.RGBA, error) {
	if len(samples) < 2 {
		return nil, errShortRun
	}
	face, err := plotFace(labelSize * supersample)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	top := float64(target) * 1.5
	for _, s := range samples {
		top = math.Max(top, float64(s.Cost))
	}
	top = niceCeil(top / float64(time.Millisecond))

	hi := image.NewRGBA(image.Rect(0, 0, plotWidth*supersample, plotHeight*supersample))
	draw.Draw(hi, hi.Bounds(), image.NewUniform(plotBackground), image.Point{}, draw.Src)
	c := &canvas{
		img:  hi,
		face: face,
		area: image.Rect(marginLeft*supersample, marginTop*supersample,
			(plotWidth-marginRight)*supersample, (plotHeight-marginBottom)*supersample),
		n: len(samples),
	}

	const ticks = 4
	for i := 0; i <= ticks; i++ {
		ms := top * float64(i) / ticks
		y := c.y(ms / top)
		c.line(float64(c.area.Min.X), y, float64(c.area.Max.X-1), y, 1, plotGrid)
		c.label(strconv.FormatFloat(ms, 'f', 1, 64)+" ms", c.area.Min.X-6*supersample, y, alignRight, plotText)
		c.label(strconv.FormatFloat(float64(i)/ticks, 'f', 2, 64), c.area.Max.X+6*supersample, y, alignLeft, plotScale)
	}
	for i := 0; i <= ticks; i++ {
		frame := (len(samples) - 1) * i / ticks
		c.label(strconv.Itoa(int(samples[frame].Frame)), int(c.x(frame)), float64(c.area.Max.Y+16*supersample), alignCenter, plotText)
	}

	ty := c.y(float64(target) / float64(time.Millisecond) / top)
	c.line(float64(c.area.Min.X), ty, float64(c.area.Max.X-1), ty, supersample, plotTarget)

	c.series(samples, 2*supersample, plotCost, func(s sample) (float64, bool) {
		return float64(s.Cost) / float64(time.Millisecond) / top, true
	})
	c.series(samples, 2*supersample, plotDenoised, func(s sample) (float64, bool) {
		return float64(s.Info.Denoised) / float64(time.Millisecond) / top, s.Info.Valid
	})
	c.series(samples, 2*supersample, plotScale, func(s sample) (float64, bool) {
		return s.Info.Scale, s.Info.Valid
	})

	lx := c.area.Min.X
	ly := float64(marginTop * supersample / 2)
	for _, l := range []struct {
		name string
		col  color.RGBA
	}{
		{"gpu time", plotCost},
		{"denoised", plotDenoised},
		{"target", plotTarget},
		{"scale", plotScale},
	} {
		lx += c.label(l.name, lx, ly, alignLeft, l.col) + 24*supersample
	}

	out := image.NewRGBA(image.Rect(0, 0, plotWidth, plotHeight))
	xdraw.CatmullRom.Scale(out, out.Bounds(), hi, hi.Bounds(), xdraw.Src, nil)
	return out, nil
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

func plotFace(size float64) (font.Face, error) {
	f, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("plot: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("plot: font face: %w", err)
	}
	return face, nil
}

// niceCeil rounds v up to 1, 2 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	p := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*p {
			return m * p
		}
	}
	return 10 * p
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

type canvas struct {
	img  *image.RGBA
	face font.Face
	area image.Rectangle
	n    int
}

func (c *canvas) x(i int) float64 {
	return float64(c.area.Min.X) + float64(i)*float64(c.area.Dx()-1)/float64(c.n-1)
}

// y maps a value in [0, 1] to a row of the plot area. Values outside are
// clamped to the edges.
func (c *canvas) y(v float64) float64 {
	v = math.Min(math.Max(v, 0), 1)
	return float64(c.area.Max.Y-1) - v*float64(c.area.Dy()-1)
}

// series connects the points for which value reports ok.
func (c *canvas) series(samples []sample, width int, col color.RGBA, value func(sample) (float64, bool)) {
	prev := -1
	var px, py float64
	for i, s := range samples {
		v, ok := value(s)
		if !ok {
			prev = -1
			continue
		}
		x, y := c.x(i), c.y(v)
		if prev >= 0 {
			c.line(px, py, x, y, width, col)
		}
		prev, px, py = i, x, y
	}
}

// line strokes a segment with a square pen of the given width.
func (c *canvas) line(x0, y0, x1, y1 float64, width int, col color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	half := width / 2
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		cx := int(math.Round(x0 + t*(x1-x0)))
		cy := int(math.Round(y0 + t*(y1-y0)))
		r := image.Rect(cx-half, cy-half, cx-half+width, cy-half+width).Intersect(c.img.Bounds())
		draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
	}
}

// label draws s vertically centered on y and returns its advance in
// pixels.
func (c *canvas) label(s string, x int, y float64, a align, col color.RGBA) int {
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: c.face}
	adv := d.MeasureString(s)
	switch a {
	case alignCenter:
		x -= adv.Round() / 2
	case alignRight:
		x -= adv.Round()
	}
	m := c.face.Metrics()
	baseline := fixed.I(int(math.Round(y))) + (m.Ascent-m.Descent)/2
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: baseline}
	d.DrawString(s)
	return adv.Round()
}
