package saliency

import (
	"image"
	"image/color"
	"math"
)

// Jet maps v in [0,1] onto the JET colormap (dark blue through cyan, yellow
// to dark red). The input is quantized to 256 levels first.
func Jet(v float32) color.RGBA {
	q := math.Round(float64(clamp01(v))*255) / 255
	return color.RGBA{
		R: channel(1.5 - math.Abs(4*q-3)),
		G: channel(1.5 - math.Abs(4*q-2)),
		B: channel(1.5 - math.Abs(4*q-1)),
		A: 0xff,
	}
}

// Colorize renders m through Jet.
func Colorize(m *Map) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			img.SetRGBA(x, y, Jet(m.At(x, y)))
		}
	}
	return img
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(math.Round(v * 255))
}

func clamp01(v float32) float32 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
