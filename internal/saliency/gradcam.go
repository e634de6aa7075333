// Package saliency explains classifier decisions with Grad-CAM heatmaps
// computed on the last convolutional block.
package saliency

import (
	"context"
	"fmt"

	"breedd/internal/model"
)

// Map is a single-channel saliency map, row-major.
type Map struct {
	W, H int
	Data []float32
}

func (m *Map) At(x, y int) float32 { return m.Data[y*m.W+x] }

// GradCAM weights each activation channel by the spatial mean of its
// gradient, sums, rectifies and normalizes the result to [0,1].
func GradCAM(act, grad *model.Tensor) (*Map, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}
	if err := grad.Validate(); err != nil {
		return nil, err
	}
	if act.C != grad.C || act.H != grad.H || act.W != grad.W {
		return nil, fmt.Errorf("gradient shape %dx%dx%d does not match activations %dx%dx%d",
			grad.C, grad.H, grad.W, act.C, act.H, act.W)
	}
	n := act.H * act.W
	cam := make([]float64, n)
	for c := 0; c < act.C; c++ {
		var w float64
		for _, g := range grad.Plane(c) {
			w += float64(g)
		}
		w /= float64(n)
		if w == 0 {
			continue
		}
		for i, a := range act.Plane(c) {
			cam[i] += w * float64(a)
		}
	}
	m := &Map{W: act.W, H: act.H, Data: make([]float32, n)}
	for i, v := range cam {
		if v > 0 {
			m.Data[i] = float32(v)
		}
	}
	m.Normalize()
	return m, nil
}

// Compute runs the forward pass to the last convolutional block and builds
// the Grad-CAM map for class.
func Compute(ctx context.Context, net model.SupportsSaliency, in *model.Tensor, class int) (*Map, error) {
	act, err := net.Activations(ctx, in)
	if err != nil {
		return nil, err
	}
	grad, err := net.ScoreGradient(act, class)
	if err != nil {
		return nil, err
	}
	return GradCAM(act, grad)
}

// Normalize shifts the minimum to zero and divides by the shifted maximum
// (plus a small epsilon, so an all-zero map stays zero).
func (m *Map) Normalize() {
	if len(m.Data) == 0 {
		return
	}
	lo := m.Data[0]
	for _, v := range m.Data {
		if v < lo {
			lo = v
		}
	}
	var hi float32
	for i, v := range m.Data {
		m.Data[i] = v - lo
		if m.Data[i] > hi {
			hi = m.Data[i]
		}
	}
	for i := range m.Data {
		m.Data[i] /= hi + 1e-7
	}
}

// Upsample resizes the map with bilinear interpolation using pixel-center
// alignment.
func (m *Map) Upsample(w, h int) *Map {
	out := &Map{W: w, H: h, Data: make([]float32, w*h)}
	sx := float64(m.W) / float64(w)
	sy := float64(m.H) / float64(h)
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0, y1, ty := neighbours(fy, m.H)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0, x1, tx := neighbours(fx, m.W)
			top := float64(m.At(x0, y0))*(1-tx) + float64(m.At(x1, y0))*tx
			bot := float64(m.At(x0, y1))*(1-tx) + float64(m.At(x1, y1))*tx
			out.Data[y*w+x] = float32(top*(1-ty) + bot*ty)
		}
	}
	return out
}

func neighbours(f float64, n int) (int, int, float64) {
	if f <= 0 {
		return 0, 0, 0
	}
	i := int(f)
	if i >= n-1 {
		return n - 1, n - 1, 0
	}
	return i, i + 1, f - float64(i)
}
