package model

import (
	"fmt"
	"math"
	"math/rand"
)

// LinearHead is global average pooling followed by a fully connected layer.
// Weight is row-major Out×In.
type LinearHead struct {
	In, Out int
	Weight  []float32
	Bias    []float32
}

// NewLinearHead validates the weight and bias sizes.
func NewLinearHead(in, out int, weight, bias []float32) (*LinearHead, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("invalid head shape %dx%d", out, in)
	}
	if len(weight) != in*out {
		return nil, fmt.Errorf("head weight has %d values, want %d", len(weight), in*out)
	}
	if bias == nil {
		bias = make([]float32, out)
	}
	if len(bias) != out {
		return nil, fmt.Errorf("head bias has %d values, want %d", len(bias), out)
	}
	return &LinearHead{In: in, Out: out, Weight: weight, Bias: bias}, nil
}

// RandomLinearHead draws an untrained head from rng (N(0, 1/in)).
func RandomLinearHead(rng *rand.Rand, in, out int) *LinearHead {
	std := 1 / math.Sqrt(float64(in))
	w := make([]float32, in*out)
	for i := range w {
		w[i] = float32(rng.NormFloat64() * std)
	}
	return &LinearHead{In: in, Out: out, Weight: w, Bias: make([]float32, out)}
}

// Pool averages each channel of act over its spatial extent.
func (h *LinearHead) Pool(act *Tensor) []float64 {
	pooled := make([]float64, act.C)
	n := float64(act.H * act.W)
	for c := 0; c < act.C; c++ {
		var sum float64
		for _, v := range act.Plane(c) {
			sum += float64(v)
		}
		pooled[c] = sum / n
	}
	return pooled
}

// Scores returns the pre-softmax class scores for a feature map.
func (h *LinearHead) Scores(act *Tensor) ([]float32, error) {
	if act.C != h.In {
		return nil, fmt.Errorf("feature map has %d channels, head expects %d", act.C, h.In)
	}
	pooled := h.Pool(act)
	out := make([]float32, h.Out)
	for o := 0; o < h.Out; o++ {
		row := h.Weight[o*h.In : (o+1)*h.In]
		s := float64(h.Bias[o])
		for c, p := range pooled {
			s += float64(row[c]) * p
		}
		out[o] = float32(s)
	}
	return out, nil
}

// Gradient returns d(score[class])/d(act). For average pooling followed by
// a linear layer every spatial position of channel k receives W[class,k]/(h*w).
func (h *LinearHead) Gradient(act *Tensor, class int) (*Tensor, error) {
	if act.C != h.In {
		return nil, fmt.Errorf("feature map has %d channels, head expects %d", act.C, h.In)
	}
	if class < 0 || class >= h.Out {
		return nil, fmt.Errorf("class %d out of range [0,%d)", class, h.Out)
	}
	grad := NewTensor(act.C, act.H, act.W)
	n := float32(act.H * act.W)
	row := h.Weight[class*h.In : (class+1)*h.In]
	for c := 0; c < act.C; c++ {
		g := row[c] / n
		plane := grad.Plane(c)
		for i := range plane {
			plane[i] = g
		}
	}
	return grad, nil
}
