package model

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// DefaultWidths are the output channels of the native backbone's blocks. Each
// block is a 3×3 stride-2 convolution with ReLU, so a 224×224 input ends in a
// 32×14×14 feature map.
var DefaultWidths = []int{8, 16, 32, 32}

type convLayer struct {
	in, out, k, stride, pad int
	w                       []float32 // out×in×k×k
	b                       []float32
}

func (l *convLayer) outSize(n int) int { return (n+2*l.pad-l.k)/l.stride + 1 }

// forward computes conv + ReLU. Accumulation order is fixed so results are
// bit-for-bit reproducible.
func (l *convLayer) forward(x *Tensor) *Tensor {
	oh, ow := l.outSize(x.H), l.outSize(x.W)
	y := NewTensor(l.out, oh, ow)
	kk := l.k * l.k
	for o := 0; o < l.out; o++ {
		dst := y.Plane(o)
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				s := l.b[o]
				for c := 0; c < l.in; c++ {
					src := x.Plane(c)
					wb := (o*l.in + c) * kk
					for ky := 0; ky < l.k; ky++ {
						iy := oy*l.stride + ky - l.pad
						if iy < 0 || iy >= x.H {
							continue
						}
						row := src[iy*x.W:]
						for kx := 0; kx < l.k; kx++ {
							ix := ox*l.stride + kx - l.pad
							if ix < 0 || ix >= x.W {
								continue
							}
							s += l.w[wb+ky*l.k+kx] * row[ix]
						}
					}
				}
				if s < 0 {
					s = 0
				}
				dst[oy*ow+ox] = s
			}
		}
	}
	return y
}

// ConvNet is a small pure-Go convolutional backbone. Its weights are drawn
// from a seeded source, which makes an untrained instance deterministic.
type ConvNet struct {
	layers []convLayer
}

// NewConvNet builds a backbone with He-normal weights drawn from rng.
func NewConvNet(rng *rand.Rand, widths []int) *ConvNet {
	n := &ConvNet{}
	in := 3
	for _, out := range widths {
		l := convLayer{in: in, out: out, k: 3, stride: 2, pad: 1}
		std := math.Sqrt(2 / float64(in*l.k*l.k))
		l.w = make([]float32, out*in*l.k*l.k)
		for i := range l.w {
			l.w[i] = float32(rng.NormFloat64() * std)
		}
		l.b = make([]float32, out)
		n.layers = append(n.layers, l)
		in = out
	}
	return n
}

// Features runs every block; the last block's output is the feature map.
func (n *ConvNet) Features(ctx context.Context, in *Tensor) (*Tensor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(n.layers) == 0 {
		return nil, fmt.Errorf("backbone has no layers")
	}
	if in.C != n.layers[0].in {
		return nil, fmt.Errorf("input has %d channels, backbone expects %d", in.C, n.layers[0].in)
	}
	x := in
	for i := range n.layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x = n.layers[i].forward(x)
	}
	return x, nil
}

func (n *ConvNet) Channels() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[len(n.layers)-1].out
}

// Concurrent is true: Features only reads the weights.
func (n *ConvNet) Concurrent() bool { return true }

func (n *ConvNet) Close() error { return nil }

// NewDemoNetwork returns an untrained backbone+head for classes outputs. The
// same seed always yields the same weights.
func NewDemoNetwork(seed int64, classes int) *HeadedNetwork {
	rng := rand.New(rand.NewSource(seed))
	b := NewConvNet(rng, DefaultWidths)
	return &HeadedNetwork{Backbone: b, Head: RandomLinearHead(rng, b.Channels(), classes)}
}
