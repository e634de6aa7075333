package model

import "fmt"

// Tensor is a dense float32 array with a single batch element, stored in
// planar CHW order (channel-major, then rows, then columns).
type Tensor struct {
	C, H, W int
	Data    []float32
}

// NewTensor allocates a zeroed tensor of shape c×h×w.
func NewTensor(c, h, w int) *Tensor {
	return &Tensor{C: c, H: h, W: w, Data: make([]float32, c*h*w)}
}

// Len is the number of elements.
func (t *Tensor) Len() int { return t.C * t.H * t.W }

// At returns the element at channel c, row y, column x.
func (t *Tensor) At(c, y, x int) float32 { return t.Data[(c*t.H+y)*t.W+x] }

// Set stores v at channel c, row y, column x.
func (t *Tensor) Set(c, y, x int, v float32) { t.Data[(c*t.H+y)*t.W+x] = v }

// Plane returns the backing slice of one channel.
func (t *Tensor) Plane(c int) []float32 {
	n := t.H * t.W
	return t.Data[c*n : (c+1)*n]
}

// Shape returns the NCHW shape with a leading batch dimension of one.
func (t *Tensor) Shape() []int64 { return []int64{1, int64(t.C), int64(t.H), int64(t.W)} }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := &Tensor{C: t.C, H: t.H, W: t.W, Data: make([]float32, len(t.Data))}
	copy(out.Data, t.Data)
	return out
}

// Validate checks that the backing slice matches the declared shape.
func (t *Tensor) Validate() error {
	if t == nil {
		return fmt.Errorf("nil tensor")
	}
	if t.C <= 0 || t.H <= 0 || t.W <= 0 {
		return fmt.Errorf("invalid tensor shape %dx%dx%d", t.C, t.H, t.W)
	}
	if len(t.Data) != t.Len() {
		return fmt.Errorf("tensor data length %d does not match shape %dx%dx%d", len(t.Data), t.C, t.H, t.W)
	}
	return nil
}
