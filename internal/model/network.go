package model

import (
	"context"
	"fmt"
)

// Network maps an input tensor to pre-softmax class scores.
type Network interface {
	Forward(ctx context.Context, in *Tensor) ([]float32, error)
	// OutputWidth is the number of class scores Forward returns.
	OutputWidth() int
	// Concurrent reports whether Forward may run on several goroutines at once.
	Concurrent() bool
	Close() error
}

// SupportsSaliency is implemented by networks whose last convolutional block
// is addressable, which is what gradient-based localization needs.
type SupportsSaliency interface {
	Network
	// Activations runs the forward pass up to and including the last
	// convolutional block and returns its output (C×h×w).
	Activations(ctx context.Context, in *Tensor) (*Tensor, error)
	// ScoreGradient returns d(score[class])/d(activations), same shape as act.
	ScoreGradient(act *Tensor, class int) (*Tensor, error)
}

// Backbone produces the feature map of the last convolutional block.
type Backbone interface {
	Features(ctx context.Context, in *Tensor) (*Tensor, error)
	Channels() int
	Concurrent() bool
	Close() error
}

// HeadedNetwork is a convolutional backbone followed by global average
// pooling and a linear classifier.
type HeadedNetwork struct {
	Backbone Backbone
	Head     *LinearHead
}

// NewHeadedNetwork checks that the head consumes what the backbone produces.
func NewHeadedNetwork(b Backbone, h *LinearHead) (*HeadedNetwork, error) {
	if b == nil || h == nil {
		return nil, fmt.Errorf("backbone and head are required")
	}
	if b.Channels() > 0 && b.Channels() != h.In {
		return nil, fmt.Errorf("head expects %d channels, backbone produces %d", h.In, b.Channels())
	}
	return &HeadedNetwork{Backbone: b, Head: h}, nil
}

func (n *HeadedNetwork) Forward(ctx context.Context, in *Tensor) ([]float32, error) {
	act, err := n.Backbone.Features(ctx, in)
	if err != nil {
		return nil, err
	}
	return n.Head.Scores(act)
}

func (n *HeadedNetwork) OutputWidth() int { return n.Head.Out }

func (n *HeadedNetwork) Concurrent() bool { return n.Backbone.Concurrent() }

func (n *HeadedNetwork) Close() error { return n.Backbone.Close() }

func (n *HeadedNetwork) Activations(ctx context.Context, in *Tensor) (*Tensor, error) {
	return n.Backbone.Features(ctx, in)
}

func (n *HeadedNetwork) ScoreGradient(act *Tensor, class int) (*Tensor, error) {
	return n.Head.Gradient(act, class)
}
