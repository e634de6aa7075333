package model

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func patterned() *Tensor {
	in := NewTensor(3, 224, 224)
	for i := range in.Data {
		in.Data[i] = float32(i%17)/8 - 1
	}
	return in
}

func TestDemoNetworkDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewDemoNetwork(7, 4).Forward(ctx, patterned())
	require.NoError(t, err)
	b, err := NewDemoNetwork(7, 4).Forward(ctx, patterned())
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 4)

	c, err := NewDemoNetwork(8, 4).Forward(ctx, patterned())
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestConvNetFeatureShape(t *testing.T) {
	n := NewConvNet(rand.New(rand.NewSource(1)), DefaultWidths)
	act, err := n.Features(context.Background(), patterned())
	require.NoError(t, err)
	require.Equal(t, 32, act.C)
	require.Equal(t, 14, act.H)
	require.Equal(t, 14, act.W)
	require.True(t, n.Concurrent())
}

func TestConvNetRejectsWrongChannels(t *testing.T) {
	n := NewConvNet(rand.New(rand.NewSource(1)), DefaultWidths)
	_, err := n.Features(context.Background(), NewTensor(1, 8, 8))
	require.Error(t, err)
}

func TestConvNetHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDemoNetwork(1, 2).Forward(ctx, patterned())
	require.ErrorIs(t, err, context.Canceled)
}

func TestHeadGradientMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	h := RandomLinearHead(rng, 2, 3)
	act := NewTensor(2, 2, 2)
	for i := range act.Data {
		act.Data[i] = rng.Float32()
	}
	grad, err := h.Gradient(act, 1)
	require.NoError(t, err)

	base, err := h.Scores(act)
	require.NoError(t, err)
	const eps = 1e-2
	for i := range act.Data {
		bumped := act.Clone()
		bumped.Data[i] += eps
		s, err := h.Scores(bumped)
		require.NoError(t, err)
		require.InDelta(t, grad.Data[i], (s[1]-base[1])/eps, 1e-3)
	}

	_, err = h.Gradient(act, 3)
	require.Error(t, err)
}

func TestHeadedNetworkChecksChannels(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := NewHeadedNetwork(NewConvNet(rng, DefaultWidths), RandomLinearHead(rng, 16, 2))
	require.Error(t, err)
}

func TestNewLinearHeadValidation(t *testing.T) {
	_, err := NewLinearHead(2, 2, []float32{1, 2, 3}, nil)
	require.Error(t, err)
	h, err := NewLinearHead(2, 2, []float32{1, 0, 0, 1}, nil)
	require.NoError(t, err)
	require.Equal(t, []float32{0, 0}, h.Bias)
}
