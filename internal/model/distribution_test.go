package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	p := Softmax([]float32{1, 2, 3, -4})
	var sum float64
	for _, v := range p {
		require.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-12)
	require.Equal(t, 2, Argmax(p))
}

func TestSoftmaxLargeLogitsStayFinite(t *testing.T) {
	p := Softmax([]float32{1000, 1000})
	require.InDelta(t, 0.5, p[0], 1e-12)
	require.False(t, math.IsNaN(p[1]))
}

func TestArgmaxTieGoesToLowestIndex(t *testing.T) {
	require.Equal(t, 1, Argmax([]float64{0.1, 0.45, 0.45}))
	require.Equal(t, 0, Argmax([]float64{0.5, 0.5}))
}

func TestTopOrderingAndClamp(t *testing.T) {
	d := &Distribution{
		Labels: Vocabulary{"a", "b", "c", "d"},
		Probs:  []float64{0.2, 0.3, 0.3, 0.2},
	}
	top := d.Top(3)
	require.Len(t, top, 3)
	require.Equal(t, "b", top[0].Label)
	require.Equal(t, "c", top[1].Label)
	require.Equal(t, "a", top[2].Label)

	require.Len(t, d.Top(10), 4)
	require.Empty(t, d.Top(-1))
}

func TestTopFirstMatchesBest(t *testing.T) {
	d := NewDistribution(Vocabulary{"x", "y", "z"}, []float32{0.5, 2, 2})
	require.Equal(t, d.Best().Label, d.Top(1)[0].Label)
	require.Equal(t, "y", d.Best().Label)
}

func TestPercentRounding(t *testing.T) {
	require.Equal(t, 87.65, Percent(0.876543))
	// Halves round away from zero.
	require.Equal(t, 12.35, Percent(0.12345))
	require.Equal(t, 100.0, Percent(1))
	require.Equal(t, 0.0, Percent(0))
}
