package model

import (
	"math"
	"sort"
)

// Distribution is a softmax readout over a vocabulary.
type Distribution struct {
	Labels Vocabulary
	Logits []float32
	Probs  []float64
}

// Ranked is one entry of a distribution.
type Ranked struct {
	Index       int
	Label       string
	Probability float64
}

// Confidence is the probability as a percentage rounded to 2 decimals.
func (r Ranked) Confidence() float64 { return Percent(r.Probability) }

// NewDistribution applies softmax to logits.
func NewDistribution(labels Vocabulary, logits []float32) *Distribution {
	return &Distribution{Labels: labels, Logits: logits, Probs: Softmax(logits)}
}

// Softmax is computed in float64 after subtracting the max logit.
func Softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	max := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > max {
			max = float64(v)
		}
	}
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v) - max)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the index of the largest value; ties go to the lowest index.
func Argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}

// Best is the stable-argmax entry.
func (d *Distribution) Best() Ranked {
	i := Argmax(d.Probs)
	return Ranked{Index: i, Label: d.Labels.Label(i), Probability: d.Probs[i]}
}

// Top returns the min(k, len) most probable entries, descending. Entries with
// equal probability keep vocabulary order.
func (d *Distribution) Top(k int) []Ranked {
	all := make([]Ranked, len(d.Probs))
	for i, p := range d.Probs {
		all[i] = Ranked{Index: i, Label: d.Labels.Label(i), Probability: p}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Probability > all[b].Probability })
	if k < 0 {
		k = 0
	}
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}

// Percent converts a probability to a percentage rounded to 2 decimals.
func Percent(p float64) float64 { return math.Round(p*10000) / 100 }
