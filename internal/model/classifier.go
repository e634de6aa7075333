package model

import (
	"context"
	"fmt"
	"math"
)

// ClassifierSpec describes a classifier to construct.
type ClassifierSpec struct {
	Name       string
	Vocabulary Vocabulary
	Network    Network
	Status     LoadStatus
	// Source is the weights path, or a short description for untrained networks.
	Source string
	// Err is the load error that forced a fallback, when Status is StatusFailed.
	Err error
}

// Classifier is a loaded, ready-to-evaluate network bound to a vocabulary.
// It is created once by the registry and never mutated afterwards.
type Classifier struct {
	Name       string
	Vocabulary Vocabulary
	Status     LoadStatus
	Source     string
	Err        error

	net Network
}

// NewClassifier enforces that the vocabulary length equals the network's
// output width; without that the output indices are meaningless.
func NewClassifier(spec ClassifierSpec) (*Classifier, error) {
	if err := spec.Vocabulary.Validate(); err != nil {
		return nil, fmt.Errorf("classifier %s: %w", spec.Name, err)
	}
	if spec.Network == nil {
		return nil, fmt.Errorf("classifier %s: nil network", spec.Name)
	}
	if w := spec.Network.OutputWidth(); w != len(spec.Vocabulary) {
		return nil, fmt.Errorf("classifier %s: network has %d outputs but vocabulary has %d labels", spec.Name, w, len(spec.Vocabulary))
	}
	return &Classifier{
		Name:       spec.Name,
		Vocabulary: spec.Vocabulary.Clone(),
		Status:     spec.Status,
		Source:     spec.Source,
		Err:        spec.Err,
		net:        spec.Network,
	}, nil
}

// Network exposes the underlying network.
func (c *Classifier) Network() Network { return c.net }

// Saliency returns the network's saliency capability, if it has one.
func (c *Classifier) Saliency() (SupportsSaliency, bool) {
	s, ok := c.net.(SupportsSaliency)
	return s, ok
}

// Concurrent reports whether the classifier tolerates parallel evaluation.
func (c *Classifier) Concurrent() bool { return c.net.Concurrent() }

// Loaded is true only for task-specific weights.
func (c *Classifier) Loaded() bool { return c.Status == StatusLoaded }

// Close releases runtime resources held by the network.
func (c *Classifier) Close() error { return c.net.Close() }

// Evaluate runs a forward pass and returns the softmax distribution over the
// vocabulary. Context cancellation is returned as-is; every other failure is
// an InferenceError.
func (c *Classifier) Evaluate(ctx context.Context, in *Tensor) (*Distribution, error) {
	if err := in.Validate(); err != nil {
		return nil, ErrInference(c.Name, err)
	}
	logits, err := c.net.Forward(ctx, in)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ErrInference(c.Name, err)
	}
	if len(logits) != len(c.Vocabulary) {
		return nil, ErrInference(c.Name, fmt.Errorf("network returned %d scores for %d labels", len(logits), len(c.Vocabulary)))
	}
	for i, v := range logits {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, ErrInference(c.Name, fmt.Errorf("non-finite score at index %d", i))
		}
	}
	return NewDistribution(c.Vocabulary, logits), nil
}
