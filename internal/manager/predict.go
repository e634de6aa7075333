package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"breedd/internal/model"
	"breedd/internal/registry"
)

// Predict runs Stage 1, routes to the Stage-2 classifier of the winning
// animal type and assembles the result. Errors are never partial: either
// both stages succeed or the request fails.
func (m *Manager) Predict(ctx context.Context, in *model.Tensor) (*Prediction, error) {
	return m.PredictTopK(ctx, in, m.topK)
}

// PredictTopK is Predict with an explicit ranking length.
func (m *Manager) PredictTopK(ctx context.Context, in *model.Tensor, k int) (*Prediction, error) {
	start := time.Now()
	m.publish(StateReceived, "", nil)
	pred, err := m.predict(ctx, in, k, start, "")
	if err != nil {
		return nil, err
	}
	m.publish(StateDone, pred.Classifier.Name, nil)
	return pred, nil
}

func (m *Manager) predict(ctx context.Context, in *model.Tensor, k int, start time.Time, id string) (pred *Prediction, err error) {
	fields := func(kv ...any) map[string]any {
		f := map[string]any{}
		if id != "" {
			f["prediction_id"] = id
		}
		for i := 0; i+1 < len(kv); i += 2 {
			f[kv[i].(string)] = kv[i+1]
		}
		return f
	}
	defer func() {
		if err != nil {
			failuresTotal.WithLabelValues(failureReason(err)).Inc()
			m.publish(StateFailed, "", fields("error", err.Error()))
		}
	}()
	if k <= 0 {
		k = m.topK
	}

	set, err := m.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, model.ErrInference(set.Stage1.Name, err)
	}
	m.publish(StatePreprocessed, "", fields())

	d1, err := m.evaluate(ctx, set.Stage1, in, "stage1")
	if err != nil {
		return nil, err
	}
	animal := d1.Best()
	m.publish(StateStage1Evaluated, set.Stage1.Name, fields("animal_type", animal.Label))

	c2, err := selectStage2(set, animal.Label)
	if err != nil {
		return nil, err
	}
	m.publish(StateStage2Selected, c2.Name, fields())

	d2, err := m.evaluate(ctx, c2, in, "stage2")
	if err != nil {
		return nil, err
	}
	m.publish(StateStage2Evaluated, c2.Name, fields())

	top := d2.Top(k)
	pred = &Prediction{
		AnimalType:           animal.Label,
		AnimalTypeConfidence: animal.Confidence(),
		Breed:                top[0].Label,
		BreedConfidence:      top[0].Confidence(),
		TopK:                 make([]Candidate, len(top)),
		ModelLoaded:          set.ModelLoaded(),
		Classifier:           c2,
	}
	for i, r := range top {
		pred.TopK[i] = Candidate{Label: r.Label, Confidence: r.Confidence()}
	}
	pred.ProcessingTime = time.Since(start)
	m.publish(StateResultAssembled, c2.Name, fields("breed", pred.Breed, "processing_ms", float64(pred.ProcessingTime.Microseconds())/1000))

	m.predictions.Add(1)
	predictionsTotal.WithLabelValues(pred.AnimalType, pred.Breed).Inc()
	processingSeconds.Observe(pred.ProcessingTime.Seconds())
	return pred, nil
}

// selectStage2 depends only on the Stage-1 label.
func selectStage2(set *registry.Set, animalType string) (*model.Classifier, error) {
	c, ok := set.Stage2For(animalType)
	if !ok {
		return nil, model.ErrInference(set.Stage1.Name, fmt.Errorf("no breed classifier for animal type %q", animalType))
	}
	return c, nil
}

func (m *Manager) evaluate(ctx context.Context, c *model.Classifier, in *model.Tensor, stage string) (*model.Distribution, error) {
	release, err := m.beginEvaluation(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	defer release()
	start := time.Now()
	d, err := c.Evaluate(ctx, in)
	stageSeconds.WithLabelValues(stage, c.Name).Observe(time.Since(start).Seconds())
	return d, err
}

func failureReason(err error) string {
	switch {
	case IsTooBusy(err):
		return "too_busy"
	case IsNotReady(err):
		return "not_ready"
	case model.IsInference(err):
		return "inference"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
