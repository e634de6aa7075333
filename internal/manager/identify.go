package manager

import (
	"context"
	"encoding/hex"
	"image"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"breedd/internal/model"
	"breedd/internal/preprocess"
	"breedd/internal/saliency"
)

// IdentifyOptions tune a single identification.
type IdentifyOptions struct {
	// Heatmap requests a Grad-CAM overlay for the predicted breed.
	Heatmap bool
	// Opacity overrides the engine's heatmap opacity when set.
	Opacity *float64
	// TopK overrides the configured ranking length when positive.
	TopK int
}

// Identification is the outcome of Identify.
type Identification struct {
	ID         string
	ImageHash  string
	Format     string
	Prediction *Prediction
	// Heatmap is nil when not requested or when it could not be produced.
	Heatmap *saliency.Overlay
}

// ImageHash is the hex blake3 digest of raw upload bytes.
func ImageHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Identify decodes data, preprocesses it, runs both stages and optionally
// explains the breed decision.
func (m *Manager) Identify(ctx context.Context, data []byte, opts IdentifyOptions) (*Identification, error) {
	start := time.Now()
	id := uuid.NewString()
	m.publish(StateReceived, "", map[string]any{"prediction_id": id, "bytes": len(data)})

	img, format, err := preprocess.DecodeBytes(data)
	if err != nil {
		failuresTotal.WithLabelValues("invalid_image").Inc()
		m.publish(StateFailed, "", map[string]any{"prediction_id": id, "error": err.Error()})
		return nil, err
	}
	in := preprocess.Tensor(img)
	pred, err := m.predict(ctx, in, opts.TopK, start, id)
	if err != nil {
		return nil, err
	}
	out := &Identification{ID: id, ImageHash: ImageHash(data), Format: format, Prediction: pred}
	if opts.Heatmap {
		out.Heatmap = m.Explain(ctx, img, in, pred, opts.Opacity)
	}
	m.publish(StateDone, pred.Classifier.Name, map[string]any{"prediction_id": id})
	return out, nil
}

// Explain produces the Grad-CAM overlay for pred's breed on the Stage-2
// classifier that produced it. It shares that classifier's admission; when
// the classifier is saturated the heatmap is skipped. Any failure yields nil.
func (m *Manager) Explain(ctx context.Context, img image.Image, in *model.Tensor, pred *Prediction, opacity *float64) *saliency.Overlay {
	if pred == nil || pred.Classifier == nil {
		return nil
	}
	m.publish(StateSaliencyRequested, pred.Classifier.Name, map[string]any{"target": pred.Breed})
	if m.engine == nil {
		saliencyTotal.WithLabelValues("disabled").Inc()
		return nil
	}
	if _, ok := pred.Classifier.Saliency(); !ok {
		saliencyTotal.WithLabelValues("unsupported").Inc()
		return nil
	}
	release, err := m.beginEvaluation(ctx, pred.Classifier.Name)
	if err != nil {
		saliencyTotal.WithLabelValues("skipped").Inc()
		m.log.Warn().Err(err).Str("model", pred.Classifier.Name).Msg("heatmap skipped")
		return nil
	}
	defer release()
	engine := m.engine
	if opacity != nil {
		engine = engine.WithOpacity(*opacity)
	}
	ov := engine.Generate(ctx, img, in, pred.Classifier, pred.Breed)
	if ov == nil {
		saliencyTotal.WithLabelValues("failed").Inc()
		return nil
	}
	saliencyTotal.WithLabelValues("generated").Inc()
	return ov
}
