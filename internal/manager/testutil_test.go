package manager

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"breedd/internal/model"
	"breedd/internal/registry"
	"breedd/internal/saliency"
)

var (
	animalVocab  = model.Vocabulary{"cattle", "buffalo"}
	cattleVocab  = model.Vocabulary{"Gir", "Ayrshire", "Hallikar", "Kenkatha"}
	buffaloVocab = model.Vocabulary{"Jaffarabadi", "murrah", "nili-ravi", "gojri"}
)

// stubNet returns fixed logits. When block is set, Forward waits for it.
type stubNet struct {
	logits     []float32
	concurrent bool
	block      chan struct{}
	calls      atomic.Int64
}

func (n *stubNet) Forward(ctx context.Context, _ *model.Tensor) ([]float32, error) {
	n.calls.Add(1)
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := make([]float32, len(n.logits))
	copy(out, n.logits)
	return out, nil
}
func (n *stubNet) OutputWidth() int { return len(n.logits) }
func (n *stubNet) Concurrent() bool { return n.concurrent }
func (n *stubNet) Close() error     { return nil }

func classifier(t *testing.T, name string, vocab model.Vocabulary, net model.Network, status model.LoadStatus) *model.Classifier {
	t.Helper()
	c, err := model.NewClassifier(model.ClassifierSpec{Name: name, Vocabulary: vocab, Network: net, Status: status})
	if err != nil {
		t.Fatalf("classifier %s: %v", name, err)
	}
	return c
}

func stubManager(t *testing.T, cfg ManagerConfig, stage1, cattle, buffalo model.Network) *Manager {
	t.Helper()
	set := registry.NewSet(
		classifier(t, "cattle_buffalo_classifier", animalVocab, stage1, model.StatusLoaded),
		map[string]*model.Classifier{
			"cattle":  classifier(t, "cattle_breed_classifier", cattleVocab, cattle, model.StatusLoaded),
			"buffalo": classifier(t, "buffalo_breed_classifier", buffaloVocab, buffalo, model.StatusLoaded),
		},
	)
	cfg.Registry = registry.NewStatic(set)
	m := NewWithConfig(cfg)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func demoManager(t *testing.T, cfg ManagerConfig) *Manager {
	t.Helper()
	cfg.Registry = registry.New(registry.Config{
		Dir:    t.TempDir(),
		Stage1: registry.ModelSpec{Name: "cattle_buffalo_classifier", Vocabulary: animalVocab},
		Stage2: []registry.ModelSpec{
			{Name: "cattle_breed_classifier", AnimalType: "cattle", Vocabulary: cattleVocab},
			{Name: "buffalo_breed_classifier", AnimalType: "buffalo", Vocabulary: buffaloVocab},
		},
		Seed: 1,
	})
	if cfg.Saliency == nil {
		cfg.Saliency = saliency.NewEngine(saliency.Options{})
	}
	m := NewWithConfig(cfg)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func blackPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 224, 224))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
