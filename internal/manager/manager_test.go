package manager

import (
	"context"
	"sync"
	"testing"

	"breedd/internal/model"
	"breedd/internal/preprocess"
	"breedd/internal/registry"
)

func TestNewWithConfigDefaults(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	if m.maxQueueDepth != defaultMaxQueueDepth {
		t.Fatalf("expected default maxQueueDepth=%d got %d", defaultMaxQueueDepth, m.maxQueueDepth)
	}
	if m.maxWait != defaultMaxWait {
		t.Fatalf("expected default maxWait=%v got %v", defaultMaxWait, m.maxWait)
	}
	if m.topK != defaultTopK || m.maxInflight < 1 {
		t.Fatalf("unexpected defaults: topK=%d inflight=%d", m.topK, m.maxInflight)
	}
}

func TestLoadWithoutRegistryIsNotReady(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	err := m.Load(context.Background())
	if !IsNotReady(err) {
		t.Fatalf("expected not-ready error, got %v", err)
	}
	if m.Ready() || m.Snapshot().State != StateError {
		t.Fatalf("manager must be in error state: %+v", m.Snapshot())
	}
	if _, err := m.Predict(context.Background(), model.NewTensor(3, 224, 224)); !IsNotReady(err) {
		t.Fatalf("predict before load: %v", err)
	}
}

func TestPredictRoutesByAnimalType(t *testing.T) {
	cattle := &stubNet{logits: []float32{5, 0, 0, 0}}
	buffalo := &stubNet{logits: []float32{0, 3, 1, 0}}
	m := stubManager(t, ManagerConfig{}, &stubNet{logits: []float32{0.1, 2}}, cattle, buffalo)

	p, err := m.Predict(testCtx(t), model.NewTensor(3, 224, 224))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if p.AnimalType != "buffalo" || p.Breed != "murrah" {
		t.Fatalf("unexpected routing: %+v", p)
	}
	if cattle.calls.Load() != 0 || buffalo.calls.Load() != 1 {
		t.Fatalf("stage 2 calls: cattle=%d buffalo=%d", cattle.calls.Load(), buffalo.calls.Load())
	}
	if _, ok := buffaloVocab.Index(p.Breed); !ok {
		t.Fatalf("breed %q not drawn from buffalo vocabulary", p.Breed)
	}
	for _, v := range []float64{p.AnimalTypeConfidence, p.BreedConfidence} {
		if v < 0 || v > 100 {
			t.Fatalf("confidence out of range: %v", v)
		}
	}
	if p.Classifier.Name != "buffalo_breed_classifier" || !p.ModelLoaded {
		t.Fatalf("unexpected handle info: %s loaded=%v", p.Classifier.Name, p.ModelLoaded)
	}
}

func TestTopKOrderingAndLength(t *testing.T) {
	m := stubManager(t, ManagerConfig{TopK: 3},
		&stubNet{logits: []float32{1, 0}},
		&stubNet{logits: []float32{0.5, 2, 2, -1}},
		&stubNet{logits: []float32{0, 0, 0, 0}})
	in := model.NewTensor(3, 224, 224)

	p, err := m.Predict(testCtx(t), in)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(p.TopK) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(p.TopK))
	}
	if p.TopK[0].Label != "Ayrshire" || p.TopK[1].Label != "Hallikar" || p.TopK[2].Label != "Gir" {
		t.Fatalf("unexpected order: %+v", p.TopK)
	}
	if p.TopK[0].Label != p.Breed || p.TopK[0].Confidence != p.BreedConfidence {
		t.Fatalf("first entry must match top-level breed")
	}
	for i := 1; i < len(p.TopK); i++ {
		if p.TopK[i].Confidence > p.TopK[i-1].Confidence {
			t.Fatalf("not descending: %+v", p.TopK)
		}
	}

	p, err = m.PredictTopK(testCtx(t), in, 10)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(p.TopK) != 4 {
		t.Fatalf("expected clamp to vocabulary size, got %d", len(p.TopK))
	}
}

func TestMissingStage2IsInferenceError(t *testing.T) {
	set := registry.NewSet(
		classifier(t, "router", model.Vocabulary{"cattle", "goat"}, &stubNet{logits: []float32{0, 1}}, model.StatusLoaded),
		map[string]*model.Classifier{
			"cattle": classifier(t, "cattle_breed_classifier", cattleVocab, &stubNet{logits: []float32{1, 0, 0, 0}}, model.StatusLoaded),
		},
	)
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{Registry: registry.NewStatic(set), Publisher: pub})
	_, err := m.Predict(testCtx(t), model.NewTensor(3, 224, 224))
	if !model.IsInference(err) {
		t.Fatalf("expected inference error, got %v", err)
	}
	names := pub.Names()
	if names[len(names)-1] != string(StateFailed) {
		t.Fatalf("expected terminal failed event, got %v", names)
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	m := demoManager(t, ManagerConfig{})
	img, _, err := preprocess.DecodeBytes(blackPNG(t))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	in := preprocess.Tensor(img)
	a, err := m.Predict(testCtx(t), in)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	b, err := m.Predict(testCtx(t), in)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if a.AnimalType != b.AnimalType || a.Breed != b.Breed || a.AnimalTypeConfidence != b.AnimalTypeConfidence || a.BreedConfidence != b.BreedConfidence {
		t.Fatalf("predictions differ: %+v vs %+v", a, b)
	}
	for i := range a.TopK {
		if a.TopK[i] != b.TopK[i] {
			t.Fatalf("top-k differs at %d", i)
		}
	}
}

func TestDemoModeStillPredicts(t *testing.T) {
	m := demoManager(t, ManagerConfig{})
	if m.ModelLoaded() {
		t.Fatalf("demo registry must report model_loaded=false")
	}
	p, err := m.Predict(testCtx(t), model.NewTensor(3, 224, 224))
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if p.ModelLoaded || len(p.TopK) != 3 || p.Breed == "" {
		t.Fatalf("unexpected demo prediction: %+v", p)
	}
}

func TestPipelineEventsInOrder(t *testing.T) {
	pub := NewMemoryPublisher()
	m := stubManager(t, ManagerConfig{Publisher: pub},
		&stubNet{logits: []float32{1, 0}},
		&stubNet{logits: []float32{1, 0, 0, 0}},
		&stubNet{logits: []float32{1, 0, 0, 0}})
	if _, err := m.Predict(testCtx(t), model.NewTensor(3, 224, 224)); err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := []PipelineState{StateReceived, StatePreprocessed, StateStage1Evaluated, StateStage2Selected, StateStage2Evaluated, StateResultAssembled, StateDone}
	var got []string
	for _, n := range pub.Names() {
		if len(n) < 5 || n[:5] != "load_" {
			got = append(got, n)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != string(want[i]) {
			t.Fatalf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestStatusReportsHandles(t *testing.T) {
	m := stubManager(t, ManagerConfig{MaxInflight: 4, MaxQueueDepth: 8},
		&stubNet{logits: []float32{1, 0}, concurrent: true},
		&stubNet{logits: []float32{1, 0, 0, 0}},
		&stubNet{logits: []float32{1, 0, 0, 0}, concurrent: true})
	st := m.Status()
	if st.State != string(StateReady) || len(st.Models) != 3 || !st.ModelLoaded {
		t.Fatalf("unexpected status: %+v", st)
	}
	byName := map[string]int{}
	for _, ms := range st.Models {
		byName[ms.Name] = ms.MaxInflight
		if ms.MaxQueueDepth != 8 {
			t.Fatalf("queue depth = %d", ms.MaxQueueDepth)
		}
	}
	if byName["cattle_breed_classifier"] != 1 {
		t.Fatalf("serial classifier must admit one evaluation, got %d", byName["cattle_breed_classifier"])
	}
	if byName["buffalo_breed_classifier"] != 4 || byName["cattle_buffalo_classifier"] != 4 {
		t.Fatalf("concurrent classifiers must admit MaxInflight: %+v", byName)
	}
}

func TestConcurrentLoadKeepsInstalledSlots(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Registry: registry.New(registry.Config{
		Dir:    t.TempDir(),
		Stage1: registry.ModelSpec{Name: "cattle_buffalo_classifier", Vocabulary: animalVocab},
		Stage2: []registry.ModelSpec{
			{Name: "cattle_breed_classifier", AnimalType: "cattle", Vocabulary: cattleVocab},
			{Name: "buffalo_breed_classifier", AnimalType: "buffalo", Vocabulary: buffaloVocab},
		},
		Seed: 1,
	})})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Load(context.Background()); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()
	set, ok := m.Handles()
	if !ok {
		t.Fatalf("expected handles after load")
	}
	before := m.slots[set.Stage1.Name]
	m.install(set)
	if m.slots[set.Stage1.Name] != before {
		t.Fatalf("a second install must not replace admission slots")
	}
}
