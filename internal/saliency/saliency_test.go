package saliency

import (
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"breedd/internal/model"
)

func TestGradCAMWeightsChannelsByMeanGradient(t *testing.T) {
	act := &model.Tensor{C: 2, H: 1, W: 3, Data: []float32{
		1, 2, 3,
		3, 0, 0,
	}}
	grad := &model.Tensor{C: 2, H: 1, W: 3, Data: []float32{
		1, 1, 1,
		-1, -1, -1,
	}}
	m, err := GradCAM(act, grad)
	require.NoError(t, err)
	// raw cam: [1-3, 2, 3] -> relu [0, 2, 3] -> normalized [0, 2/3, 1]
	require.InDelta(t, 0, m.Data[0], 1e-6)
	require.InDelta(t, 2.0/3.0, m.Data[1], 1e-6)
	require.InDelta(t, 1, m.Data[2], 1e-6)
}

func TestGradCAMAllNegativeIsZero(t *testing.T) {
	act := &model.Tensor{C: 1, H: 2, W: 2, Data: []float32{1, 2, 3, 4}}
	grad := &model.Tensor{C: 1, H: 2, W: 2, Data: []float32{-1, -1, -1, -1}}
	m, err := GradCAM(act, grad)
	require.NoError(t, err)
	for _, v := range m.Data {
		require.Equal(t, float32(0), v)
	}
}

func TestGradCAMShapeMismatch(t *testing.T) {
	_, err := GradCAM(model.NewTensor(2, 2, 2), model.NewTensor(1, 2, 2))
	require.Error(t, err)
}

func TestUpsample(t *testing.T) {
	m := &Map{W: 2, H: 2, Data: []float32{0.25, 0.25, 0.25, 0.25}}
	up := m.Upsample(224, 224)
	require.Equal(t, 224*224, len(up.Data))
	for _, v := range up.Data {
		require.InDelta(t, 0.25, v, 1e-6)
	}

	ramp := &Map{W: 2, H: 1, Data: []float32{0, 1}}
	r := ramp.Upsample(4, 1)
	require.Equal(t, []float32{0, 0.25, 0.75, 1}, r.Data)
}

func TestJetEndpoints(t *testing.T) {
	lo, hi := Jet(0), Jet(1)
	require.Equal(t, uint8(0), lo.R)
	require.Greater(t, lo.B, uint8(100))
	require.Equal(t, uint8(0), hi.B)
	require.Greater(t, hi.R, uint8(100))
	mid := Jet(0.5)
	require.Equal(t, uint8(255), mid.G)
}

func demoClassifier(t *testing.T) *model.Classifier {
	t.Helper()
	c, err := model.NewClassifier(model.ClassifierSpec{
		Name:       "cattle_breed_classifier",
		Vocabulary: model.Vocabulary{"Gir", "Ayrshire", "Hallikar", "Kenkatha"},
		Network:    model.NewDemoNetwork(11, 4),
		Status:     model.StatusDemoFallback,
	})
	require.NoError(t, err)
	return c
}

func sampleInput() *model.Tensor {
	in := model.NewTensor(3, 224, 224)
	for i := range in.Data {
		in.Data[i] = float32((i*31)%97)/48 - 1
	}
	return in
}

func TestGenerateProducesPNGDataURI(t *testing.T) {
	e := NewEngine(Options{})
	require.Equal(t, DefaultOpacity, e.Opacity())
	ov := e.Generate(context.Background(), nil, sampleInput(), demoClassifier(t), "Hallikar")
	require.NotNil(t, ov)
	require.True(t, strings.HasPrefix(ov.URI, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ov.URI, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(strings.NewReader(string(raw)))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 224, 224), img.Bounds())
}

func TestUnknownTargetUsesFirstClass(t *testing.T) {
	e := NewEngine(Options{})
	c := demoClassifier(t)
	in := sampleInput()
	unknown := e.Generate(context.Background(), nil, in, c, "Sahiwal")
	first := e.Generate(context.Background(), nil, in, c, "Gir")
	require.NotNil(t, unknown)
	require.Equal(t, first.URI, unknown.URI)
}

func TestTargetMatchesVocabularyExactly(t *testing.T) {
	e := NewEngine(Options{})
	c := demoClassifier(t)
	in := sampleInput()
	first := e.Generate(context.Background(), nil, in, c, "Gir")
	lower := e.Generate(context.Background(), nil, in, c, "hallikar")
	exact := e.Generate(context.Background(), nil, in, c, "Hallikar")
	require.NotNil(t, lower)
	require.Equal(t, first.URI, lower.URI)
	require.NotEqual(t, exact.URI, lower.URI)
}

func TestGenerateBlendsOverProvidedImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	src.Set(0, 0, color.RGBA{255, 0, 0, 255})
	ov := NewEngine(Options{Size: 64}).Generate(context.Background(), src, sampleInput(), demoClassifier(t), "Gir")
	require.NotNil(t, ov)
	require.Equal(t, 64, ov.Image.Bounds().Dx())
}

type logitsOnly struct{}

func (logitsOnly) Forward(context.Context, *model.Tensor) ([]float32, error) {
	return []float32{0, 1}, nil
}
func (logitsOnly) OutputWidth() int { return 2 }
func (logitsOnly) Concurrent() bool { return true }
func (logitsOnly) Close() error     { return nil }

func TestUnsupportedNetworkYieldsNil(t *testing.T) {
	c, err := model.NewClassifier(model.ClassifierSpec{Name: "m", Vocabulary: model.Vocabulary{"a", "b"}, Network: logitsOnly{}})
	require.NoError(t, err)
	e := NewEngine(Options{})
	require.Nil(t, e.Generate(context.Background(), nil, sampleInput(), c, "a"))
	_, err = e.Explain(context.Background(), nil, sampleInput(), c, "a")
	require.True(t, IsSaliency(err))
	require.ErrorIs(t, err, ErrUnsupported)
}

type panicky struct{ logitsOnly }

func (panicky) Activations(context.Context, *model.Tensor) (*model.Tensor, error) { panic("boom") }
func (panicky) ScoreGradient(*model.Tensor, int) (*model.Tensor, error)           { return nil, nil }

func TestPanicsAreContained(t *testing.T) {
	c, err := model.NewClassifier(model.ClassifierSpec{Name: "m", Vocabulary: model.Vocabulary{"a", "b"}, Network: panicky{}})
	require.NoError(t, err)
	require.Nil(t, NewEngine(Options{}).Generate(context.Background(), nil, sampleInput(), c, "a"))
}

func TestCancelledContextYieldsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Nil(t, NewEngine(Options{}).Generate(ctx, nil, sampleInput(), demoClassifier(t), "Gir"))
}

func TestOpacityClamped(t *testing.T) {
	e := NewEngine(Options{Opacity: 3})
	require.Equal(t, 1.0, e.Opacity())
	require.Equal(t, 0.0, e.WithOpacity(-2).Opacity())
	require.Equal(t, 0.25, e.WithOpacity(0.25).Opacity())
}
