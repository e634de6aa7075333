package saliency

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"breedd/internal/model"
	"breedd/internal/preprocess"
)

// DefaultOpacity is the heatmap weight in the blend.
const DefaultOpacity = 0.5

// Options configure an Engine. Zero values select defaults.
type Options struct {
	// Opacity of the heatmap over the image, clamped to [0,1].
	Opacity float64
	// Size is the side length of the produced overlay.
	Size   int
	Logger *zerolog.Logger
}

// Engine produces Grad-CAM overlays. It is stateless and safe for concurrent
// use; nothing is cached between calls.
type Engine struct {
	opacity float64
	size    int
	log     zerolog.Logger
}

func NewEngine(opts Options) *Engine {
	e := &Engine{opacity: opts.Opacity, size: opts.Size, log: zerolog.Nop()}
	if e.opacity == 0 {
		e.opacity = DefaultOpacity
	}
	e.opacity = clampOpacity(e.opacity)
	if e.size <= 0 {
		e.size = preprocess.Size
	}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "saliency").Logger()
	}
	return e
}

// WithOpacity returns a copy using opacity (clamped to [0,1]).
func (e *Engine) WithOpacity(opacity float64) *Engine {
	cp := *e
	cp.opacity = clampOpacity(opacity)
	return &cp
}

func (e *Engine) Opacity() float64 { return e.opacity }

// Explain builds the overlay for target on classifier c. A target outside the
// vocabulary falls back to class 0. img may be nil, in which case the tensor
// is rendered back to an image for the blend.
func (e *Engine) Explain(ctx context.Context, img image.Image, in *model.Tensor, c *model.Classifier, target string) (ov *Overlay, err error) {
	name := "(nil)"
	if c != nil {
		name = c.Name
	}
	defer func() {
		if r := recover(); r != nil {
			ov, err = nil, &SaliencyError{Model: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if c == nil {
		return nil, &SaliencyError{Model: name, Err: fmt.Errorf("no classifier")}
	}
	net, ok := c.Saliency()
	if !ok {
		return nil, &SaliencyError{Model: name, Err: ErrUnsupported}
	}
	class, ok := c.Vocabulary.Position(target)
	if !ok {
		class = 0
	}
	m, err := Compute(ctx, net, in, class)
	if err != nil {
		return nil, &SaliencyError{Model: name, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &SaliencyError{Model: name, Err: err}
	}
	if img == nil {
		img = preprocess.Image(in)
	}
	out := Blend(img, Colorize(m.Upsample(e.size, e.size)), e.opacity)
	uri, err := EncodePNG(out)
	if err != nil {
		return nil, &SaliencyError{Model: name, Err: err}
	}
	return &Overlay{Image: out, URI: uri}, nil
}

// Generate is Explain with failures logged and reported as nil.
func (e *Engine) Generate(ctx context.Context, img image.Image, in *model.Tensor, c *model.Classifier, target string) *Overlay {
	ov, err := e.Explain(ctx, img, in, c, target)
	if err != nil {
		e.log.Warn().Err(err).Str("target", target).Msg("heatmap unavailable")
		return nil
	}
	return ov
}
