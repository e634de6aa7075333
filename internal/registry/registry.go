// Package registry discovers classifier artifacts, builds one handle per
// model and falls back to deterministic untrained networks when weights are
// missing or unusable.
package registry

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"lukechampine.com/blake3"

	"breedd/internal/common/fsutil"
	"breedd/internal/model"
)

// Registry owns the classifier handles for the life of the process.
type Registry struct {
	cfg Config
	log zerolog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	set   *Set
	err   error
	loads atomic.Uint64

	backboneOnce sync.Once
	backbone     model.Backbone
}

// New returns an unloaded registry.
func New(cfg Config) *Registry {
	r := &Registry{cfg: cfg, log: zerolog.Nop()}
	if cfg.Logger != nil {
		r.log = cfg.Logger.With().Str("component", "registry").Logger()
	}
	if dir, err := fsutil.ExpandHome(cfg.Dir); err != nil {
		r.log.Warn().Err(err).Str("dir", cfg.Dir).Msg("cannot expand models dir")
	} else {
		r.cfg.Dir = dir
	}
	return r
}

// NewStatic wraps an already-built set.
func NewStatic(set *Set) *Registry {
	return &Registry{log: zerolog.Nop(), set: set}
}

// Load builds every handle once per process; concurrent callers share one
// load. The returned error is nil unless some artifact was present but
// unusable, in which case it joins the ModelLoadErrors and the registry is
// still fully usable. Configuration errors leave the registry unloaded.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.RLock()
	if r.set != nil {
		err := r.err
		r.mu.RUnlock()
		return err
	}
	r.mu.RUnlock()

	ch := r.group.DoChan("load", func() (any, error) {
		r.mu.RLock()
		done := r.set != nil
		r.mu.RUnlock()
		if done {
			return nil, nil
		}
		set, err := r.build(context.WithoutCancel(ctx))
		if set == nil {
			return nil, err
		}
		r.mu.Lock()
		r.set, r.err = set, err
		r.mu.Unlock()
		r.loads.Add(1)
		return nil, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Handles returns the loaded set, or false before a successful Load.
func (r *Registry) Handles() (*Set, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set, r.set != nil
}

// Loaded reports whether Load has produced a set.
func (r *Registry) Loaded() bool {
	_, ok := r.Handles()
	return ok
}

// Loads counts completed loads; it never exceeds one.
func (r *Registry) Loads() uint64 { return r.loads.Load() }

// Close releases the handles.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set == nil {
		return nil
	}
	return r.set.Close()
}

func (r *Registry) validate() error {
	if r.cfg.Stage1.Name == "" {
		return fmt.Errorf("stage 1 model name is required")
	}
	if len(r.cfg.Stage2) == 0 {
		return fmt.Errorf("at least one stage 2 model is required")
	}
	seen := map[string]bool{}
	for _, s := range r.cfg.Stage2 {
		if s.Name == "" || s.AnimalType == "" {
			return fmt.Errorf("stage 2 models need a name and an animal type")
		}
		k := strings.ToLower(s.AnimalType)
		if seen[k] {
			return fmt.Errorf("animal type %q has more than one stage 2 model", s.AnimalType)
		}
		seen[k] = true
	}
	return nil
}

func (r *Registry) build(ctx context.Context) (*Set, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	var loadErrs []error
	sources := map[string]string{}

	stage1, src, err := r.loadHandle(r.cfg.Stage1)
	if stage1 == nil {
		return nil, err
	}
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	sources[stage1.Name] = src

	stage2 := make(map[string]*model.Classifier, len(r.cfg.Stage2))
	for _, spec := range r.cfg.Stage2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, src, err := r.loadHandle(spec)
		if c == nil {
			return nil, err
		}
		if err != nil {
			loadErrs = append(loadErrs, err)
		}
		sources[c.Name] = src
		stage2[spec.AnimalType] = c
	}

	set := NewSet(stage1, stage2)
	set.vocabSources = sources
	for _, label := range stage1.Vocabulary {
		if _, ok := set.Stage2For(label); !ok {
			r.log.Warn().Str("animal_type", label).Msg("stage 1 label has no stage 2 model; predictions routed to it will fail")
		}
	}
	for _, c := range set.All() {
		ev := r.log.Info()
		if c.Status != model.StatusLoaded {
			ev = r.log.Warn()
		}
		ev.Str("model", c.Name).Str("status", c.Status.String()).Str("source", c.Source).
			Int("classes", len(c.Vocabulary)).Msg("classifier ready")
	}
	return set, errors.Join(loadErrs...)
}

// loadHandle always returns a usable classifier unless the configuration
// itself is unusable. A non-nil error alongside a classifier is a ModelLoadError.
func (r *Registry) loadHandle(spec ModelSpec) (*model.Classifier, string, error) {
	log := r.log.With().Str("model", spec.Name).Logger()
	weights := r.cfg.resolve(spec.weightsFile())
	metaPath := r.cfg.resolve(spec.metadataFile())

	var loadErr error
	var md *Metadata
	if fsutil.PathExists(metaPath) {
		m, err := ReadMetadata(metaPath)
		if err != nil {
			loadErr = &ModelLoadError{Model: spec.Name, Path: metaPath, Err: err}
		} else {
			md = &m
		}
	}

	vocab, vsrc, err := r.vocabulary(spec, md, log)
	if err != nil && loadErr == nil {
		loadErr = err
	}
	if len(vocab) == 0 {
		return nil, "", fmt.Errorf("model %s: no vocabulary configured", spec.Name)
	}
	if err := vocab.Validate(); err != nil {
		return nil, "", fmt.Errorf("model %s: %w", spec.Name, err)
	}

	exists := fsutil.PathExists(weights)
	if loadErr == nil && exists {
		net, err := r.openNetwork(weights, md, len(vocab))
		if err == nil {
			c, cerr := model.NewClassifier(model.ClassifierSpec{
				Name: spec.Name, Vocabulary: vocab, Network: net, Status: model.StatusLoaded, Source: weights,
			})
			if cerr == nil {
				return c, vsrc, nil
			}
			_ = net.Close()
			err = cerr
		}
		loadErr = &ModelLoadError{Model: spec.Name, Path: weights, Err: err}
	}

	status := model.StatusDemoFallback
	if loadErr != nil {
		status = model.StatusFailed
		log.Warn().Err(loadErr).Msg("model artifacts unusable; serving untrained network")
	} else {
		log.Warn().Str("path", weights).Msg("weights not found; serving untrained network")
	}
	net, source := r.demoNetwork(spec, len(vocab))
	c, err := model.NewClassifier(model.ClassifierSpec{
		Name: spec.Name, Vocabulary: vocab, Network: net, Status: status, Source: source, Err: loadErr,
	})
	if err != nil {
		return nil, "", err
	}
	return c, vsrc, loadErr
}

// vocabulary resolves labels in priority order: companion file, metadata,
// configured default.
func (r *Registry) vocabulary(spec ModelSpec, md *Metadata, log zerolog.Logger) (model.Vocabulary, string, error) {
	var fileErr error
	if spec.Classes != "" {
		p := r.cfg.resolve(spec.Classes)
		if fsutil.PathExists(p) {
			v, err := ReadVocabulary(p)
			if err == nil {
				return v, VocabFromFile, nil
			}
			fileErr = &ModelLoadError{Model: spec.Name, Path: p, Err: err}
		}
	}
	if md != nil && len(md.Classes) > 0 {
		return model.Vocabulary(md.Classes).Clone(), VocabFromMetadata, fileErr
	}
	log.Warn().Strs("labels", spec.Vocabulary).Msg("no vocabulary file found; using configured default")
	return model.Vocabulary(spec.Vocabulary).Clone(), VocabFromDefault, fileErr
}

func (r *Registry) openNetwork(weights string, md *Metadata, classes int) (model.Network, error) {
	meta := defaultMetadata(classes)
	if md != nil {
		if md.InputName != "" {
			meta.InputName = md.InputName
		}
		if md.OutputName != "" {
			meta.OutputName = md.OutputName
		}
		if len(md.InputShape) > 0 {
			meta.InputShape = md.InputShape
		}
		if len(md.OutputShape) > 0 {
			meta.OutputShape = md.OutputShape
		}
		meta.Head = md.Head
	}
	var head *model.LinearHead
	if meta.Head != nil {
		h, err := meta.Head.Linear()
		if err != nil {
			return nil, err
		}
		head = h
	} else if len(meta.OutputShape) == 4 {
		return nil, fmt.Errorf("feature map output %v needs head weights in the metadata", meta.OutputShape)
	}

	sess, err := model.OpenONNX(model.ONNXConfig{
		Path:        weights,
		LibraryPath: r.cfg.ONNXLibrary,
		InputName:   meta.InputName,
		OutputName:  meta.OutputName,
		InputShape:  meta.InputShape,
		OutputShape: meta.OutputShape,
	})
	if err != nil {
		return nil, err
	}
	if head == nil {
		n, err := model.NewONNXLogits(sess)
		if err != nil {
			_ = sess.Close()
			return nil, err
		}
		return n, nil
	}
	bb, err := model.NewONNXBackbone(sess)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	n, err := model.NewHeadedNetwork(bb, head)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	return n, nil
}

// demoNetwork builds the untrained stand-in for spec. Weights depend only on
// the configured seed and the model name.
func (r *Registry) demoNetwork(spec ModelSpec, classes int) (model.Network, string) {
	seed := DemoSeed(r.cfg.Seed, spec.Name)
	if bb := r.sharedBackbone(); bb != nil {
		head := model.RandomLinearHead(rand.New(rand.NewSource(seed)), bb.Channels(), classes)
		if n, err := model.NewHeadedNetwork(bb, head); err == nil {
			return n, "untrained head on " + r.cfg.Backbone
		}
	}
	return model.NewDemoNetwork(seed, classes), fmt.Sprintf("untrained (seed %d)", seed)
}

func (r *Registry) sharedBackbone() model.Backbone {
	r.backboneOnce.Do(func() {
		path := r.cfg.resolve(r.cfg.Backbone)
		if path == "" || !fsutil.PathExists(path) {
			return
		}
		log := r.log.With().Str("backbone", path).Logger()
		spec := ModelSpec{Weights: path}
		md, err := ReadMetadata(spec.metadataFile())
		if err != nil {
			log.Warn().Err(err).Msg("backbone metadata unusable; using native backbone")
			return
		}
		meta := defaultMetadata(0)
		if md.InputName != "" {
			meta.InputName = md.InputName
		}
		if md.OutputName != "" {
			meta.OutputName = md.OutputName
		}
		if len(md.InputShape) > 0 {
			meta.InputShape = md.InputShape
		}
		sess, err := model.OpenONNX(model.ONNXConfig{
			Path: path, LibraryPath: r.cfg.ONNXLibrary,
			InputName: meta.InputName, OutputName: meta.OutputName,
			InputShape: meta.InputShape, OutputShape: md.OutputShape,
		})
		if err != nil {
			log.Warn().Err(err).Msg("backbone unusable; using native backbone")
			return
		}
		bb, err := model.NewONNXBackbone(sess)
		if err != nil {
			_ = sess.Close()
			log.Warn().Err(err).Msg("backbone unusable; using native backbone")
			return
		}
		r.backbone = bb
	})
	return r.backbone
}

// DemoSeed derives the weight seed of an untrained network.
func DemoSeed(seed int64, name string) int64 {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%d/%s", seed, name)))
	return int64(binary.LittleEndian.Uint64(sum[:8]) &^ (1 << 63))
}
