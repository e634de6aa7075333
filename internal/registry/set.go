package registry

import (
	"errors"
	"sort"
	"strings"

	"breedd/internal/model"
	"breedd/pkg/types"
)

// Vocabulary sources reported in status output.
const (
	VocabFromFile     = "file"
	VocabFromMetadata = "metadata"
	VocabFromDefault  = "default"
)

// Set is the immutable collection of handles produced by a load: one Stage-1
// router and one Stage-2 classifier per animal type.
type Set struct {
	Stage1 *model.Classifier
	Stage2 map[string]*model.Classifier

	vocabSources map[string]string
}

// NewSet assembles a set from prebuilt classifiers.
func NewSet(stage1 *model.Classifier, stage2 map[string]*model.Classifier) *Set {
	return &Set{Stage1: stage1, Stage2: stage2, vocabSources: map[string]string{}}
}

// Stage2For returns the breed classifier serving animal type label, matching
// exactly first and then case-insensitively.
func (s *Set) Stage2For(label string) (*model.Classifier, bool) {
	if c, ok := s.Stage2[label]; ok {
		return c, true
	}
	for k, c := range s.Stage2 {
		if strings.EqualFold(k, label) {
			return c, true
		}
	}
	return nil, false
}

// AnimalTypes returns the Stage-2 keys in sorted order.
func (s *Set) AnimalTypes() []string {
	out := make([]string, 0, len(s.Stage2))
	for k := range s.Stage2 {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// All returns Stage 1 followed by the Stage-2 handles in animal type order.
func (s *Set) All() []*model.Classifier {
	out := []*model.Classifier{s.Stage1}
	for _, k := range s.AnimalTypes() {
		out = append(out, s.Stage2[k])
	}
	return out
}

// ModelLoaded is true only when every handle serves task-specific weights.
func (s *Set) ModelLoaded() bool {
	for _, c := range s.All() {
		if !c.Loaded() {
			return false
		}
	}
	return true
}

// VocabularySource reports where a handle's vocabulary came from.
func (s *Set) VocabularySource(name string) string {
	if v, ok := s.vocabSources[name]; ok {
		return v
	}
	return VocabFromDefault
}

// Describe summarises every handle.
func (s *Set) Describe() []types.ModelStatus {
	out := []types.ModelStatus{s.describe(s.Stage1, 1, "")}
	for _, k := range s.AnimalTypes() {
		out = append(out, s.describe(s.Stage2[k], 2, k))
	}
	return out
}

func (s *Set) describe(c *model.Classifier, stage int, animalType string) types.ModelStatus {
	_, saliency := c.Saliency()
	ms := types.ModelStatus{
		Name:             c.Name,
		Stage:            stage,
		AnimalType:       animalType,
		Status:           c.Status.String(),
		Source:           c.Source,
		Vocabulary:       c.Vocabulary.Clone(),
		VocabularySource: s.VocabularySource(c.Name),
		Saliency:         saliency,
		Concurrent:       c.Concurrent(),
	}
	if c.Err != nil {
		ms.Error = c.Err.Error()
	}
	return ms
}

// Close releases every handle.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.All() {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
