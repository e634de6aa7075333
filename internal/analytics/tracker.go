// Package analytics keeps in-memory usage counters for predictions,
// breed lookups and comparisons.
package analytics

import (
	"math"
	"sort"
	"sync"
	"time"

	"breedd/pkg/types"
)

// Confidence bands, in percent.
const (
	HighConfidence = 80.0
	LowConfidence  = 50.0
)

// maxHashes bounds the duplicate-detection set.
const maxHashes = 100_000

// Prediction is one successful identification.
type Prediction struct {
	AnimalType     string
	Breed          string
	Confidence     float64
	ProcessingTime time.Duration
	ImageHash      string
}

// Tracker aggregates activity since it was created. The zero value is not
// usable; call New.
type Tracker struct {
	mu sync.Mutex

	since       time.Time
	total       int64
	failed      int64
	byType      map[string]int64
	byBreed     map[string]int64
	confSum     float64
	high, low   int64
	procSum     time.Duration
	hashes      map[string]struct{}
	duplicates  int64
	views       map[string]int64
	comparisons int64
}

func New() *Tracker {
	return &Tracker{
		since:   time.Now(),
		byType:  map[string]int64{},
		byBreed: map[string]int64{},
		hashes:  map[string]struct{}{},
		views:   map[string]int64{},
	}
}

// RecordPrediction counts a prediction. It reports whether the image hash
// was seen before.
func (t *Tracker) RecordPrediction(p Prediction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.byType[p.AnimalType]++
	t.byBreed[p.Breed]++
	t.confSum += p.Confidence
	switch {
	case p.Confidence > HighConfidence:
		t.high++
	case p.Confidence < LowConfidence:
		t.low++
	}
	t.procSum += p.ProcessingTime

	if p.ImageHash == "" {
		return false
	}
	if _, ok := t.hashes[p.ImageHash]; ok {
		t.duplicates++
		return true
	}
	if len(t.hashes) < maxHashes {
		t.hashes[p.ImageHash] = struct{}{}
	}
	return false
}

func (t *Tracker) RecordFailure() {
	t.mu.Lock()
	t.failed++
	t.mu.Unlock()
}

func (t *Tracker) RecordBreedView(id string) {
	t.mu.Lock()
	t.views[id]++
	t.mu.Unlock()
}

func (t *Tracker) RecordComparison() {
	t.mu.Lock()
	t.comparisons++
	t.mu.Unlock()
}

// Summary returns a snapshot. TopBreeds holds at most topN entries ordered
// by count, then name.
func (t *Tracker) Summary(topN int) types.AnalyticsSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := types.AnalyticsSummary{
		TotalPredictions:    t.total,
		CattlePredictions:   t.byType["cattle"],
		BuffaloPredictions:  t.byType["buffalo"],
		ByAnimalType:        copyCounts(t.byType),
		ByBreed:             copyCounts(t.byBreed),
		HighConfidenceCount: t.high,
		LowConfidenceCount:  t.low,
		DuplicateImages:     t.duplicates,
		FailedPredictions:   t.failed,
		BreedViews:          copyCounts(t.views),
		ComparisonsMade:     t.comparisons,
		TopBreeds:           []types.BreedCount{},
		Since:               t.since.Unix(),
	}
	if t.total > 0 {
		s.AvgConfidence = round2(t.confSum / float64(t.total))
		s.AvgProcessingTimeMS = round2(float64(t.procSum.Microseconds()) / 1000 / float64(t.total))
	}
	for b, n := range t.byBreed {
		s.TopBreeds = append(s.TopBreeds, types.BreedCount{Breed: b, Count: n})
	}
	sort.Slice(s.TopBreeds, func(i, j int) bool {
		a, b := s.TopBreeds[i], s.TopBreeds[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Breed < b.Breed
	})
	if topN > 0 && len(s.TopBreeds) > topN {
		s.TopBreeds = s.TopBreeds[:topN]
	}
	return s
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
