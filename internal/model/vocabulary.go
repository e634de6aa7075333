package model

import (
	"fmt"
	"strings"
)

// Vocabulary maps a classifier's output indices to labels. The index is the
// only stable join key between network output and human-readable labels.
type Vocabulary []string

// Index returns the position of label, matching exactly first and then
// case-insensitively.
func (v Vocabulary) Index(label string) (int, bool) {
	for i, l := range v {
		if l == label {
			return i, true
		}
	}
	for i, l := range v {
		if strings.EqualFold(l, label) {
			return i, true
		}
	}
	return 0, false
}

// Position returns the position of label by exact match only.
func (v Vocabulary) Position(label string) (int, bool) {
	for i, l := range v {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// Label returns the label at i, or "" when i is out of range.
func (v Vocabulary) Label(i int) string {
	if i < 0 || i >= len(v) {
		return ""
	}
	return v[i]
}

// Validate rejects empty vocabularies, blank labels and duplicates.
func (v Vocabulary) Validate() error {
	if len(v) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	seen := make(map[string]int, len(v))
	for i, l := range v {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("vocabulary entry %d is blank", i)
		}
		if j, ok := seen[l]; ok {
			return fmt.Errorf("vocabulary entry %q repeated at %d and %d", l, j, i)
		}
		seen[l] = i
	}
	return nil
}

// Clone returns a copy safe to hand out to callers.
func (v Vocabulary) Clone() Vocabulary {
	out := make(Vocabulary, len(v))
	copy(out, v)
	return out
}
