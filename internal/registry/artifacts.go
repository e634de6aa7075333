package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"breedd/internal/common/fsutil"
	"breedd/internal/model"
)

// Metadata is the JSON document stored next to an exported ONNX graph.
type Metadata struct {
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	// Head is present when the graph ends at the last convolutional block
	// and the classifier layer is applied natively.
	Head *HeadWeights `json:"head,omitempty"`
}

// HeadWeights is a linear layer, one weight row per class.
type HeadWeights struct {
	Weight [][]float32 `json:"weight"`
	Bias   []float32   `json:"bias"`
}

// Linear flattens the rows into a model.LinearHead.
func (h *HeadWeights) Linear() (*model.LinearHead, error) {
	if len(h.Weight) == 0 {
		return nil, fmt.Errorf("head has no weight rows")
	}
	in := len(h.Weight[0])
	flat := make([]float32, 0, in*len(h.Weight))
	for i, row := range h.Weight {
		if len(row) != in {
			return nil, fmt.Errorf("head row %d has %d values, want %d", i, len(row), in)
		}
		flat = append(flat, row...)
	}
	return model.NewLinearHead(in, len(h.Weight), flat, h.Bias)
}

func defaultMetadata(classes int) Metadata {
	return Metadata{
		InputName:   "input",
		OutputName:  "output",
		InputShape:  []int64{1, 3, 224, 224},
		OutputShape: []int64{1, int64(classes)},
	}
}

// ReadMetadata parses a metadata file.
func ReadMetadata(path string) (Metadata, error) {
	var md Metadata
	b, err := os.ReadFile(path)
	if err != nil {
		return md, err
	}
	if err := json.Unmarshal(b, &md); err != nil {
		return md, fmt.Errorf("parse metadata: %w", err)
	}
	return md, nil
}

// ReadVocabulary parses a vocabulary file. Both a JSON array of labels and an
// object keyed by contiguous indices ({"0": "Gir", "1": "Sahiwal"}) are accepted.
func ReadVocabulary(path string) (model.Vocabulary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseVocabulary(b)
}

// ParseVocabulary is ReadVocabulary over raw bytes.
func ParseVocabulary(b []byte) (model.Vocabulary, error) {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		v := model.Vocabulary(list)
		return v, v.Validate()
	}
	var byIndex map[string]string
	if err := json.Unmarshal(b, &byIndex); err != nil {
		return nil, fmt.Errorf("vocabulary must be a JSON array or an index-keyed object: %w", err)
	}
	idx := make([]int, 0, len(byIndex))
	for k := range byIndex {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("vocabulary key %q is not an index", k)
		}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	v := make(model.Vocabulary, len(idx))
	for pos, i := range idx {
		if i != pos {
			return nil, fmt.Errorf("vocabulary indices are not contiguous from 0 (missing %d)", pos)
		}
		v[pos] = byIndex[strconv.Itoa(i)]
	}
	return v, v.Validate()
}

// Artifact is one ONNX graph discovered on disk.
type Artifact struct {
	Name        string
	Path        string
	Size        int64
	HasMetadata bool
}

// Scan lists the *.onnx files in dir (non-recursive, case-insensitive).
func Scan(dir string) ([]Artifact, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".onnx") {
			continue
		}
		p := filepath.Join(abs, name)
		a := Artifact{Name: strings.TrimSuffix(name, ext), Path: p}
		if info, err := e.Info(); err == nil {
			a.Size = info.Size()
		}
		a.HasMetadata = fsutil.PathExists(strings.TrimSuffix(p, ext) + ".json")
		out = append(out, a)
	}
	return out, nil
}
