package registry

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ModelSpec describes one classifier handle and where its artifacts live.
type ModelSpec struct {
	// Name is the artifact stem, e.g. cattle_breed_classifier.
	Name string
	// AnimalType keys Stage-2 handles by the Stage-1 label they serve.
	AnimalType string
	// Weights is the ONNX file, relative to Config.Dir unless absolute.
	// Defaults to Name + ".onnx".
	Weights string
	// Classes is the vocabulary companion file, relative to Config.Dir.
	Classes string
	// Vocabulary is used when neither the companion file nor the model
	// metadata supply one.
	Vocabulary []string
}

func (s ModelSpec) weightsFile() string {
	if s.Weights != "" {
		return s.Weights
	}
	return s.Name + ".onnx"
}

// metadataFile is the weights path with a .json extension.
func (s ModelSpec) metadataFile() string {
	w := s.weightsFile()
	return strings.TrimSuffix(w, filepath.Ext(w)) + ".json"
}

// Config configures artifact discovery and demo fallbacks.
type Config struct {
	Dir    string
	Stage1 ModelSpec
	Stage2 []ModelSpec
	// ONNXLibrary is the onnxruntime shared library; empty uses the runtime default.
	ONNXLibrary string
	// Backbone is an optional pretrained ONNX feature extractor used under
	// untrained heads when task weights are missing.
	Backbone string
	// Seed feeds the deterministic weights of untrained networks.
	Seed   int64
	Logger *zerolog.Logger
}

func (c Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
