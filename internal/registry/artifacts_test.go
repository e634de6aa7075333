package registry

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestParseVocabulary(t *testing.T) {
	v, err := ParseVocabulary([]byte(`["a","b"]`))
	if err != nil || len(v) != 2 || v[1] != "b" {
		t.Fatalf("array: %v %v", v, err)
	}
	v, err = ParseVocabulary([]byte(`{"0":"a","1":"b","2":"c"}`))
	if err != nil || len(v) != 3 || v[2] != "c" {
		t.Fatalf("object: %v %v", v, err)
	}
	if _, err := ParseVocabulary([]byte(`{"0":"a","2":"c"}`)); err == nil {
		t.Fatalf("expected error for gap in indices")
	}
	if _, err := ParseVocabulary([]byte(`{"x":"a"}`)); err == nil {
		t.Fatalf("expected error for non-numeric key")
	}
	if _, err := ParseVocabulary([]byte(`[]`)); err == nil {
		t.Fatalf("expected error for empty vocabulary")
	}
	if _, err := ParseVocabulary([]byte(`42`)); err == nil {
		t.Fatalf("expected error for scalar")
	}
}

func TestHeadWeightsLinear(t *testing.T) {
	h := HeadWeights{Weight: [][]float32{{1, 2}, {3, 4}, {5, 6}}, Bias: []float32{0, 1, 2}}
	l, err := h.Linear()
	if err != nil {
		t.Fatalf("linear: %v", err)
	}
	if l.In != 2 || l.Out != 3 || l.Weight[3] != 4 {
		t.Fatalf("unexpected head: %+v", l)
	}
	bad := HeadWeights{Weight: [][]float32{{1, 2}, {3}}}
	if _, err := bad.Linear(); err == nil {
		t.Fatalf("expected ragged rows error")
	}
}

func TestScanFiltersONNX(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.onnx", "b.ONNX", "b.json", "notes.txt", "model.bin"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
	arts, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(arts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(arts))
	}
	byName := map[string]Artifact{}
	for _, a := range arts {
		byName[a.Name] = a
	}
	if byName["a"].HasMetadata || !byName["b"].HasMetadata {
		t.Fatalf("metadata detection wrong: %+v", arts)
	}
	if byName["a"].Size != 1 {
		t.Fatalf("size = %d", byName["a"].Size)
	}
}

func TestScanExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir on this platform: %v", err)
	}
	hTmp, err := os.MkdirTemp(home, "breedd-registry-*")
	if err != nil {
		t.Skipf("cannot create temp under home: %v", err)
	}
	defer os.RemoveAll(hTmp)
	if err := os.WriteFile(filepath.Join(hTmp, "x.onnx"), []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var tildePath string
	if runtime.GOOS == "windows" {
		tildePath = filepath.Join("~", filepath.Base(hTmp))
	} else {
		tildePath = "~/" + filepath.Base(hTmp)
	}
	arts, err := Scan(tildePath)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(arts) != 1 || arts[0].Name != "x" {
		t.Fatalf("unexpected artifacts: %+v", arts)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
