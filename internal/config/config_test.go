package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.TopK != 3 || cfg.MaxUploadBytes != 10<<20 || cfg.GradCAMOpacity != 0.5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if got := cfg.Models.Stage2[1].Vocabulary; strings.Join(got, ",") != "Jaffarabadi,murrah,nili-ravi,gojri" {
		t.Fatalf("unexpected buffalo vocabulary: %v", got)
	}
}

func TestWithDefaultsKeepsConfiguredModels(t *testing.T) {
	cfg := Config{Models: Models{Stage1: Model{Name: "s1"}}}.WithDefaults()
	if cfg.Models.Stage1.Name != "s1" || len(cfg.Models.Stage2) != 0 {
		t.Fatalf("models section must not be merged: %+v", cfg.Models)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing stage2")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"level":     func(c *Config) { c.LogLevel = "loud" },
		"format":    func(c *Config) { c.LogFormat = "xml" },
		"opacity":   func(c *Config) { c.GradCAMOpacity = 1.5 },
		"topk":      func(c *Config) { c.TopK = -1 },
		"wait":      func(c *Config) { c.MaxWait = Duration(-time.Second) },
		"stage2":    func(c *Config) { c.Models.Stage2[0].AnimalType = "" },
		"duplicate": func(c *Config) { c.Models.Stage2[1].AnimalType = "Cattle" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BREEDD_ADDR":            ":9000",
		"BREEDD_TOP_K":           "5",
		"BREEDD_MAX_WAIT":        "1s",
		"BREEDD_SEED":            "7",
		"BREEDD_GRADCAM_OPACITY": "0.25",
		"BREEDD_DISABLE_GRADCAM": "true",
		"BREEDD_CORS_ORIGINS":    "http://a, ,http://b",
		"BREEDD_MODELS_DIR":      "  ",
	}
	cfg := Default()
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.TopK != 5 || time.Duration(cfg.MaxWait) != time.Second || cfg.Seed != 7 || cfg.GradCAMOpacity != 0.25 || !cfg.DisableGradCAM {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.ModelsDir != DefaultModelsDir {
		t.Fatalf("blank variables must not override: %q", cfg.ModelsDir)
	}

	bad := Default()
	err = bad.applyEnv(func(k string) (string, bool) {
		if k == "BREEDD_TOP_K" {
			return "three", true
		}
		return "", false
	})
	if err == nil || !strings.Contains(err.Error(), "BREEDD_TOP_K") {
		t.Fatalf("expected parse error naming the variable, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "test.env")
	if err := os.WriteFile(p, []byte("BREEDD_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BREEDD_TEST_DOTENV", "")
	os.Unsetenv("BREEDD_TEST_DOTENV")
	if err := LoadDotEnv(p, filepath.Join(d, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("BREEDD_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}

func TestRegistryConfig(t *testing.T) {
	cfg := Default()
	cfg.ModelsDir = "/models"
	cfg.Seed = 9
	rc := cfg.Registry(nil)
	if rc.Dir != "/models" || rc.Seed != 9 || rc.Stage1.Name != "cattle_buffalo_classifier" || len(rc.Stage2) != 2 {
		t.Fatalf("unexpected registry config: %+v", rc)
	}
	if rc.Stage2[0].AnimalType != "cattle" || rc.Stage2[0].Classes != "cattle_classes.json" {
		t.Fatalf("unexpected stage2 spec: %+v", rc.Stage2[0])
	}
	// The registry gets its own copy of vocabularies.
	rc.Stage1.Vocabulary[0] = "yak"
	if cfg.Models.Stage1.Vocabulary[0] != "cattle" {
		t.Fatalf("vocabulary aliased")
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := SplitList(c.in)
		if strings.Join(got, "|") != strings.Join(c.want, "|") || len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
	}
}
