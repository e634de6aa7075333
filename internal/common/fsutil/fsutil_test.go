package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cases := map[string]string{
		"":                     "",
		"/srv/ml_models":       "/srv/ml_models",
		"data/breed_info.json": "data/breed_info.json",
		"~":                    home,
		"~/ml_models":          filepath.Join(home, "ml_models"),
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "classes.json")
	if PathExists(p) {
		t.Fatalf("%s must not exist yet", p)
	}
	if err := os.WriteFile(p, []byte(`["cattle","buffalo"]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !PathExists(p) || !PathExists(dir) {
		t.Fatalf("expected %s to exist", p)
	}
}
