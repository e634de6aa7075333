package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"breedd/internal/analytics"
	"breedd/internal/breeds"
	"breedd/internal/config"
	"breedd/internal/httpapi"
	"breedd/internal/manager"
	"breedd/internal/registry"
	"breedd/internal/saliency"
)

// projectRoot resolves the module root from this file's location.
func projectRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/internal/e2e/helpers_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func bundledCatalog(t *testing.T) *breeds.Catalog {
	t.Helper()
	c, err := breeds.Load(filepath.Join(projectRoot(t), "data", "breed_info.json"))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

// newDemoManager wires the default model layout against an empty models
// directory, so every classifier falls back to untrained weights.
func newDemoManager(t *testing.T) *manager.Manager {
	t.Helper()
	cfg := config.Default()
	cfg.ModelsDir = t.TempDir()
	cfg.Seed = 42
	log := zerolog.Nop()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:      registry.New(cfg.Registry(&log)),
		Saliency:      saliency.NewEngine(saliency.Options{Opacity: cfg.GradCAMOpacity}),
		TopK:          cfg.TopK,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWait),
	})
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func newServer(t *testing.T, mgr *manager.Manager, catalog *breeds.Catalog) (*httptest.Server, *analytics.Tracker) {
	t.Helper()
	tracker := analytics.New()
	srv := httptest.NewServer(httpapi.NewMux(mgr, catalog, tracker))
	t.Cleanup(srv.Close)
	return srv, tracker
}

// photo is a small gradient JPEG standing in for a camera upload.
func photo(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x) ^ shade, G: uint8(y), B: shade, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func postUpload(t *testing.T, url, filename string, data []byte, fields map[string]string) (*http.Response, []byte) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, &body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json: %v body=%s", err, string(body))
	}
}
