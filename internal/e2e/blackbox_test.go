package e2e

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"breedd/pkg/types"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func buildBinary(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "breedd")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/breedd")
	cmd.Dir = projectRoot(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return bin
}

// startServer runs `breedd serve` and waits until the classifiers are ready.
func startServer(t *testing.T, bin string, args ...string) string {
	t.Helper()
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	args = append([]string{"serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port), "--log-format", "console"}, args...)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// Keep a developer's .env or BREEDD_* settings out of the child.
	cmd.Dir = t.TempDir()
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "BREEDD_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Signal(os.Interrupt)
		done := make(chan struct{})
		go func() { _ = cmd.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
		}
	})

	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return base
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become ready in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestBlackbox_ServeDemoModels(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs the binary")
	}
	bin := buildBinary(t)
	base := startServer(t, bin,
		"--models-dir", t.TempDir(),
		"--breed-data", filepath.Join(projectRoot(t), "data", "breed_info.json"),
		"--seed", "3",
	)

	resp, body := httpGet(t, base+"/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		t.Fatalf("/ %d %s", resp.StatusCode, string(body))
	}
	var info types.ServiceInfo
	decode(t, body, &info)
	if info.Service != "breedd" || info.Status != "running" {
		t.Fatalf("unexpected banner: %+v", info)
	}

	resp, body = postUpload(t, base+"/api/v1/predict", "cow.jpeg", photo(t, 77), map[string]string{"include_gradcam": "true"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("predict %d %s", resp.StatusCode, string(body))
	}
	var pred types.PredictionResponse
	decode(t, body, &pred)
	if pred.Breed == "" || pred.GradCAMImage == nil || pred.BreedInfo == nil {
		t.Fatalf("unexpected prediction: %+v", pred)
	}

	resp, body = httpGet(t, base+"/api/v1/states")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/states %d %s", resp.StatusCode, string(body))
	}

	resp, body = httpGet(t, base+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics %d", resp.StatusCode)
	}
	for _, want := range []string{"breedd_http_requests_total", "breedd_inference_predictions_total"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("/metrics missing %s", want)
		}
	}
}

func TestBlackbox_MissingCatalogIsNotFatal(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs the binary")
	}
	bin := buildBinary(t)
	base := startServer(t, bin,
		"--models-dir", t.TempDir(),
		"--breed-data", filepath.Join(t.TempDir(), "missing.json"),
	)
	var health types.HealthResponse
	_, body := httpGet(t, base+"/health")
	decode(t, body, &health)
	if health.BreedDataLoaded || !health.DemoMode {
		t.Fatalf("unexpected health: %+v", health)
	}
	resp, _ := httpGet(t, base+"/api/v1/government-schemes")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("schemes without catalog %d", resp.StatusCode)
	}
}
