package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	sessionadapter "hapkit/internal/modules/session/adapter/out"
	"hapkit/internal/modules/session/domain"
	"hapkit/internal/platform/logging"
)

func TestPluginDriverIntegrationWaveform(t *testing.T) {
	binPath, checksum := buildWaveformDriver(t)
	manifest := domain.DriverManifest{
		Name:    "waveform",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
	}

	opener := sessionadapter.NewPluginDriverOpener(logging.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	driver, err := opener.Open(ctx, manifest)
	if err != nil {
		t.Fatalf("open driver: %v", err)
	}
	defer driver.Close()

	meta, err := driver.Metadata(ctx)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.Name != "waveform" {
		t.Fatalf("unexpected driver name: %s", meta.Name)
	}
	caps, err := driver.Capabilities(ctx)
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}
	if !caps.SupportsHaptics {
		t.Fatalf("waveform driver should report haptics support")
	}

	err = driver.PlayPattern(ctx, []byte(`{"Pattern":[{"EventType":"HapticTransient","Time":0,"EventParameters":[{"ParameterID":"HapticIntensity","ParameterValue":0.8}]}]}`))
	if err == nil || !strings.Contains(err.Error(), "engine is not running") {
		t.Fatalf("expected play before start to fail, got %v", err)
	}

	if err := driver.StartEngine(ctx); err != nil {
		t.Fatalf("start engine: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	seconds, err := driver.CurrentTime(ctx)
	if err != nil {
		t.Fatalf("current time: %v", err)
	}
	if seconds <= 0 {
		t.Fatalf("expected engine clock to advance, got %f", seconds)
	}

	err = driver.PlayPattern(ctx, []byte(`{"Pattern":[{"EventType":"HapticTransient","Time":0,"EventParameters":[{"ParameterID":"HapticIntensity","ParameterValue":0.8}]}]}`))
	if err != nil {
		t.Fatalf("play pattern: %v", err)
	}

	if err := driver.StopEngine(ctx); err != nil {
		t.Fatalf("stop engine: %v", err)
	}
	seconds, err = driver.CurrentTime(ctx)
	if err != nil {
		t.Fatalf("current time after stop: %v", err)
	}
	if seconds != 0 {
		t.Fatalf("stopped engine clock should read zero, got %f", seconds)
	}
}

func TestPluginDriverIntegrationUnsupportedDevice(t *testing.T) {
	binPath, checksum := buildWaveformDriver(t)
	t.Setenv("WAVEFORM_UNSUPPORTED", "1")
	manifest := domain.DriverManifest{
		Name:    "waveform",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
	}

	opener := sessionadapter.NewPluginDriverOpener(logging.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	driver, err := opener.Open(ctx, manifest)
	if err != nil {
		t.Fatalf("open driver: %v", err)
	}
	defer driver.Close()

	caps, err := driver.Capabilities(ctx)
	if err != nil {
		t.Fatalf("capabilities: %v", err)
	}
	if caps.SupportsHaptics {
		t.Fatalf("expected haptics to be unsupported")
	}
}

func TestPluginDriverIntegrationResetSignal(t *testing.T) {
	binPath, checksum := buildWaveformDriver(t)
	t.Setenv("WAVEFORM_RESET_AFTER", "200ms")
	manifest := domain.DriverManifest{
		Name:    "waveform",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
	}

	opener := sessionadapter.NewPluginDriverOpener(logging.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	driver, err := opener.Open(ctx, manifest)
	if err != nil {
		t.Fatalf("open driver: %v", err)
	}
	defer driver.Close()

	if err := driver.StartEngine(ctx); err != nil {
		t.Fatalf("start engine: %v", err)
	}

	select {
	case sig, ok := <-driver.Signals():
		if !ok {
			t.Fatalf("signal channel closed before a signal arrived")
		}
		if sig.Kind != domain.SignalReset {
			t.Fatalf("expected reset signal, got %s", sig.Kind)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reset signal")
	}
}

func buildWaveformDriver(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	binPath := filepath.Join(tmp, "waveform-driver")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/waveform")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build waveform driver: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built driver: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
