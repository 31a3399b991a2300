package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	patterndomain "hapkit/internal/modules/pattern/domain"
	sessionadapter "hapkit/internal/modules/session/adapter/out"
	"hapkit/internal/modules/session/domain"
	"hapkit/internal/modules/session/dto"
	sessionin "hapkit/internal/modules/session/port/in"
	"hapkit/internal/modules/session/service"
	"hapkit/internal/modules/session/usecase"
	"hapkit/internal/platform/clock"
	"hapkit/internal/platform/logging"
)

func TestSessionLifecycleAgainstWaveformDriver(t *testing.T) {
	uc := newSessionUsecase(t)
	defer uc.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if got := uc.Status(ctx).State; got != string(domain.StateUninitialized) {
		t.Fatalf("fresh session should be uninitialized, got %s", got)
	}

	supported, err := uc.SupportsHaptics(ctx)
	if err != nil {
		t.Fatalf("supports haptics: %v", err)
	}
	if !supported {
		t.Fatalf("waveform driver should support haptics")
	}

	report, err := uc.Play(ctx, []dto.PlayEventInput{
		{Kind: "transient", Time: 0, Intensity: 0.8, Sharpness: 0.5},
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if report.Events != 1 {
		t.Fatalf("expected one event in report, got %d", report.Events)
	}
	if got := uc.Status(ctx).State; got != string(domain.StateStarted) {
		t.Fatalf("play should auto-start the engine, got %s", got)
	}

	if got := uc.CurrentTime(ctx); got <= 0 {
		t.Fatalf("expected engine clock to advance, got %f", got)
	}

	jsonReport, err := uc.PlayJSON(ctx, `{"Pattern":[
		{"EventType":"AudioCustom","Time":0,"EventParameters":[]},
		{"EventType":"HapticContinuous","Time":0,"EventDuration":0.5,"EventParameters":[{"ParameterID":"HapticSharpness","ParameterValue":0.3}]}
	]}`)
	if err != nil {
		t.Fatalf("play json: %v", err)
	}
	if jsonReport.Events != 1 || len(jsonReport.Skipped) != 1 {
		t.Fatalf("unexpected json report: %+v", jsonReport)
	}

	if err := uc.StopEngine(ctx); err != nil {
		t.Fatalf("stop engine: %v", err)
	}
	if got := uc.Status(ctx).State; got != string(domain.StateStopped) {
		t.Fatalf("expected stopped, got %s", got)
	}
	if got := uc.CurrentTime(ctx); got != 0 {
		t.Fatalf("stopped session clock should read zero, got %f", got)
	}
}

func TestSessionRestartsAfterDriverReset(t *testing.T) {
	t.Setenv("WAVEFORM_RESET_AFTER", "300ms")
	uc := newSessionUsecase(t)
	defer uc.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := uc.StartEngine(ctx); err != nil {
		t.Fatalf("start engine: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		status := uc.Status(ctx)
		if status.Restarts >= 1 && status.State == string(domain.StateStarted) {
			if status.LastSignal != string(domain.SignalReset) {
				t.Fatalf("expected reset signal recorded, got %s", status.LastSignal)
			}
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("engine was not restarted after reset signal, status %+v", uc.Status(ctx))
}

func TestSessionDoctorAndListDrivers(t *testing.T) {
	uc := newSessionUsecase(t)
	defer uc.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	drivers, err := uc.ListDrivers(ctx)
	if err != nil {
		t.Fatalf("list drivers: %v", err)
	}
	if len(drivers) != 1 || drivers[0].Name != "waveform" {
		t.Fatalf("unexpected driver list: %+v", drivers)
	}

	reports, err := uc.Doctor(ctx)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reports))
	}
	if !reports[0].Reachable || reports[0].Problem != "" {
		t.Fatalf("waveform driver should probe clean: %+v", reports[0])
	}
}

func newSessionUsecase(t *testing.T) sessionin.Usecase {
	t.Helper()
	binPath, checksum := buildWaveformDriver(t)
	registryPath := writeRegistry(t, binPath, checksum)
	svc := service.NewSessionService(
		clock.SystemClock{},
		sessionadapter.NewFileRegistryStore(registryPath),
		sessionadapter.NewPluginDriverOpener(logging.Discard()),
		logging.Discard(),
		"waveform",
		patterndomain.DecodeOptions{},
	)
	return usecase.NewInteractor(svc)
}

func writeRegistry(t *testing.T, binPath, checksum string) string {
	t.Helper()
	manifests := []domain.DriverManifest{{
		Name:    "waveform",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
	}}
	raw, err := json.Marshal(manifests)
	if err != nil {
		t.Fatalf("marshal registry: %v", err)
	}
	path := filepath.Join(t.TempDir(), "drivers.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	return path
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
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../"))
}
