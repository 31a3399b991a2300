package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sessionadapter "hapkit/internal/modules/session/adapter/out"
)

func TestFileRegistryStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := sessionadapter.NewFileRegistryStore(filepath.Join(t.TempDir(), "drivers.json"))
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty registry, got %d", len(manifests))
	}
}

func TestFileRegistryStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	raw := `[
  {
    "name": "waveform",
    "version": "1.0.0",
    "binary": "bin/waveform-driver",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "platforms": ["linux", "darwin"],
    "enabled": true
  }
]`
	path := filepath.Join(base, "drivers.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write drivers.json: %v", err)
	}
	store := sessionadapter.NewFileRegistryStore(path)
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	if !filepath.IsAbs(manifests[0].Binary) {
		t.Fatalf("expected absolute binary path, got %s", manifests[0].Binary)
	}
	if got := manifests[0].Binary; got != filepath.Join(base, "bin", "waveform-driver") {
		t.Fatalf("unexpected resolved path: %s", got)
	}
}

func TestFileRegistryStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	raw := `[
  {
    "name": "waveform",
    "version": "1.0.0",
    "binary": "/tmp/waveform-driver",
    "enabled": true,
    "vibration_mode": "extra"
  }
]`
	path := filepath.Join(base, "drivers.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write drivers.json: %v", err)
	}
	store := sessionadapter.NewFileRegistryStore(path)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
