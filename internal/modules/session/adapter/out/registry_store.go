package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hapkit/internal/modules/session/domain"
	sessionout "hapkit/internal/modules/session/port/out"
)

// FileRegistryStore reads driver manifests from a JSON registry file.
// Relative binary paths resolve against the registry's directory.
type FileRegistryStore struct {
	path string
}

func NewFileRegistryStore(path string) sessionout.RegistryStore {
	return &FileRegistryStore{path: path}
}

func (s *FileRegistryStore) Load(_ context.Context) ([]domain.DriverManifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.DriverManifest{}, nil
		}
		return nil, fmt.Errorf("read driver registry: %w", err)
	}
	var manifests []domain.DriverManifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode driver registry: %w", err)
	}
	baseDir := filepath.Dir(s.path)
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(baseDir, manifests[i].Binary))
		}
	}
	return manifests, nil
}
