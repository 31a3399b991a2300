package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up under the base directory. A missing file
// means defaults apply.
const ConfigFileName = "hapkit.yaml"

type Config struct {
	BaseDir        string
	LibraryDir     string
	RegistryPath   string
	IndexPath      string
	DriverName     string
	LogLevel       string
	StrictPatterns bool
}

// fileConfig mirrors the optional hapkit.yaml. Relative paths resolve
// against the base directory.
type fileConfig struct {
	LibraryDir     string `yaml:"library_dir"`
	Registry       string `yaml:"registry"`
	Index          string `yaml:"index"`
	Driver         string `yaml:"driver"`
	LogLevel       string `yaml:"log_level"`
	StrictPatterns bool   `yaml:"strict_patterns"`
}

func New(baseDir string) (Config, error) {
	if baseDir == "" {
		return Config{}, fmt.Errorf("base directory is required")
	}
	cfg := Config{
		BaseDir:      baseDir,
		LibraryDir:   filepath.Join(baseDir, "patterns"),
		RegistryPath: filepath.Join(baseDir, "drivers", "drivers.json"),
		IndexPath:    filepath.Join(baseDir, ".hapkit", "hapkit.db"),
		DriverName:   "waveform",
		LogLevel:     "warn",
	}

	raw, err := os.ReadFile(filepath.Join(baseDir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	if fc.LibraryDir != "" {
		cfg.LibraryDir = resolve(baseDir, fc.LibraryDir)
	}
	if fc.Registry != "" {
		cfg.RegistryPath = resolve(baseDir, fc.Registry)
	}
	if fc.Index != "" {
		cfg.IndexPath = resolve(baseDir, fc.Index)
	}
	if fc.Driver != "" {
		cfg.DriverName = fc.Driver
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	cfg.StrictPatterns = fc.StrictPatterns
	return cfg, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
