package domain

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrDriverNotFound      = errors.New("driver not found in registry")
	ErrDriverDisabled      = errors.New("driver is disabled")
	ErrChecksumMismatch    = errors.New("driver binary checksum mismatch")
	ErrPlatformUnsupported = errors.New("driver does not support this platform")
	ErrInvalidManifest     = errors.New("driver manifest is invalid")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// DriverManifest describes one installed hardware driver as recorded in
// the driver registry file.
type DriverManifest struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Binary    string   `json:"binary"`
	SHA256    string   `json:"sha256,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	Enabled   bool     `json:"enabled"`
}

func (m DriverManifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidManifest)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidManifest)
	}
	if m.Binary == "" {
		return fmt.Errorf("%w: binary path is required", ErrInvalidManifest)
	}
	if m.SHA256 != "" && !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("%w: sha256 must be 64 lowercase hex characters", ErrInvalidManifest)
	}
	return nil
}

// SupportsPlatform reports whether the manifest lists the given GOOS.
// An empty platform list means the driver runs anywhere.
func (m DriverManifest) SupportsPlatform(goos string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	for _, p := range m.Platforms {
		if p == goos {
			return true
		}
	}
	return false
}

// DriverMetadata is what a live driver reports about itself.
type DriverMetadata struct {
	Name     string
	Version  string
	Platform string
}

// Capabilities describes what the connected hardware can do.
type Capabilities struct {
	SupportsHaptics bool
}

// DriverReport is the result of probing one registered driver.
type DriverReport struct {
	Manifest      DriverManifest
	BinaryExists  bool
	ChecksumValid bool
	Reachable     bool
	Supported     bool
	Platform      string
	Problem       string
}
