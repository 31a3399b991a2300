package out

import (
	"context"

	"hapkit/internal/modules/session/domain"
)

// Driver is a live connection to one hardware driver process.
type Driver interface {
	Metadata(ctx context.Context) (domain.DriverMetadata, error)
	Capabilities(ctx context.Context) (domain.Capabilities, error)
	StartEngine(ctx context.Context) error
	StopEngine(ctx context.Context) error
	CurrentTime(ctx context.Context) (float64, error)
	PlayPattern(ctx context.Context, data []byte) error
	Signals() <-chan domain.EngineSignal
	Close() error
}

// DriverOpener launches the driver described by a manifest and hands
// back a live connection.
type DriverOpener interface {
	Open(ctx context.Context, manifest domain.DriverManifest) (Driver, error)
}

// RegistryStore reads the installed-driver registry.
type RegistryStore interface {
	Load(ctx context.Context) ([]domain.DriverManifest, error)
}
