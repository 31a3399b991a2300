package in

import (
	"context"

	"hapkit/internal/modules/session/dto"
)

type Usecase interface {
	SupportsHaptics(ctx context.Context) (bool, error)
	PlatformVersion(ctx context.Context) (string, error)
	StartEngine(ctx context.Context) error
	StopEngine(ctx context.Context) error
	CurrentTime(ctx context.Context) float64
	Play(ctx context.Context, events []dto.PlayEventInput) (dto.PlayReport, error)
	PlayJSON(ctx context.Context, data string) (dto.PlayReport, error)
	PlayBytes(ctx context.Context, data []byte) (dto.PlayReport, error)
	Status(ctx context.Context) dto.StatusOutput
	ListDrivers(ctx context.Context) ([]dto.DriverOutput, error)
	Doctor(ctx context.Context) ([]dto.DoctorOutput, error)
	Close() error
}
