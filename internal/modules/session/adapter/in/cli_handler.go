package in

import (
	"context"
	"fmt"
	"os"

	patterndto "hapkit/internal/modules/pattern/dto"
	sessiondto "hapkit/internal/modules/session/dto"
	sessionin "hapkit/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) SupportsHaptics(ctx context.Context) (bool, error) {
	return h.usecase.SupportsHaptics(ctx)
}

func (h CLIHandler) PlatformVersion(ctx context.Context) (string, error) {
	return h.usecase.PlatformVersion(ctx)
}

func (h CLIHandler) StartEngine(ctx context.Context) error {
	return h.usecase.StartEngine(ctx)
}

func (h CLIHandler) StopEngine(ctx context.Context) error {
	return h.usecase.StopEngine(ctx)
}

func (h CLIHandler) CurrentTime(ctx context.Context) float64 {
	return h.usecase.CurrentTime(ctx)
}

// PlayDetail plays a pattern already resolved by the pattern module,
// for example a preset or a stored library entry.
func (h CLIHandler) PlayDetail(ctx context.Context, detail patterndto.PatternDetail) (sessiondto.PlayReport, error) {
	events := make([]sessiondto.PlayEventInput, 0, len(detail.Events))
	for _, ev := range detail.Events {
		events = append(events, sessiondto.PlayEventInput{
			Kind:      ev.Kind,
			Time:      ev.Time,
			Duration:  ev.Duration,
			Intensity: ev.Intensity,
			Sharpness: ev.Sharpness,
		})
	}
	return h.usecase.Play(ctx, events)
}

// PlayFile reads wire JSON from disk and plays it.
func (h CLIHandler) PlayFile(ctx context.Context, path string) (sessiondto.PlayReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sessiondto.PlayReport{}, fmt.Errorf("read pattern file: %w", err)
	}
	return h.usecase.PlayBytes(ctx, data)
}

// PlayJSON plays a wire document passed as a string, for example from
// a command line argument.
func (h CLIHandler) PlayJSON(ctx context.Context, data string) (sessiondto.PlayReport, error) {
	return h.usecase.PlayJSON(ctx, data)
}

func (h CLIHandler) Status(ctx context.Context) sessiondto.StatusOutput {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) ListDrivers(ctx context.Context) ([]sessiondto.DriverOutput, error) {
	return h.usecase.ListDrivers(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]sessiondto.DoctorOutput, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Close() error {
	return h.usecase.Close()
}
