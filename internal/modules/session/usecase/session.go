package usecase

import (
	"context"
	"fmt"

	patterndomain "hapkit/internal/modules/pattern/domain"
	sessiondto "hapkit/internal/modules/session/dto"
	sessionin "hapkit/internal/modules/session/port/in"
	"hapkit/internal/modules/session/service"
	apperrors "hapkit/internal/platform/errors"
)

type Interactor struct {
	svc *service.SessionService
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) SupportsHaptics(ctx context.Context) (bool, error) {
	return i.svc.SupportsHaptics(ctx)
}

func (i *Interactor) PlatformVersion(ctx context.Context) (string, error) {
	return i.svc.PlatformVersion(ctx)
}

func (i *Interactor) StartEngine(ctx context.Context) error {
	return i.svc.StartEngine(ctx)
}

func (i *Interactor) StopEngine(ctx context.Context) error {
	return i.svc.StopEngine(ctx)
}

func (i *Interactor) CurrentTime(ctx context.Context) float64 {
	return i.svc.CurrentTime(ctx)
}

func (i *Interactor) Play(ctx context.Context, events []sessiondto.PlayEventInput) (sessiondto.PlayReport, error) {
	pattern, err := toPattern(events)
	if err != nil {
		return sessiondto.PlayReport{}, err
	}
	if err := i.svc.Play(ctx, pattern); err != nil {
		return sessiondto.PlayReport{}, err
	}
	return sessiondto.PlayReport{
		Events:   len(pattern.Events),
		Duration: pattern.Duration(),
		Empty:    pattern.Empty(),
	}, nil
}

func (i *Interactor) PlayJSON(ctx context.Context, data string) (sessiondto.PlayReport, error) {
	return i.PlayBytes(ctx, []byte(data))
}

func (i *Interactor) PlayBytes(ctx context.Context, data []byte) (sessiondto.PlayReport, error) {
	pattern, skipped, err := i.svc.PlayJSON(ctx, data)
	if err != nil {
		return sessiondto.PlayReport{}, err
	}
	return sessiondto.PlayReport{
		Events:   len(pattern.Events),
		Duration: pattern.Duration(),
		Skipped:  skipped,
		Empty:    pattern.Empty(),
	}, nil
}

func (i *Interactor) Status(ctx context.Context) sessiondto.StatusOutput {
	status := i.svc.Status(ctx)
	return sessiondto.StatusOutput{
		State:      string(status.State),
		Driver:     status.Driver,
		StartedAt:  status.StartedAt,
		Restarts:   status.Restarts,
		LastSignal: string(status.LastSignal),
		SignalAt:   status.SignalAt,
	}
}

func (i *Interactor) ListDrivers(ctx context.Context) ([]sessiondto.DriverOutput, error) {
	manifests, err := i.svc.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	outputs := make([]sessiondto.DriverOutput, 0, len(manifests))
	for _, m := range manifests {
		outputs = append(outputs, sessiondto.DriverOutput{
			Name:      m.Name,
			Version:   m.Version,
			Binary:    m.Binary,
			Platforms: m.Platforms,
			Enabled:   m.Enabled,
		})
	}
	return outputs, nil
}

func (i *Interactor) Doctor(ctx context.Context) ([]sessiondto.DoctorOutput, error) {
	reports, err := i.svc.Doctor(ctx)
	if err != nil {
		return nil, err
	}
	outputs := make([]sessiondto.DoctorOutput, 0, len(reports))
	for _, r := range reports {
		outputs = append(outputs, sessiondto.DoctorOutput{
			Name:          r.Manifest.Name,
			BinaryExists:  r.BinaryExists,
			ChecksumValid: r.ChecksumValid,
			Reachable:     r.Reachable,
			Supported:     r.Supported,
			Platform:      r.Platform,
			Problem:       r.Problem,
		})
	}
	return outputs, nil
}

func (i *Interactor) Close() error {
	return i.svc.Close()
}

func toPattern(inputs []sessiondto.PlayEventInput) (patterndomain.Pattern, error) {
	events := make([]patterndomain.Event, 0, len(inputs))
	for idx, in := range inputs {
		kind := patterndomain.EventKind(in.Kind)
		if err := kind.Validate(); err != nil {
			return patterndomain.Pattern{}, fmt.Errorf("%w: event %d: %s", apperrors.ErrInvalidInput, idx, err)
		}
		events = append(events, patterndomain.Event{
			Kind:      kind,
			Time:      in.Time,
			Duration:  in.Duration,
			Intensity: in.Intensity,
			Sharpness: in.Sharpness,
		})
	}
	return patterndomain.NewPattern(events...)
}
