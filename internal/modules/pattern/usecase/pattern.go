package usecase

import (
	"context"

	"hapkit/internal/modules/pattern/domain"
	"hapkit/internal/modules/pattern/dto"
	patternin "hapkit/internal/modules/pattern/port/in"
	"hapkit/internal/modules/pattern/service"
)

type Interactor struct {
	svc *service.PatternService
}

func NewInteractor(svc *service.PatternService) patternin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) BuildPreset(_ context.Context, input dto.PresetInput) (dto.PatternDetail, error) {
	p, err := i.svc.BuildPreset(input.Name, domain.PresetParams{
		Intensity: input.Intensity,
		Sharpness: input.Sharpness,
		Delay:     input.Delay,
		Duration:  input.Duration,
	})
	if err != nil {
		return dto.PatternDetail{}, err
	}
	return toDetail(input.Name, p), nil
}

func (i *Interactor) ListPresets(_ context.Context) []string {
	return domain.PresetNames()
}

func (i *Interactor) Validate(_ context.Context, input dto.ValidateInput) (dto.ValidationReport, error) {
	p, skipped, err := i.svc.Decode(input.Data, input.ForceStrict)
	if err != nil {
		return dto.ValidationReport{Valid: false, Problem: err.Error()}, nil
	}
	return dto.ValidationReport{
		Valid:    true,
		Events:   len(p.Events),
		Duration: p.Duration(),
		Skipped:  skipped,
	}, nil
}

func (i *Interactor) Encode(_ context.Context, events []dto.EventOutput) ([]byte, error) {
	p, err := toPattern(events)
	if err != nil {
		return nil, err
	}
	return domain.Encode(p)
}

func (i *Interactor) SavePattern(ctx context.Context, input dto.SaveInput) (dto.SavedPattern, error) {
	p, err := toPattern(input.Events)
	if err != nil {
		return dto.SavedPattern{}, err
	}
	entry, err := i.svc.Save(ctx, input.Name, p)
	if err != nil {
		return dto.SavedPattern{}, err
	}
	return dto.SavedPattern{Name: entry.Name, Path: entry.Path, Events: entry.Events}, nil
}

func (i *Interactor) ImportPattern(ctx context.Context, input dto.ImportInput) (dto.SavedPattern, error) {
	entry, skipped, err := i.svc.Import(ctx, input.Name, input.Data)
	if err != nil {
		return dto.SavedPattern{}, err
	}
	return dto.SavedPattern{Name: entry.Name, Path: entry.Path, Events: entry.Events, Skipped: skipped}, nil
}

func (i *Interactor) GetPattern(ctx context.Context, name string) (dto.PatternDetail, error) {
	p, resolved, err := i.svc.Get(ctx, name)
	if err != nil {
		return dto.PatternDetail{}, err
	}
	return toDetail(resolved, p), nil
}

func (i *Interactor) ListPatterns(ctx context.Context) ([]dto.EntryOutput, error) {
	entries, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EntryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.EntryOutput{
			Name:       entry.Name,
			Path:       entry.Path,
			Events:     entry.Events,
			Transients: entry.Transients,
			Continuous: entry.Continuous,
			Duration:   entry.Duration,
			UpdatedAt:  entry.UpdatedAt,
		})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	indexed, err := i.svc.Reindex(ctx)
	if err != nil {
		return dto.ReindexOutput{}, err
	}
	return dto.ReindexOutput{Indexed: indexed}, nil
}

func toDetail(name string, p domain.Pattern) dto.PatternDetail {
	events := make([]dto.EventOutput, 0, len(p.Events))
	for _, e := range p.Events {
		events = append(events, dto.EventOutput{
			Kind:      string(e.Kind),
			Time:      e.Time,
			Duration:  e.Duration,
			Intensity: e.Intensity,
			Sharpness: e.Sharpness,
		})
	}
	return dto.PatternDetail{Name: name, Duration: p.Duration(), Events: events}
}

func toPattern(events []dto.EventOutput) (domain.Pattern, error) {
	converted := make([]domain.Event, 0, len(events))
	for _, e := range events {
		converted = append(converted, domain.Event{
			Kind:      domain.EventKind(e.Kind),
			Time:      e.Time,
			Duration:  e.Duration,
			Intensity: e.Intensity,
			Sharpness: e.Sharpness,
		})
	}
	return domain.NewPattern(converted...)
}
