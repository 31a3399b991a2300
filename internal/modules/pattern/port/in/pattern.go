package in

import (
	"context"

	"hapkit/internal/modules/pattern/dto"
)

type Usecase interface {
	BuildPreset(ctx context.Context, input dto.PresetInput) (dto.PatternDetail, error)
	ListPresets(ctx context.Context) []string
	Validate(ctx context.Context, input dto.ValidateInput) (dto.ValidationReport, error)
	Encode(ctx context.Context, events []dto.EventOutput) ([]byte, error)
	SavePattern(ctx context.Context, input dto.SaveInput) (dto.SavedPattern, error)
	ImportPattern(ctx context.Context, input dto.ImportInput) (dto.SavedPattern, error)
	GetPattern(ctx context.Context, name string) (dto.PatternDetail, error)
	ListPatterns(ctx context.Context) ([]dto.EntryOutput, error)
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
}
