package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hapkit/internal/modules/pattern/dto"
	patternin "hapkit/internal/modules/pattern/port/in"
)

type CLIHandler struct {
	usecase patternin.Usecase
}

func NewCLIHandler(usecase patternin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) BuildPreset(ctx context.Context, name string, intensity, sharpness, delay, duration float64) (dto.PatternDetail, error) {
	return h.usecase.BuildPreset(ctx, dto.PresetInput{
		Name:      name,
		Intensity: intensity,
		Sharpness: sharpness,
		Delay:     delay,
		Duration:  duration,
	})
}

func (h CLIHandler) ListPresets(ctx context.Context) []string {
	return h.usecase.ListPresets(ctx)
}

func (h CLIHandler) Encode(ctx context.Context, detail dto.PatternDetail) ([]byte, error) {
	return h.usecase.Encode(ctx, detail.Events)
}

func (h CLIHandler) ValidateFile(ctx context.Context, path string, strict bool) (dto.ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.ValidationReport{}, fmt.Errorf("read pattern file: %w", err)
	}
	return h.usecase.Validate(ctx, dto.ValidateInput{Data: data, ForceStrict: strict})
}

func (h CLIHandler) SavePattern(ctx context.Context, name string, detail dto.PatternDetail) (dto.SavedPattern, error) {
	return h.usecase.SavePattern(ctx, dto.SaveInput{Name: name, Events: detail.Events})
}

func (h CLIHandler) ImportFile(ctx context.Context, path, name string) (dto.SavedPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.SavedPattern{}, fmt.Errorf("read pattern file: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return h.usecase.ImportPattern(ctx, dto.ImportInput{Name: name, Data: data})
}

func (h CLIHandler) GetPattern(ctx context.Context, name string) (dto.PatternDetail, error) {
	return h.usecase.GetPattern(ctx, name)
}

func (h CLIHandler) ListPatterns(ctx context.Context) ([]dto.EntryOutput, error) {
	return h.usecase.ListPatterns(ctx)
}

func (h CLIHandler) Reindex(ctx context.Context) (dto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}
