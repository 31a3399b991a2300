package service

import (
	"context"
	"strings"

	"hapkit/internal/modules/pattern/domain"
	patternout "hapkit/internal/modules/pattern/port/out"
	"hapkit/internal/platform/clock"
	"hapkit/internal/platform/id"
	"hapkit/internal/platform/slug"
)

type PatternService struct {
	clock      clock.Clock
	idGen      id.Generator
	store      patternout.PatternStore
	index      patternout.PatternIndex
	decodeOpts domain.DecodeOptions
}

func NewPatternService(clk clock.Clock, idGen id.Generator, store patternout.PatternStore, index patternout.PatternIndex, decodeOpts domain.DecodeOptions) *PatternService {
	return &PatternService{clock: clk, idGen: idGen, store: store, index: index, decodeOpts: decodeOpts}
}

func (s *PatternService) BuildPreset(name string, params domain.PresetParams) (domain.Pattern, error) {
	return domain.BuildPreset(name, params)
}

// Decode parses wire JSON in the configured mode. ForceStrict upgrades
// a lenient configuration for one call.
func (s *PatternService) Decode(data []byte, forceStrict bool) (domain.Pattern, []string, error) {
	opts := s.decodeOpts
	if forceStrict {
		opts.Strict = true
	}
	return domain.Decode(data, opts)
}

func (s *PatternService) Save(ctx context.Context, name string, p domain.Pattern) (domain.Entry, error) {
	if err := p.Validate(); err != nil {
		return domain.Entry{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		suffix := s.idGen.New()
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		name = "pattern-" + suffix
	}
	name = slug.Make(name)

	path, err := s.store.Save(ctx, name, p)
	if err != nil {
		return domain.Entry{}, err
	}
	entry := domain.EntryFromPattern(name, path, p, s.clock.Now())
	if err := s.index.Upsert(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func (s *PatternService) Import(ctx context.Context, name string, data []byte) (domain.Entry, []string, error) {
	p, skipped, err := s.Decode(data, false)
	if err != nil {
		return domain.Entry{}, nil, err
	}
	entry, err := s.Save(ctx, name, p)
	if err != nil {
		return domain.Entry{}, nil, err
	}
	return entry, skipped, nil
}

func (s *PatternService) Get(ctx context.Context, name string) (domain.Pattern, string, error) {
	name = slug.Make(strings.TrimSpace(name))
	p, err := s.store.Load(ctx, name)
	if err != nil {
		return domain.Pattern{}, "", err
	}
	return p, name, nil
}

func (s *PatternService) List(ctx context.Context) ([]domain.Entry, error) {
	return s.index.List(ctx)
}

// Reindex rebuilds the index from the files on disk.
func (s *PatternService) Reindex(ctx context.Context) (int, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Reset(ctx); err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if err := s.index.Upsert(ctx, entry); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}
