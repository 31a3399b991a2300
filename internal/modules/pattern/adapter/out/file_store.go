package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hapkit/internal/modules/pattern/domain"
	patternout "hapkit/internal/modules/pattern/port/out"
)

const patternExt = ".ahap"

// FilePatternStore keeps each pattern as one wire-format document
// under the library directory.
type FilePatternStore struct {
	dir  string
	opts domain.DecodeOptions
}

func NewFilePatternStore(dir string, opts domain.DecodeOptions) patternout.PatternStore {
	return &FilePatternStore{dir: dir, opts: opts}
}

func (s *FilePatternStore) Save(_ context.Context, name string, p domain.Pattern) (string, error) {
	raw, err := domain.Encode(p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create library directory: %w", err)
	}
	path := filepath.Join(s.dir, name+patternExt)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write pattern file: %w", err)
	}
	return path, nil
}

func (s *FilePatternStore) Load(_ context.Context, name string) (domain.Pattern, error) {
	path := filepath.Join(s.dir, name+patternExt)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Pattern{}, fmt.Errorf("%w: %s", domain.ErrPatternNotFound, name)
		}
		return domain.Pattern{}, fmt.Errorf("read pattern file: %w", err)
	}
	p, _, err := domain.Decode(raw, s.opts)
	if err != nil {
		return domain.Pattern{}, fmt.Errorf("pattern %s: %w", name, err)
	}
	return p, nil
}

// List walks the library directory. Files that fail to decode are
// skipped so one bad file cannot hide the rest of the library.
func (s *FilePatternStore) List(_ context.Context) ([]domain.Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Entry{}, nil
		}
		return nil, fmt.Errorf("read library directory: %w", err)
	}

	entries := make([]domain.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), patternExt) {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		p, _, err := domain.Decode(raw, s.opts)
		if err != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(de.Name(), patternExt)
		entries = append(entries, domain.EntryFromPattern(name, path, p, info.ModTime().UTC()))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
