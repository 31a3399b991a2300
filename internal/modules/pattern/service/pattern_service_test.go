package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hapkit/internal/modules/pattern/domain"
	"hapkit/internal/modules/pattern/service"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fixedID struct {
	value string
}

func (g fixedID) New() string { return g.value }

type fakeStore struct {
	saved    map[string]domain.Pattern
	entries  []domain.Entry
	saveErr  error
	loadErr  error
	basePath string
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string]domain.Pattern{}, basePath: "/lib"}
}

func (s *fakeStore) Save(_ context.Context, name string, p domain.Pattern) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved[name] = p
	return s.basePath + "/" + name + ".ahap", nil
}

func (s *fakeStore) Load(_ context.Context, name string) (domain.Pattern, error) {
	if s.loadErr != nil {
		return domain.Pattern{}, s.loadErr
	}
	p, ok := s.saved[name]
	if !ok {
		return domain.Pattern{}, domain.ErrPatternNotFound
	}
	return p, nil
}

func (s *fakeStore) List(context.Context) ([]domain.Entry, error) {
	return s.entries, nil
}

type fakeIndex struct {
	entries  map[string]domain.Entry
	resets   int
	upserts  int
	upsertEr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]domain.Entry{}}
}

func (i *fakeIndex) Reset(context.Context) error {
	i.resets++
	i.entries = map[string]domain.Entry{}
	return nil
}

func (i *fakeIndex) Upsert(_ context.Context, entry domain.Entry) error {
	if i.upsertEr != nil {
		return i.upsertEr
	}
	i.upserts++
	i.entries[entry.Name] = entry
	return nil
}

func (i *fakeIndex) List(context.Context) ([]domain.Entry, error) {
	out := make([]domain.Entry, 0, len(i.entries))
	for _, e := range i.entries {
		out = append(out, e)
	}
	return out, nil
}

func newService(store *fakeStore, index *fakeIndex, opts domain.DecodeOptions) *service.PatternService {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return service.NewPatternService(fixedClock{now: now}, fixedID{value: "0123456789abcdef"}, store, index, opts)
}

func heartbeat(t *testing.T) domain.Pattern {
	t.Helper()
	p, err := domain.Heartbeat(1.0, 0.5)
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	return p
}

func TestSaveSlugsNameAndIndexes(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	index := newFakeIndex()
	svc := newService(store, index, domain.DecodeOptions{})

	entry, err := svc.Save(context.Background(), "  My Heartbeat  ", heartbeat(t))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if entry.Name != "my-heartbeat" {
		t.Fatalf("name = %q", entry.Name)
	}
	if entry.Events != 4 || entry.Transients != 4 || entry.Continuous != 0 {
		t.Fatalf("counts = %+v", entry)
	}
	if _, ok := store.saved["my-heartbeat"]; !ok {
		t.Fatalf("store missing pattern, got %v", store.saved)
	}
	if _, ok := index.entries["my-heartbeat"]; !ok {
		t.Fatalf("index missing entry")
	}
}

func TestSaveGeneratesNameWhenEmpty(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	index := newFakeIndex()
	svc := newService(store, index, domain.DecodeOptions{})

	entry, err := svc.Save(context.Background(), "", heartbeat(t))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if entry.Name != "pattern-01234567" {
		t.Fatalf("generated name = %q", entry.Name)
	}
}

func TestSaveRejectsInvalidPattern(t *testing.T) {
	t.Parallel()
	svc := newService(newFakeStore(), newFakeIndex(), domain.DecodeOptions{})

	bad := domain.Pattern{Events: []domain.Event{{Kind: domain.KindTransient, Intensity: 7, Sharpness: 0.5}}}
	if _, err := svc.Save(context.Background(), "bad", bad); !errors.Is(err, domain.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestImportPropagatesSkipped(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	index := newFakeIndex()
	svc := newService(store, index, domain.DecodeOptions{})

	raw := []byte(`{"Pattern": [
		{"EventType": "HapticTransient", "Time": 0, "EventParameters": []},
		{"EventType": "AudioCustom", "Time": 1, "EventParameters": []}
	]}`)
	entry, skipped, err := svc.Import(context.Background(), "mixed", raw)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if entry.Events != 1 {
		t.Fatalf("events = %d", entry.Events)
	}
	if len(skipped) != 1 || !strings.Contains(skipped[0], "AudioCustom") {
		t.Fatalf("skipped = %v", skipped)
	}
}

func TestImportStrictModeFails(t *testing.T) {
	t.Parallel()
	svc := newService(newFakeStore(), newFakeIndex(), domain.DecodeOptions{Strict: true})

	raw := []byte(`{"Pattern": [{"EventType": "AudioCustom", "Time": 0, "EventParameters": []}]}`)
	if _, _, err := svc.Import(context.Background(), "x", raw); !errors.Is(err, domain.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestDecodeForceStrictOverridesLenient(t *testing.T) {
	t.Parallel()
	svc := newService(newFakeStore(), newFakeIndex(), domain.DecodeOptions{})

	raw := []byte(`{"Pattern": [{"EventType": "AudioCustom", "Time": 0, "EventParameters": []}]}`)
	if _, _, err := svc.Decode(raw, false); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if _, _, err := svc.Decode(raw, true); !errors.Is(err, domain.ErrInvalidPattern) {
		t.Fatalf("expected ErrInvalidPattern, got %v", err)
	}
}

func TestGetNormalizesName(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	index := newFakeIndex()
	svc := newService(store, index, domain.DecodeOptions{})

	if _, err := svc.Save(context.Background(), "My Heartbeat", heartbeat(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, name, err := svc.Get(context.Background(), "  My Heartbeat ")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if name != "my-heartbeat" {
		t.Fatalf("name = %q", name)
	}
	if len(p.Events) != 4 {
		t.Fatalf("events = %d", len(p.Events))
	}

	if _, _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrPatternNotFound) {
		t.Fatalf("expected ErrPatternNotFound, got %v", err)
	}
}

func TestReindexResetsThenUpserts(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	index := newFakeIndex()
	svc := newService(store, index, domain.DecodeOptions{})

	stale := domain.EntryFromPattern("stale", "/lib/stale.ahap", heartbeat(t), time.Now())
	if err := index.Upsert(context.Background(), stale); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	store.entries = []domain.Entry{
		domain.EntryFromPattern("a", "/lib/a.ahap", heartbeat(t), time.Now()),
		domain.EntryFromPattern("b", "/lib/b.ahap", heartbeat(t), time.Now()),
	}

	indexed, err := svc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if indexed != 2 {
		t.Fatalf("indexed = %d", indexed)
	}
	if index.resets != 1 {
		t.Fatalf("resets = %d", index.resets)
	}
	if _, ok := index.entries["stale"]; ok {
		t.Fatalf("stale entry survived reindex")
	}
}
