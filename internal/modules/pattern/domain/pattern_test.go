package domain_test

import (
	"testing"

	"hapkit/internal/modules/pattern/domain"
)

func TestNewPatternPreservesOrder(t *testing.T) {
	t.Parallel()
	late, err := domain.NewTransient(1.0, 0.5, 0.5)
	if err != nil {
		t.Fatalf("late: %v", err)
	}
	early, err := domain.NewTransient(0.0, 0.5, 0.5)
	if err != nil {
		t.Fatalf("early: %v", err)
	}

	p, err := domain.NewPattern(late, early)
	if err != nil {
		t.Fatalf("NewPattern: %v", err)
	}
	if len(p.Events) != 2 {
		t.Fatalf("events = %d", len(p.Events))
	}
	if p.Events[0].Time != 1.0 || p.Events[1].Time != 0.0 {
		t.Fatalf("insertion order not preserved: %v, %v", p.Events[0].Time, p.Events[1].Time)
	}
}

func TestNewPatternRejectsInvalidEvent(t *testing.T) {
	t.Parallel()
	if _, err := domain.NewPattern(domain.Event{Kind: domain.KindTransient, Intensity: 2, Sharpness: 0.5}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewPatternCopiesInput(t *testing.T) {
	t.Parallel()
	e, err := domain.NewTransient(0, 1, 0.5)
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	events := []domain.Event{e}
	p, err := domain.NewPattern(events...)
	if err != nil {
		t.Fatalf("NewPattern: %v", err)
	}
	events[0].Time = 9
	if p.Events[0].Time != 0 {
		t.Fatalf("pattern shares caller slice")
	}
}

func TestPatternDuration(t *testing.T) {
	t.Parallel()
	buzz, err := domain.NewContinuous(0.2, 1.5, 1, 0.5)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	tail, err := domain.NewTransient(1.0, 1, 0.5)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}

	p, err := domain.NewPattern(buzz, tail)
	if err != nil {
		t.Fatalf("NewPattern: %v", err)
	}
	// The continuous event ends at 1.7, after the last transient.
	if got := p.Duration(); got != 1.7 {
		t.Fatalf("Duration() = %v, want 1.7", got)
	}
}

func TestEmptyPattern(t *testing.T) {
	t.Parallel()
	p, err := domain.NewPattern()
	if err != nil {
		t.Fatalf("NewPattern: %v", err)
	}
	if !p.Empty() {
		t.Fatalf("expected empty pattern")
	}
	if p.Duration() != 0 {
		t.Fatalf("Duration() = %v", p.Duration())
	}
}
