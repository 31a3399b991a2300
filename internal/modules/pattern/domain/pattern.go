package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEvent   = errors.New("haptic event is invalid")
	ErrInvalidPattern = errors.New("haptic pattern is invalid")
	ErrUnknownPreset  = errors.New("unknown preset")
)

// Pattern is an ordered sequence of events forming one playable unit.
// Insertion order is preserved; the hardware scheduler plays by Time,
// and simultaneous offsets have no defined ordering.
type Pattern struct {
	Events []Event
}

func NewPattern(events ...Event) (Pattern, error) {
	owned := make([]Event, len(events))
	copy(owned, events)
	p := Pattern{Events: owned}
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}

func (p Pattern) Validate() error {
	for i, e := range p.Events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

func (p Pattern) Empty() bool {
	return len(p.Events) == 0
}

// Duration is the offset at which the last stimulus ends.
func (p Pattern) Duration() float64 {
	var max float64
	for _, e := range p.Events {
		if end := e.End(); end > max {
			max = end
		}
	}
	return max
}
