package domain

import (
	"fmt"
	"math"
)

// Parameter defaults applied when a wire event omits the corresponding
// EventParameters entry.
const (
	DefaultIntensity = 1.0
	DefaultSharpness = 0.5
)

type EventKind string

const (
	KindTransient  EventKind = "transient"
	KindContinuous EventKind = "continuous"
)

func (k EventKind) Validate() error {
	switch k {
	case KindTransient, KindContinuous:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, string(k))
	}
}

// Event is one scheduled stimulus. Time is the offset in seconds from
// pattern start. Duration is meaningful only for continuous events.
type Event struct {
	Kind      EventKind
	Time      float64
	Duration  float64
	Intensity float64
	Sharpness float64
}

func NewTransient(at, intensity, sharpness float64) (Event, error) {
	e := Event{
		Kind:      KindTransient,
		Time:      at,
		Intensity: intensity,
		Sharpness: sharpness,
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func NewContinuous(at, duration, intensity, sharpness float64) (Event, error) {
	e := Event{
		Kind:      KindContinuous,
		Time:      at,
		Duration:  duration,
		Intensity: intensity,
		Sharpness: sharpness,
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (e Event) Validate() error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if !isFinite(e.Time) || e.Time < 0 {
		return fmt.Errorf("%w: time %v must be a finite number >= 0", ErrInvalidEvent, e.Time)
	}
	if !inUnitRange(e.Intensity) {
		return fmt.Errorf("%w: intensity %v outside [0, 1]", ErrInvalidEvent, e.Intensity)
	}
	if !inUnitRange(e.Sharpness) {
		return fmt.Errorf("%w: sharpness %v outside [0, 1]", ErrInvalidEvent, e.Sharpness)
	}
	switch e.Kind {
	case KindTransient:
		if e.Duration != 0 {
			return fmt.Errorf("%w: transient events carry no duration", ErrInvalidEvent)
		}
	case KindContinuous:
		if !isFinite(e.Duration) || e.Duration <= 0 {
			return fmt.Errorf("%w: duration %v must be a finite number > 0", ErrInvalidEvent, e.Duration)
		}
	}
	return nil
}

// End is the offset at which the stimulus is over.
func (e Event) End() float64 {
	return e.Time + e.Duration
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func inUnitRange(v float64) bool {
	return isFinite(v) && v >= 0 && v <= 1
}
