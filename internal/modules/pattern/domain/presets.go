package domain

import "fmt"

const (
	PresetTap            = "tap"
	PresetDoubleTap      = "double-tap"
	PresetHeartbeat      = "heartbeat"
	PresetContinuousBuzz = "continuous-buzz"
)

const (
	defaultDoubleTapDelay = 0.1
	defaultBuzzDuration   = 0.5

	// The weaker second beat of each heartbeat pair.
	heartbeatEchoScale = 0.7
)

func PresetNames() []string {
	return []string{PresetTap, PresetDoubleTap, PresetHeartbeat, PresetContinuousBuzz}
}

// PresetParams feeds BuildPreset. Delay applies to double-tap and
// Duration to continuous-buzz; zero values select the built-in
// defaults.
type PresetParams struct {
	Intensity float64
	Sharpness float64
	Delay     float64
	Duration  float64
}

func BuildPreset(name string, params PresetParams) (Pattern, error) {
	delay := params.Delay
	if delay == 0 {
		delay = defaultDoubleTapDelay
	}
	duration := params.Duration
	if duration == 0 {
		duration = defaultBuzzDuration
	}
	switch name {
	case PresetTap:
		return Tap(params.Intensity, params.Sharpness)
	case PresetDoubleTap:
		return DoubleTap(params.Intensity, params.Sharpness, delay)
	case PresetHeartbeat:
		return Heartbeat(params.Intensity, params.Sharpness)
	case PresetContinuousBuzz:
		return ContinuousBuzz(duration, params.Intensity, params.Sharpness)
	default:
		return Pattern{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
}

func Tap(intensity, sharpness float64) (Pattern, error) {
	e, err := NewTransient(0, intensity, sharpness)
	if err != nil {
		return Pattern{}, err
	}
	return NewPattern(e)
}

func DoubleTap(intensity, sharpness, delay float64) (Pattern, error) {
	first, err := NewTransient(0, intensity, sharpness)
	if err != nil {
		return Pattern{}, err
	}
	second, err := NewTransient(delay, intensity, sharpness)
	if err != nil {
		return Pattern{}, err
	}
	return NewPattern(first, second)
}

// Heartbeat is two beat pairs, the echo of each pair scaled down.
func Heartbeat(intensity, sharpness float64) (Pattern, error) {
	beats := []struct {
		at    float64
		scale float64
	}{
		{0, 1},
		{0.05, heartbeatEchoScale},
		{0.8, 1},
		{0.85, heartbeatEchoScale},
	}
	events := make([]Event, 0, len(beats))
	for _, b := range beats {
		e, err := NewTransient(b.at, intensity*b.scale, sharpness)
		if err != nil {
			return Pattern{}, err
		}
		events = append(events, e)
	}
	return NewPattern(events...)
}

func ContinuousBuzz(duration, intensity, sharpness float64) (Pattern, error) {
	e, err := NewContinuous(0, duration, intensity, sharpness)
	if err != nil {
		return Pattern{}, err
	}
	return NewPattern(e)
}
