package dto

import "time"

// PlayEventInput mirrors a single haptic event supplied by a caller that
// builds patterns programmatically instead of shipping wire JSON.
type PlayEventInput struct {
	Kind      string
	Time      float64
	Duration  float64
	Intensity float64
	Sharpness float64
}

// PlayReport summarizes one playback request.
type PlayReport struct {
	Events   int
	Duration float64
	Skipped  []string
	Empty    bool
}

type StatusOutput struct {
	State      string
	Driver     string
	StartedAt  time.Time
	Restarts   int
	LastSignal string
	SignalAt   time.Time
}

type DriverOutput struct {
	Name      string
	Version   string
	Binary    string
	Platforms []string
	Enabled   bool
}

type DoctorOutput struct {
	Name          string
	BinaryExists  bool
	ChecksumValid bool
	Reachable     bool
	Supported     bool
	Platform      string
	Problem       string
}
