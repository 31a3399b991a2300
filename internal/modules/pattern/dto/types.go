package dto

import "time"

type PresetInput struct {
	Name      string
	Intensity float64
	Sharpness float64
	Delay     float64
	Duration  float64
}

type EventOutput struct {
	Kind      string
	Time      float64
	Duration  float64
	Intensity float64
	Sharpness float64
}

type PatternDetail struct {
	Name     string
	Duration float64
	Events   []EventOutput
}

type ValidateInput struct {
	Data        []byte
	ForceStrict bool
}

type ValidationReport struct {
	Valid    bool
	Events   int
	Duration float64
	Skipped  []string
	Problem  string
}

type SaveInput struct {
	Name   string
	Events []EventOutput
}

type ImportInput struct {
	Name string
	Data []byte
}

type SavedPattern struct {
	Name    string
	Path    string
	Events  int
	Skipped []string
}

type EntryOutput struct {
	Name       string
	Path       string
	Events     int
	Transients int
	Continuous int
	Duration   float64
	UpdatedAt  time.Time
}

type ReindexOutput struct {
	Indexed int
}
