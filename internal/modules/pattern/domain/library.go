package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidEntry    = errors.New("library entry is invalid")
	ErrPatternNotFound = errors.New("pattern not found in library")
)

// Entry is one stored pattern as seen by the library index.
type Entry struct {
	Name       string
	Path       string
	Events     int
	Transients int
	Continuous int
	Duration   float64
	UpdatedAt  time.Time
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.Path) == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidEntry)
	}
	if e.Events < 0 || e.Transients < 0 || e.Continuous < 0 {
		return fmt.Errorf("%w: negative event count", ErrInvalidEntry)
	}
	if e.Transients+e.Continuous != e.Events {
		return fmt.Errorf("%w: event counts do not add up", ErrInvalidEntry)
	}
	return nil
}

func EntryFromPattern(name, path string, p Pattern, updatedAt time.Time) Entry {
	entry := Entry{
		Name:      name,
		Path:      path,
		Events:    len(p.Events),
		Duration:  p.Duration(),
		UpdatedAt: updatedAt,
	}
	for _, e := range p.Events {
		switch e.Kind {
		case KindTransient:
			entry.Transients++
		case KindContinuous:
			entry.Continuous++
		}
	}
	return entry
}
