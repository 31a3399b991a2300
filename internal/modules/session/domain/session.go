package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnsupported = errors.New("haptics not supported on this device")
	ErrEngineStart = errors.New("engine start failed")
	ErrEngineStop  = errors.New("engine stop failed")
	ErrPlayback    = errors.New("playback failed")
)

type EngineState string

const (
	StateUninitialized EngineState = "uninitialized"
	StateStarted       EngineState = "started"
	StateStopped       EngineState = "stopped"
	StateErrored       EngineState = "errored"
)

func (s EngineState) Validate() error {
	switch s {
	case StateUninitialized, StateStarted, StateStopped, StateErrored:
		return nil
	default:
		return fmt.Errorf("unknown engine state: %s", s)
	}
}

// SignalKind classifies asynchronous engine notifications coming from
// the platform side of the driver, outside any call.
type SignalKind string

const (
	SignalStopped SignalKind = "stopped"
	SignalReset   SignalKind = "reset"
)

type EngineSignal struct {
	Kind   SignalKind
	Reason string
}

// EngineStatus is a point-in-time snapshot of the session.
type EngineStatus struct {
	State      EngineState
	Driver     string
	StartedAt  time.Time
	Restarts   int
	LastSignal SignalKind
	SignalAt   time.Time
}
