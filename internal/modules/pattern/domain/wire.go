package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	wireEventTransient  = "HapticTransient"
	wireEventContinuous = "HapticContinuous"
	wireParamIntensity  = "HapticIntensity"
	wireParamSharpness  = "HapticSharpness"
)

// Pointer fields distinguish absent keys from zero values when
// decoding.
type wireParameter struct {
	ParameterID    string   `json:"ParameterID"`
	ParameterValue *float64 `json:"ParameterValue,omitempty"`
}

type wireEvent struct {
	EventType       *string          `json:"EventType,omitempty"`
	Time            *float64         `json:"Time,omitempty"`
	EventDuration   *float64         `json:"EventDuration,omitempty"`
	EventParameters *[]wireParameter `json:"EventParameters,omitempty"`
}

type wireDocument struct {
	Pattern *[]wireEvent `json:"Pattern"`
}

// DecodeOptions selects the parse mode. Strict rejects unknown event
// types, parameter IDs and JSON keys instead of skipping them.
type DecodeOptions struct {
	Strict bool
}

// Encode renders the wire form: a root Pattern array whose events
// carry EventType, Time, EventDuration for continuous events, and an
// EventParameters pair in intensity, sharpness order.
func Encode(p Pattern) ([]byte, error) {
	events := make([]wireEvent, 0, len(p.Events))
	for i, e := range p.Events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		we := wireEvent{
			Time: ptr(e.Time),
			EventParameters: &[]wireParameter{
				{ParameterID: wireParamIntensity, ParameterValue: ptr(e.Intensity)},
				{ParameterID: wireParamSharpness, ParameterValue: ptr(e.Sharpness)},
			},
		}
		switch e.Kind {
		case KindTransient:
			we.EventType = ptrString(wireEventTransient)
		case KindContinuous:
			we.EventType = ptrString(wireEventContinuous)
			we.EventDuration = ptr(e.Duration)
		}
		events = append(events, we)
	}
	return json.Marshal(wireDocument{Pattern: &events})
}

// Decode parses the wire form. The second return value lists events
// that were skipped in lenient mode, one human-readable reason each.
func Decode(data []byte, opts DecodeOptions) (Pattern, []string, error) {
	var doc wireDocument
	if opts.Strict {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Pattern{}, nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
	} else if err := json.Unmarshal(data, &doc); err != nil {
		return Pattern{}, nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if doc.Pattern == nil {
		return Pattern{}, nil, fmt.Errorf("%w: missing Pattern array", ErrInvalidPattern)
	}

	var skipped []string
	events := make([]Event, 0, len(*doc.Pattern))
	for i, we := range *doc.Pattern {
		e, skip, err := decodeEvent(we, opts)
		if err != nil {
			return Pattern{}, nil, fmt.Errorf("%w: event %d: %v", ErrInvalidPattern, i, err)
		}
		if skip != "" {
			if opts.Strict {
				return Pattern{}, nil, fmt.Errorf("%w: event %d: %s", ErrInvalidPattern, i, skip)
			}
			skipped = append(skipped, fmt.Sprintf("event %d: %s", i, skip))
			continue
		}
		events = append(events, e)
	}

	p, err := NewPattern(events...)
	if err != nil {
		return Pattern{}, nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return p, skipped, nil
}

func decodeEvent(we wireEvent, opts DecodeOptions) (Event, string, error) {
	if we.EventType == nil {
		return Event{}, "", fmt.Errorf("missing EventType")
	}
	if we.Time == nil {
		return Event{}, "", fmt.Errorf("missing Time")
	}
	if we.EventParameters == nil {
		return Event{}, "", fmt.Errorf("missing EventParameters")
	}

	var kind EventKind
	switch *we.EventType {
	case wireEventTransient:
		kind = KindTransient
	case wireEventContinuous:
		kind = KindContinuous
	default:
		return Event{}, fmt.Sprintf("unknown EventType %q", *we.EventType), nil
	}

	intensity := DefaultIntensity
	sharpness := DefaultSharpness
	for _, p := range *we.EventParameters {
		switch p.ParameterID {
		case wireParamIntensity:
			if p.ParameterValue == nil {
				return Event{}, "", fmt.Errorf("%s missing ParameterValue", wireParamIntensity)
			}
			intensity = *p.ParameterValue
		case wireParamSharpness:
			if p.ParameterValue == nil {
				return Event{}, "", fmt.Errorf("%s missing ParameterValue", wireParamSharpness)
			}
			sharpness = *p.ParameterValue
		default:
			if opts.Strict {
				return Event{}, "", fmt.Errorf("unknown ParameterID %q", p.ParameterID)
			}
		}
	}

	if kind == KindContinuous {
		if we.EventDuration == nil {
			return Event{}, "", fmt.Errorf("continuous event missing EventDuration")
		}
		e, err := NewContinuous(*we.Time, *we.EventDuration, intensity, sharpness)
		return e, "", err
	}
	// A duration on a transient event is ignored, not copied.
	e, err := NewTransient(*we.Time, intensity, sharpness)
	return e, "", err
}

func ptr(v float64) *float64 { return &v }

func ptrString(v string) *string { return &v }
