package entity

import (
	"fmt"
	"strings"
	"time"
)

// FrequencyKind classifies how often an entity's update hook runs.
type FrequencyKind uint8

const (
	FrequencyNone FrequencyKind = iota
	FrequencyEveryFrame
	FrequencyFixed
	frequencyAny
)

// UpdateFrequency is comparable; Rate is only set for FrequencyFixed.
type UpdateFrequency struct {
	Kind FrequencyKind
	Rate time.Duration
}

var (
	None       = UpdateFrequency{Kind: FrequencyNone}
	EveryFrame = UpdateFrequency{Kind: FrequencyEveryFrame}

	// AnyFrequency is a selector only: it matches every updating entity.
	AnyFrequency = UpdateFrequency{Kind: frequencyAny}
)

func Fixed(rate time.Duration) UpdateFrequency {
	return UpdateFrequency{Kind: FrequencyFixed, Rate: rate}
}

// Selects reports whether selector picks an entity updating at f. Entities
// at None are never selected.
func (f UpdateFrequency) Selects(selector UpdateFrequency) bool {
	if f.Kind == FrequencyNone || f.Kind == frequencyAny {
		return false
	}
	if selector.Kind == frequencyAny {
		return true
	}
	return f == selector
}

func (f UpdateFrequency) String() string {
	switch f.Kind {
	case FrequencyNone:
		return "none"
	case FrequencyEveryFrame:
		return "every_frame"
	case FrequencyFixed:
		return "fixed:" + f.Rate.String()
	case frequencyAny:
		return "any"
	}
	return "unknown"
}

// ParseFrequency accepts "none", "every_frame" and "fixed:<duration>".
func ParseFrequency(s string) (UpdateFrequency, error) {
	switch s {
	case "", "none":
		return None, nil
	case "every_frame":
		return EveryFrame, nil
	}
	if rest, ok := strings.CutPrefix(s, "fixed:"); ok {
		rate, err := time.ParseDuration(rest)
		if err != nil {
			return None, fmt.Errorf("update frequency %q: %w", s, err)
		}
		if rate <= 0 {
			return None, fmt.Errorf("update frequency %q: rate must be positive", s)
		}
		return Fixed(rate), nil
	}
	return None, fmt.Errorf("update frequency %q: unknown", s)
}

// Configuration is an entity's static metadata. The world snapshots it at
// registration time.
type Configuration struct {
	Tag             string
	UpdateFrequency UpdateFrequency
	DoesRender      bool
}
