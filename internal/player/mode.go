package player

import "fmt"

type Mode int

const (
	// ModeSynthetic sends the host page's keyboard shortcut and leaves the
	// outcome to the host player.
	ModeSynthetic Mode = iota
	// ModeDirect changes the media element itself.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeSynthetic:
		return "synthetic"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// resolveMode picks direct mode when the caller asked for a specific
// magnitude or when the page is the Shorts feed, which has no keyboard
// shortcut handler of its own.
func resolveMode(explicit, shorts bool) Mode {
	if explicit || shorts {
		return ModeDirect
	}

	return ModeSynthetic
}

// Amount is an optional magnitude for seek, speed and volume operations.
// The zero value means "not given".
type Amount struct {
	value    float64
	explicit bool
}

var Default Amount

func By(value float64) Amount {
	return Amount{value: value, explicit: true}
}

// AmountFrom converts an optional wire value.
func AmountFrom(value *float64) Amount {
	if value == nil {
		return Default
	}

	return By(*value)
}

func (a Amount) Explicit() bool {
	return a.explicit
}

func (a Amount) or(fallback float64) float64 {
	if a.explicit {
		return a.value
	}

	return fallback
}

// Result reports how an operation was carried out. Value is set only when
// the media element was changed directly.
type Result struct {
	Mode  Mode     `json:"mode"`
	Value *float64 `json:"value,omitempty"`
}
