package types

import "fmt"

// Mode represents the queue context being watched. The two queues are
// mutually exclusive and selected by persisted user preference.
type Mode string

const (
	ModeSignature Mode = "signature"
	ModePremier   Mode = "premier"
)

// AllModes returns all valid modes
func AllModes() []Mode {
	return []Mode{
		ModeSignature,
		ModePremier,
	}
}

// IsValid checks if the mode is valid
func (m Mode) IsValid() bool {
	switch m {
	case ModeSignature, ModePremier:
		return true
	default:
		return false
	}
}

// String returns the string representation of the mode
func (m Mode) String() string {
	return string(m)
}

// ParseMode parses a string into a Mode
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid mode: %s", s)
	}
	return mode, nil
}
