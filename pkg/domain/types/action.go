package types

import "fmt"

// ActionType identifies the kind of triage action written to the logbook.
type ActionType string

const (
	ActionTypeNewCase ActionType = "new_case"
	ActionTypeGHO     ActionType = "gho"
)

// AllActionTypes returns all valid action types
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionTypeNewCase,
		ActionTypeGHO,
	}
}

// IsValid checks if the action type is valid
func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeNewCase, ActionTypeGHO:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action type
func (t ActionType) String() string {
	return string(t)
}

// ParseActionType parses a string into an ActionType
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid action type: %s", s)
	}
	return t, nil
}

// DetectionSource identifies which path discovered a triage action.
type DetectionSource string

const (
	DetectionManual  DetectionSource = "manual"
	DetectionComment DetectionSource = "comment"
	DetectionHistory DetectionSource = "history"
)

// String returns the string representation of the detection source
func (s DetectionSource) String() string {
	return string(s)
}
