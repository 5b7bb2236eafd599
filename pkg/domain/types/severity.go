package types

import "strings"

// Severity represents the normalized severity class of a case.
// Ordering: Critical > Urgent > Other.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityUrgent   Severity = "urgent"
	SeverityOther    Severity = "other"
)

// AllSeverities returns all normalized severity classes
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityUrgent,
		SeverityOther,
	}
}

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityUrgent, SeverityOther:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity normalizes a raw CRM severity label such as
// "Level 1 - Critical" or "Level 2 - Urgent". Labels outside the known
// set map to SeverityOther.
func ParseSeverity(raw string) Severity {
	switch {
	case strings.Contains(raw, "Critical"):
		return SeverityCritical
	case strings.Contains(raw, "Urgent"):
		return SeverityUrgent
	default:
		return SeverityOther
	}
}
