package config

import (
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// HistoryPick selects which of the current user's history events is taken
// as evidence when the history scan finds more than one.
type HistoryPick string

const (
	HistoryPickEarliest HistoryPick = "earliest"
	HistoryPickLatest   HistoryPick = "latest"
)

// IsValid checks if the history pick is valid
func (p HistoryPick) IsValid() bool {
	switch p {
	case HistoryPickEarliest, HistoryPickLatest:
		return true
	default:
		return false
	}
}

// TriageConfig carries the domain-level triage rules resolved from the
// application configuration file.
type TriageConfig struct {
	// AlwaysUrgent lists routing taxonomy names whose cases are due
	// unconditionally, regardless of creation time.
	AlwaysUrgent []string

	// Thresholds in minutes
	WeekendThresholdMin  int
	CriticalThresholdMin int
	DefaultThresholdMin  int

	// Location is the reference timezone for the weekend window.
	Location *time.Location

	// HistoryPick is the history-scan ordering preference.
	HistoryPick HistoryPick

	// CommentMarker is the textual marker a comment must contain to count
	// as triage evidence.
	CommentMarker string

	// Queries maps each mode to the CRM query filter expression.
	Queries map[types.Mode]string
}

// DefaultTriageConfig returns the built-in triage rules used when no
// configuration file is supplied.
func DefaultTriageConfig() *TriageConfig {
	return &TriageConfig{
		AlwaysUrgent: []string{
			"Sales-Issues Developing for Salesforce Functions (Product)",
		},
		WeekendThresholdMin:  1,
		CriticalThresholdMin: 5,
		DefaultThresholdMin:  20,
		Location:             time.FixedZone("IST", (5*60+30)*60),
		HistoryPick:          HistoryPickEarliest,
		CommentMarker:        "#gho",
		Queries:              map[types.Mode]string{},
	}
}

// IsAlwaysUrgent reports whether the taxonomy is in the always-urgent set.
func (c *TriageConfig) IsAlwaysUrgent(taxonomy string) bool {
	for _, t := range c.AlwaysUrgent {
		if t == taxonomy {
			return true
		}
	}
	return false
}
