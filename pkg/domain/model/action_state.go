package model

import (
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// ActionState is the client-side triage state of a single case. It is
// created implicitly on first write and owned entirely by this service;
// the CRM record is never touched.
type ActionState struct {
	CaseID      types.CaseID
	ActionTaken bool
	SnoozeUntil *time.Time
	UpdatedAt   time.Time
}

// Snoozed reports whether the case has a live snooze at the given instant.
func (s *ActionState) Snoozed(now time.Time) bool {
	return s.SnoozeUntil != nil && now.Before(*s.SnoozeUntil)
}
