package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// ActionStateRepository tracks per-case triage state owned by this
// service. Entries are created implicitly on first write.
type ActionStateRepository interface {
	// IsActionTaken reports whether an action has been recorded for the case
	IsActionTaken(ctx context.Context, caseID types.CaseID) (bool, error)

	// SetActionTaken records or clears the action-taken flag
	SetActionTaken(ctx context.Context, caseID types.CaseID, taken bool) error

	// GetSnoozeUntil returns the snooze expiry, or nil when the case is not
	// snoozed. An expired snooze is treated as nil and evicted as a side
	// effect of the read (lazy cleanup, no background timers).
	GetSnoozeUntil(ctx context.Context, caseID types.CaseID) (*time.Time, error)

	// Snooze sets the snooze expiry, overwriting any prior value
	Snooze(ctx context.Context, caseID types.CaseID, until time.Time) error

	// ClearSnooze removes the snooze explicitly
	ClearSnooze(ctx context.Context, caseID types.CaseID) error
}
