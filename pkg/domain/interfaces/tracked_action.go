package interfaces

import (
	"context"

	"github.com/secmon-lab/queuewatch/pkg/domain/model"
)

// TrackedActionRepository is the sole gatekeeper for logbook appends.
// Each (mode, caseID, actionType) key triggers at most one external
// write, ever, even when multiple detection paths race to discover the
// same human action across overlapping poll cycles.
type TrackedActionRepository interface {
	// AlreadyTracked reports whether the key has been marked
	AlreadyTracked(ctx context.Context, key model.TrackedActionKey) (bool, error)

	// Mark marks the key atomically and stores the evidence. It returns
	// already=true when the key was marked before this call, in which case
	// the stored evidence is left untouched. Re-marking is a no-op.
	Mark(ctx context.Context, action *model.TrackedAction) (already bool, err error)

	// Reset clears the mark so a subsequent detection can log again.
	// Resetting an unmarked key is a no-op.
	Reset(ctx context.Context, key model.TrackedActionKey) error

	// Get returns the stored mark, or nil when the key is unmarked
	Get(ctx context.Context, key model.TrackedActionKey) (*model.TrackedAction, error)
}
