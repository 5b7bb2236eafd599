package model

import (
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// TrackedActionKey marks that a specific human action on a case has been
// written to the external logbook. At most one logbook append ever
// happens per key; the tracked-action repository is the sole gatekeeper.
type TrackedActionKey struct {
	Mode       types.Mode
	CaseID     types.CaseID
	ActionType types.ActionType
}

// Validate checks the key components
func (k TrackedActionKey) Validate() error {
	if !k.Mode.IsValid() {
		return goerr.New("invalid mode in tracked action key", goerr.V("mode", k.Mode))
	}
	if k.CaseID == "" {
		return goerr.New("tracked action key has no case ID")
	}
	if !k.ActionType.IsValid() {
		return goerr.New("invalid action type in tracked action key", goerr.V("action_type", k.ActionType))
	}
	return nil
}

// DocID returns the storage document identifier for the key. The three
// components are joined with a separator that cannot appear in any of
// them, so distinct keys never collide.
func (k TrackedActionKey) DocID() string {
	return fmt.Sprintf("%s:%s:%s", k.Mode, k.CaseID, k.ActionType)
}

// TrackedAction is the persisted dedup mark plus the evidence that
// produced it.
type TrackedAction struct {
	Key        TrackedActionKey
	AssignedTo string
	Source     types.DetectionSource
	TrackedAt  time.Time
}
