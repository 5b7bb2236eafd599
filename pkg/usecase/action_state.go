package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
)

// SnoozeCase hides a case from the due set for the given number of
// minutes, overwriting any earlier snooze.
func (uc *UseCases) SnoozeCase(ctx context.Context, caseID types.CaseID, minutes int) error {
	if caseID == "" {
		return goerr.New("case ID is required")
	}
	if minutes <= 0 {
		return goerr.New("snooze duration must be positive",
			goerr.V(CaseIDKey, caseID),
			goerr.V("minutes", minutes))
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := uc.repo.ActionState().Snooze(ctx, caseID, until); err != nil {
		return goerr.Wrap(err, "failed to snooze case", goerr.V(CaseIDKey, caseID))
	}

	logging.From(ctx).Info("case snoozed",
		"case_id", caseID,
		"minutes", minutes,
		"until", until,
	)
	return nil
}

// WakeCase clears a snooze explicitly before it expires.
func (uc *UseCases) WakeCase(ctx context.Context, caseID types.CaseID) error {
	if caseID == "" {
		return goerr.New("case ID is required")
	}
	if err := uc.repo.ActionState().ClearSnooze(ctx, caseID); err != nil {
		return goerr.Wrap(err, "failed to clear snooze", goerr.V(CaseIDKey, caseID))
	}
	return nil
}

// ToggleActionTaken records or clears the checkbox state. Clearing is
// only ever done by an explicit user un-check; nothing clears it
// automatically.
func (uc *UseCases) ToggleActionTaken(ctx context.Context, caseID types.CaseID, taken bool) error {
	if caseID == "" {
		return goerr.New("case ID is required")
	}
	if err := uc.repo.ActionState().SetActionTaken(ctx, caseID, taken); err != nil {
		return goerr.Wrap(err, "failed to set action taken", goerr.V(CaseIDKey, caseID))
	}
	return nil
}

// ConfirmAction is the manual detection path: the user explicitly
// confirms in a dialog that they handled the case. It marks the dedup
// key, appends to the logbook exactly like the scan paths, and sets the
// action-taken flag. Callers without the record at hand may pass nil;
// it is then resolved from the active mode's batch.
func (uc *UseCases) ConfirmAction(ctx context.Context, caseID types.CaseID, actionType types.ActionType, rec *model.CaseRecord) error {
	if caseID == "" {
		return goerr.New("case ID is required")
	}
	if !actionType.IsValid() {
		return goerr.New("invalid action type", goerr.V("action_type", actionType))
	}

	mode, err := uc.repo.Preference().GetMode(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to read active mode")
	}

	if rec == nil {
		rec = uc.lookupCase(ctx, mode, caseID)
	}

	action := &model.TrackedAction{
		Key: model.TrackedActionKey{
			Mode:       mode,
			CaseID:     caseID,
			ActionType: actionType,
		},
		AssignedTo: uc.resolveAssignedTo(ctx, "", rec),
		Source:     types.DetectionManual,
	}
	uc.trackAndLog(ctx, action, rec)

	if err := uc.repo.ActionState().SetActionTaken(ctx, caseID, true); err != nil {
		return goerr.Wrap(err, "failed to set action taken", goerr.V(CaseIDKey, caseID))
	}
	return nil
}

// lookupCase finds the case in the given mode's current batch.
// Resolution is best effort: an unavailable batch degrades the logbook
// entry, it does not block the confirmation.
func (uc *UseCases) lookupCase(ctx context.Context, mode types.Mode, caseID types.CaseID) *model.CaseRecord {
	records, err := uc.crm.Query(ctx, mode)
	if err != nil {
		logging.From(ctx).Warn("batch lookup for confirmation failed",
			"case_id", caseID,
			"error", err.Error(),
		)
		return nil
	}
	for _, rec := range records {
		if rec.ID == caseID {
			return rec
		}
	}
	return nil
}
