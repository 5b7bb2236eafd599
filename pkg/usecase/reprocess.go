package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
)

// ReprocessResult reports what a forced reprocess ended up re-applying.
type ReprocessResult struct {
	CaseID         types.CaseID `json:"case_id"`
	ActionsApplied []string     `json:"actions_applied"`
}

// ForceReprocess clears the dedup marks for a single case in the active
// mode and re-runs detection, so an action can be logged again. The
// reset is idempotent: reprocessing a case with no marks is harmless.
func (uc *UseCases) ForceReprocess(ctx context.Context, caseRef string) (*ReprocessResult, error) {
	if caseRef == "" {
		return nil, goerr.New("case identifier or number is required")
	}

	mode, err := uc.repo.Preference().GetMode(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read active mode")
	}

	records, err := uc.crm.Query(ctx, mode)
	if err != nil {
		return nil, goerr.Wrap(ErrFetchFailed, "cannot reprocess without a batch",
			goerr.V(ModeKey, mode),
			goerr.V("cause", err.Error()))
	}

	var target *model.CaseRecord
	for _, rec := range records {
		if rec.ID.String() == caseRef || rec.CaseNumber == caseRef {
			target = rec
			break
		}
	}
	if target == nil {
		return nil, goerr.Wrap(ErrCaseNotFound, "reprocess target not in batch",
			goerr.V(ModeKey, mode),
			goerr.V("case_ref", caseRef))
	}

	for _, actionType := range types.AllActionTypes() {
		key := model.TrackedActionKey{Mode: mode, CaseID: target.ID, ActionType: actionType}
		if err := uc.repo.TrackedAction().Reset(ctx, key); err != nil {
			return nil, goerr.Wrap(err, "failed to reset tracked action", goerr.V("key", key.DocID()))
		}
	}

	logging.From(ctx).Info("dedup marks reset for reprocess",
		"case_id", target.ID,
		"mode", mode,
	)

	applied := uc.runDetection(ctx, mode, []*model.CaseRecord{target})
	return &ReprocessResult{
		CaseID:         target.ID,
		ActionsApplied: applied,
	}, nil
}
