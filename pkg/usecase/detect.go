package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/model/config"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/utils/async"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
)

const unknownAssignee = "Unknown"

// runDetection executes the comment and history scans over the due
// records. Scan failures are logged and skipped; detection is best
// effort and the next cycle retries naturally.
func (uc *UseCases) runDetection(ctx context.Context, mode types.Mode, records []*model.CaseRecord) []string {
	var applied []string

	userID := uc.crm.CurrentUserID()
	if userID == "" {
		logging.From(ctx).Warn("no authenticated user, skipping detection scans")
		return nil
	}

	byID := make(map[types.CaseID]*model.CaseRecord, len(records))
	ids := make([]types.CaseID, 0, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	applied = append(applied, uc.scanComments(ctx, mode, ids, byID, userID)...)
	applied = append(applied, uc.scanHistory(ctx, mode, ids, byID, userID)...)
	return applied
}

// scanComments looks for the triage marker in feed comments written by
// the current user.
func (uc *UseCases) scanComments(ctx context.Context, mode types.Mode, ids []types.CaseID, byID map[types.CaseID]*model.CaseRecord, userID string) []string {
	comments, err := uc.crm.QueryComments(ctx, ids)
	if err != nil {
		logging.From(ctx).Warn("comment scan failed", "error", err.Error())
		return nil
	}

	var applied []string
	marker := strings.ToLower(uc.triage.CommentMarker)
	seen := map[types.CaseID]bool{}
	for _, cm := range comments {
		if cm.CreatedBy != userID || seen[cm.CaseID] {
			continue
		}
		if !strings.Contains(strings.ToLower(cm.Body), marker) {
			continue
		}
		seen[cm.CaseID] = true

		rec := byID[cm.CaseID]
		action := &model.TrackedAction{
			Key: model.TrackedActionKey{
				Mode:       mode,
				CaseID:     cm.CaseID,
				ActionType: types.ActionTypeGHO,
			},
			AssignedTo: uc.resolveAssignedTo(ctx, "", rec),
			Source:     types.DetectionComment,
		}
		if uc.trackAndLog(ctx, action, rec) {
			applied = append(applied, string(types.ActionTypeGHO)+" via comment")
		}
	}
	return applied
}

// scanHistory looks for ownership or status changes made by the current
// user. When a case has several, the configured ordering picks the
// evidence event.
func (uc *UseCases) scanHistory(ctx context.Context, mode types.Mode, ids []types.CaseID, byID map[types.CaseID]*model.CaseRecord, userID string) []string {
	events, err := uc.crm.QueryHistory(ctx, ids, userID)
	if err != nil {
		logging.From(ctx).Warn("history scan failed", "error", err.Error())
		return nil
	}

	picked := map[types.CaseID]*model.HistoryEvent{}
	for _, ev := range events {
		if ev.CreatedBy != userID {
			continue
		}
		cur, exists := picked[ev.CaseID]
		if !exists {
			picked[ev.CaseID] = ev
			continue
		}
		switch uc.triage.HistoryPick {
		case config.HistoryPickLatest:
			if ev.CreatedAt.After(cur.CreatedAt) {
				picked[ev.CaseID] = ev
			}
		default:
			if ev.CreatedAt.Before(cur.CreatedAt) {
				picked[ev.CaseID] = ev
			}
		}
	}

	var applied []string
	for caseID, ev := range picked {
		rec := byID[caseID]
		action := &model.TrackedAction{
			Key: model.TrackedActionKey{
				Mode:       mode,
				CaseID:     caseID,
				ActionType: types.ActionTypeNewCase,
			},
			AssignedTo: uc.resolveAssignedTo(ctx, ev.NewValue, rec),
			Source:     types.DetectionHistory,
		}
		if uc.trackAndLog(ctx, action, rec) {
			applied = append(applied, string(types.ActionTypeNewCase)+" via history")
		}
	}
	return applied
}

// resolveAssignedTo resolves a human-readable assignee. The fallback
// chain order is significant: explicit history value, name lookup for an
// identifier-shaped value, case owner, then a literal placeholder.
// Lookup failures are never fatal; the chain falls through.
func (uc *UseCases) resolveAssignedTo(ctx context.Context, value types.RecordRef, rec *model.CaseRecord) string {
	if value != "" {
		switch {
		case value.IsUserID():
			if name, err := uc.crm.GetUserName(ctx, value); err == nil && name != "" {
				return name
			} else if err != nil {
				logging.From(ctx).Warn("user lookup failed", "ref", value, "error", err.Error())
			}
		case value.IsGroupID():
			if name, err := uc.crm.GetGroupName(ctx, value); err == nil && name != "" {
				return name
			} else if err != nil {
				logging.From(ctx).Warn("group lookup failed", "ref", value, "error", err.Error())
			}
		default:
			// A plain name passes through unresolved.
			return value.String()
		}
	}

	if rec != nil && rec.OwnerName != "" {
		return rec.OwnerName
	}
	return unknownAssignee
}

// trackAndLog is the single gate between detection and the external
// logbook. The mark is taken synchronously before the append is
// dispatched: a concurrently running detector sees the mark even while
// the append is still in flight, which is what guarantees at most one
// append per key. The mark is never rolled back on append failure.
func (uc *UseCases) trackAndLog(ctx context.Context, action *model.TrackedAction, rec *model.CaseRecord) bool {
	already, err := uc.repo.TrackedAction().Mark(ctx, action)
	if err != nil {
		logging.From(ctx).Error("failed to mark tracked action",
			"key", action.Key.DocID(),
			"error", err.Error(),
		)
		return false
	}
	if already {
		return false
	}

	// A detected action is handled by definition; the flag must follow so
	// the rendered view agrees with the logbook.
	if err := uc.repo.ActionState().SetActionTaken(ctx, action.Key.CaseID, true); err != nil {
		logging.From(ctx).Error("failed to set action taken",
			"key", action.Key.DocID(),
			"error", err.Error(),
		)
	}

	logging.From(ctx).Info("triage action tracked",
		"key", action.Key.DocID(),
		"assigned_to", action.AssignedTo,
		"source", action.Source,
	)

	if uc.logbook == nil {
		return true
	}

	entry := &model.LogEntry{
		LoggedAt:   time.Now(),
		AssignedTo: action.AssignedTo,
		ActionType: action.Key.ActionType,
	}
	if rec != nil {
		entry.CaseNumber = rec.CaseNumber
		entry.Severity = rec.SeverityRaw
		entry.Cloud = rec.CloudCategory()
	} else {
		entry.CaseNumber = action.Key.CaseID.String()
	}

	mode := action.Key.Mode
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.logbook.Append(ctx, mode, entry)
	})
	return true
}
