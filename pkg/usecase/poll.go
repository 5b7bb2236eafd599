package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
)

// RunPollCycle executes one fetch → evaluate → reconcile → render pass
// for the given mode. Cycles may overlap (a slow cycle still in flight
// when the next tick fires); the idempotent dedup mark is what prevents
// duplicate external writes under that overlap, so nothing here assumes
// exclusivity.
func (uc *UseCases) RunPollCycle(ctx context.Context, mode types.Mode) (*model.PollResult, error) {
	if !mode.IsValid() {
		return nil, goerr.New("invalid mode", goerr.V(ModeKey, mode))
	}

	logger := logging.From(ctx)

	records, err := uc.crm.Query(ctx, mode)
	if err != nil {
		return nil, goerr.Wrap(ErrFetchFailed, "aborting poll cycle",
			goerr.V(ModeKey, mode),
			goerr.V("cause", err.Error()))
	}

	// Stale-cycle guard: the fetch suspended this flow, and the active
	// mode may have been switched underneath it. A stale batch must be
	// discarded, never rendered.
	if err := uc.checkStale(ctx, mode); err != nil {
		return nil, err
	}

	now := time.Now()

	var due []*model.CaseRecord
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			logger.Warn("skipping malformed case record", "error", err.Error())
			continue
		}

		decision := model.Evaluate(rec, now, uc.triage)
		if !decision.Due {
			continue
		}
		due = append(due, rec)
	}

	// Detection scans run before render so freshly discovered actions are
	// reflected in the actionTaken flags below.
	if len(due) > 0 {
		uc.runDetection(ctx, mode, due)
	}

	result := &model.PollResult{
		Mode:     mode,
		Views:    []*model.CaseView{},
		PolledAt: now,
	}

	for _, rec := range due {
		snoozeUntil, err := uc.repo.ActionState().GetSnoozeUntil(ctx, rec.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read snooze state", goerr.V(CaseIDKey, rec.ID))
		}
		if snoozeUntil != nil {
			continue
		}

		taken, err := uc.repo.ActionState().IsActionTaken(ctx, rec.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read action state", goerr.V(CaseIDKey, rec.ID))
		}

		decision := model.Evaluate(rec, now, uc.triage)
		result.Views = append(result.Views, &model.CaseView{
			ID:          rec.ID,
			CaseNumber:  rec.CaseNumber,
			Subject:     rec.Subject,
			Severity:    rec.SeverityRaw,
			Cloud:       rec.CloudCategory(),
			OwnerName:   rec.OwnerName,
			CreatedAt:   rec.CreatedAt,
			Age:         rec.Age(now),
			Rule:        decision.Rule,
			ActionTaken: taken,
		})
		if taken {
			result.ActionTakenCount++
		}
	}
	result.DisplayedCount = len(result.Views)
	result.Foreground = result.ActionTakenCount < result.DisplayedCount

	// The reads above also suspended; re-check before handing the result
	// to the renderer.
	if err := uc.checkStale(ctx, mode); err != nil {
		return nil, err
	}

	logger.Info("poll cycle completed",
		"mode", mode,
		"fetched", len(records),
		"due", len(due),
		"displayed", result.DisplayedCount,
		"action_taken", result.ActionTakenCount,
		"foreground", result.Foreground,
	)
	return result, nil
}

// checkStale compares the mode captured at fetch start with the
// currently persisted preference.
func (uc *UseCases) checkStale(ctx context.Context, started types.Mode) error {
	active, err := uc.repo.Preference().GetMode(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to read active mode")
	}
	if active != started {
		return goerr.Wrap(ErrStaleCycle, "discarding stale batch",
			goerr.V("started_mode", started),
			goerr.V("active_mode", active))
	}
	return nil
}

// SwitchMode changes the active queue. In-flight cycles for the old mode
// are not cancelled; their results fail the stale-cycle guard instead.
func (uc *UseCases) SwitchMode(ctx context.Context, mode types.Mode) error {
	if !mode.IsValid() {
		return goerr.New("invalid mode", goerr.V(ModeKey, mode))
	}
	if err := uc.repo.Preference().SetMode(ctx, mode); err != nil {
		return goerr.Wrap(err, "failed to switch mode", goerr.V(ModeKey, mode))
	}
	logging.From(ctx).Info("mode switched", "mode", mode)
	return nil
}

// ActiveMode returns the persisted queue preference.
func (uc *UseCases) ActiveMode(ctx context.Context) (types.Mode, error) {
	return uc.repo.Preference().GetMode(ctx)
}
