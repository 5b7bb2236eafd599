package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type actionStateDoc struct {
	CaseID      string     `firestore:"case_id"`
	ActionTaken bool       `firestore:"action_taken"`
	SnoozeUntil *time.Time `firestore:"snooze_until"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
}

type actionStateRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newActionStateRepository(client *firestore.Client) *actionStateRepository {
	return &actionStateRepository{client: client}
}

func (r *actionStateRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_action_states"
	}
	return "action_states"
}

func (r *actionStateRepository) doc(caseID types.CaseID) *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc(caseID.String())
}

func (r *actionStateRepository) IsActionTaken(ctx context.Context, caseID types.CaseID) (bool, error) {
	snap, err := r.doc(caseID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get action state", goerr.V("case_id", caseID))
	}

	var d actionStateDoc
	if err := snap.DataTo(&d); err != nil {
		return false, goerr.Wrap(err, "failed to decode action state", goerr.V("case_id", caseID))
	}
	return d.ActionTaken, nil
}

func (r *actionStateRepository) SetActionTaken(ctx context.Context, caseID types.CaseID, taken bool) error {
	_, err := r.doc(caseID).Set(ctx, map[string]interface{}{
		"case_id":      caseID.String(),
		"action_taken": taken,
		"updated_at":   time.Now().UTC(),
	}, firestore.MergeAll)
	if err != nil {
		return goerr.Wrap(err, "failed to set action taken", goerr.V("case_id", caseID))
	}
	return nil
}

func (r *actionStateRepository) GetSnoozeUntil(ctx context.Context, caseID types.CaseID) (*time.Time, error) {
	snap, err := r.doc(caseID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get action state", goerr.V("case_id", caseID))
	}

	var d actionStateDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action state", goerr.V("case_id", caseID))
	}

	if d.SnoozeUntil == nil {
		return nil, nil
	}

	if !time.Now().Before(*d.SnoozeUntil) {
		// Expired: evict lazily as a side effect of the read.
		if err := r.evictSnooze(ctx, caseID, d.ActionTaken); err != nil {
			return nil, err
		}
		return nil, nil
	}

	t := *d.SnoozeUntil
	return &t, nil
}

func (r *actionStateRepository) evictSnooze(ctx context.Context, caseID types.CaseID, actionTaken bool) error {
	if !actionTaken {
		if _, err := r.doc(caseID).Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to evict expired snooze", goerr.V("case_id", caseID))
		}
		return nil
	}

	_, err := r.doc(caseID).Update(ctx, []firestore.Update{
		{Path: "snooze_until", Value: nil},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to clear expired snooze", goerr.V("case_id", caseID))
	}
	return nil
}

func (r *actionStateRepository) Snooze(ctx context.Context, caseID types.CaseID, until time.Time) error {
	_, err := r.doc(caseID).Set(ctx, map[string]interface{}{
		"case_id":      caseID.String(),
		"snooze_until": until.UTC(),
		"updated_at":   time.Now().UTC(),
	}, firestore.MergeAll)
	if err != nil {
		return goerr.Wrap(err, "failed to snooze case", goerr.V("case_id", caseID))
	}
	return nil
}

func (r *actionStateRepository) ClearSnooze(ctx context.Context, caseID types.CaseID) error {
	_, err := r.doc(caseID).Update(ctx, []firestore.Update{
		{Path: "snooze_until", Value: nil},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to clear snooze", goerr.V("case_id", caseID))
	}
	return nil
}
