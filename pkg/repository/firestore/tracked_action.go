package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type trackedActionDoc struct {
	Mode       string    `firestore:"mode"`
	CaseID     string    `firestore:"case_id"`
	ActionType string    `firestore:"action_type"`
	AssignedTo string    `firestore:"assigned_to"`
	Source     string    `firestore:"source"`
	TrackedAt  time.Time `firestore:"tracked_at"`
}

type trackedActionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTrackedActionRepository(client *firestore.Client) *trackedActionRepository {
	return &trackedActionRepository{client: client}
}

func (r *trackedActionRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_tracked_actions"
	}
	return "tracked_actions"
}

func (r *trackedActionRepository) doc(key model.TrackedActionKey) *firestore.DocumentRef {
	return r.client.Collection(r.collection()).Doc(key.DocID())
}

func (r *trackedActionRepository) AlreadyTracked(ctx context.Context, key model.TrackedActionKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, goerr.Wrap(err, "invalid tracked action key")
	}

	_, err := r.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get tracked action", goerr.V("key", key.DocID()))
	}
	return true, nil
}

// Mark relies on Firestore's Create precondition: the first writer wins,
// any later writer observes AlreadyExists. This makes the check and the
// mark a single atomic step even across process instances.
func (r *trackedActionRepository) Mark(ctx context.Context, action *model.TrackedAction) (bool, error) {
	if err := action.Key.Validate(); err != nil {
		return false, goerr.Wrap(err, "invalid tracked action key")
	}

	trackedAt := action.TrackedAt
	if trackedAt.IsZero() {
		trackedAt = time.Now().UTC()
	}

	_, err := r.doc(action.Key).Create(ctx, &trackedActionDoc{
		Mode:       action.Key.Mode.String(),
		CaseID:     action.Key.CaseID.String(),
		ActionType: action.Key.ActionType.String(),
		AssignedTo: action.AssignedTo,
		Source:     action.Source.String(),
		TrackedAt:  trackedAt,
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return true, nil
		}
		return false, goerr.Wrap(err, "failed to mark tracked action", goerr.V("key", action.Key.DocID()))
	}
	return false, nil
}

func (r *trackedActionRepository) Reset(ctx context.Context, key model.TrackedActionKey) error {
	if err := key.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tracked action key")
	}

	if _, err := r.doc(key).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to reset tracked action", goerr.V("key", key.DocID()))
	}
	return nil
}

func (r *trackedActionRepository) Get(ctx context.Context, key model.TrackedActionKey) (*model.TrackedAction, error) {
	if err := key.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tracked action key")
	}

	snap, err := r.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get tracked action", goerr.V("key", key.DocID()))
	}

	var d trackedActionDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode tracked action", goerr.V("key", key.DocID()))
	}

	return &model.TrackedAction{
		Key: model.TrackedActionKey{
			Mode:       types.Mode(d.Mode),
			CaseID:     types.CaseID(d.CaseID),
			ActionType: types.ActionType(d.ActionType),
		},
		AssignedTo: d.AssignedTo,
		Source:     types.DetectionSource(d.Source),
		TrackedAt:  d.TrackedAt,
	}, nil
}
