package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
)

type Firestore struct {
	client        *firestore.Client
	actionState   *actionStateRepository
	trackedAction *trackedActionRepository
	preference    *preferenceRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests
// sharing one project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.actionState.collectionPrefix = prefix
		f.trackedAction.collectionPrefix = prefix
		f.preference.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:        client,
		actionState:   newActionStateRepository(client),
		trackedAction: newTrackedActionRepository(client),
		preference:    newPreferenceRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) ActionState() interfaces.ActionStateRepository {
	return f.actionState
}

func (f *Firestore) TrackedAction() interfaces.TrackedActionRepository {
	return f.trackedAction
}

func (f *Firestore) Preference() interfaces.PreferenceRepository {
	return f.preference
}

func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
