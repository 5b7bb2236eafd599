package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
)

type trackedActionRepository struct {
	mu    sync.Mutex
	marks map[model.TrackedActionKey]*model.TrackedAction
}

func newTrackedActionRepository() *trackedActionRepository {
	return &trackedActionRepository{
		marks: make(map[model.TrackedActionKey]*model.TrackedAction),
	}
}

func copyTrackedAction(a *model.TrackedAction) *model.TrackedAction {
	copied := *a
	return &copied
}

func (r *trackedActionRepository) AlreadyTracked(ctx context.Context, key model.TrackedActionKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, goerr.Wrap(err, "invalid tracked action key")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.marks[key]
	return exists, nil
}

// Mark is the atomic check-then-mark step. The mutex makes the test and
// the set a single step relative to concurrent detectors, so the winner
// is decided before any logbook append goes out.
func (r *trackedActionRepository) Mark(ctx context.Context, action *model.TrackedAction) (bool, error) {
	if err := action.Key.Validate(); err != nil {
		return false, goerr.Wrap(err, "invalid tracked action key")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.marks[action.Key]; exists {
		return true, nil
	}

	stored := copyTrackedAction(action)
	if stored.TrackedAt.IsZero() {
		stored.TrackedAt = time.Now().UTC()
	}
	r.marks[action.Key] = stored
	return false, nil
}

func (r *trackedActionRepository) Reset(ctx context.Context, key model.TrackedActionKey) error {
	if err := key.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tracked action key")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.marks, key)
	return nil
}

func (r *trackedActionRepository) Get(ctx context.Context, key model.TrackedActionKey) (*model.TrackedAction, error) {
	if err := key.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tracked action key")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.marks[key]
	if !exists {
		return nil, nil
	}
	return copyTrackedAction(a), nil
}
