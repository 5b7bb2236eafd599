package memory

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

type actionStateRepository struct {
	mu     sync.Mutex
	states map[types.CaseID]*model.ActionState
}

func newActionStateRepository() *actionStateRepository {
	return &actionStateRepository{
		states: make(map[types.CaseID]*model.ActionState),
	}
}

// ensure returns the entry for the case, creating it implicitly on first
// write. Callers must hold the mutex.
func (r *actionStateRepository) ensure(caseID types.CaseID) *model.ActionState {
	if s, exists := r.states[caseID]; exists {
		return s
	}
	s := &model.ActionState{CaseID: caseID}
	r.states[caseID] = s
	return s
}

func (r *actionStateRepository) IsActionTaken(ctx context.Context, caseID types.CaseID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.states[caseID]
	if !exists {
		return false, nil
	}
	return s.ActionTaken, nil
}

func (r *actionStateRepository) SetActionTaken(ctx context.Context, caseID types.CaseID, taken bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.ensure(caseID)
	s.ActionTaken = taken
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *actionStateRepository) GetSnoozeUntil(ctx context.Context, caseID types.CaseID) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.states[caseID]
	if !exists || s.SnoozeUntil == nil {
		return nil, nil
	}

	if !time.Now().Before(*s.SnoozeUntil) {
		// Expired: evict lazily as a side effect of the read.
		s.SnoozeUntil = nil
		if !s.ActionTaken {
			delete(r.states, caseID)
		}
		return nil, nil
	}

	t := *s.SnoozeUntil
	return &t, nil
}

func (r *actionStateRepository) Snooze(ctx context.Context, caseID types.CaseID, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.ensure(caseID)
	u := until
	s.SnoozeUntil = &u
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *actionStateRepository) ClearSnooze(ctx context.Context, caseID types.CaseID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.states[caseID]
	if !exists {
		return nil
	}
	s.SnoozeUntil = nil
	s.UpdatedAt = time.Now().UTC()
	return nil
}
