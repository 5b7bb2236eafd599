package memory

import (
	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	actionState   *actionStateRepository
	trackedAction *trackedActionRepository
	preference    *preferenceRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		actionState:   newActionStateRepository(),
		trackedAction: newTrackedActionRepository(),
		preference:    newPreferenceRepository(),
	}
}

func (m *Memory) ActionState() interfaces.ActionStateRepository {
	return m.actionState
}

func (m *Memory) TrackedAction() interfaces.TrackedActionRepository {
	return m.trackedAction
}

func (m *Memory) Preference() interfaces.PreferenceRepository {
	return m.preference
}

func (m *Memory) Close() error {
	return nil
}
