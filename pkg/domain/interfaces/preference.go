package interfaces

import (
	"context"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// PreferenceRepository persists the user-selected queue context.
type PreferenceRepository interface {
	// GetMode returns the active mode, defaulting to signature when unset
	GetMode(ctx context.Context) (types.Mode, error)

	// SetMode switches the active mode
	SetMode(ctx context.Context, mode types.Mode) error
}
