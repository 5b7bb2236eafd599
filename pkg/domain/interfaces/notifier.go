package interfaces

import (
	"context"

	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// Notifier receives the two-message attention signal computed at the end
// of each poll cycle.
type Notifier interface {
	// NotifyAttention is sent when unhandled due cases remain
	NotifyAttention(ctx context.Context, result *model.PollResult) error

	// NotifyAllClear is sent when the cycle surfaced nothing actionable or
	// every displayed case already has an action recorded
	NotifyAllClear(ctx context.Context, mode types.Mode) error
}
