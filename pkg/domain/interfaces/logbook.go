package interfaces

import (
	"context"

	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// Logbook is the external append-only triage log. Appends are
// fire-and-forget from the pipeline's perspective: a failed append is
// logged but the dedup mark is not rolled back (at-most-once).
type Logbook interface {
	Append(ctx context.Context, mode types.Mode, entry *model.LogEntry) error
}
