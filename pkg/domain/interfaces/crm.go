package interfaces

import (
	"context"

	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// CRMClient is the record source. Batches are returned in the backend's
// own order (creation time descending); identifiers are unique within a
// batch but creation times are not guaranteed monotonic across batches.
type CRMClient interface {
	// Query fetches the case batch for the given mode
	Query(ctx context.Context, mode types.Mode) ([]*model.CaseRecord, error)

	// QueryHistory fetches ownership/status change events for the cases,
	// restricted to those created by the given user
	QueryHistory(ctx context.Context, caseIDs []types.CaseID, userID string) ([]*model.HistoryEvent, error)

	// QueryComments fetches discussion feed entries for the cases
	QueryComments(ctx context.Context, caseIDs []types.CaseID) ([]*model.CommentEvent, error)

	// GetUserName resolves a user identifier to a display name
	GetUserName(ctx context.Context, ref types.RecordRef) (string, error)

	// GetGroupName resolves a group identifier to a display name
	GetGroupName(ctx context.Context, ref types.RecordRef) (string, error)

	// CurrentUserID returns the authenticated user's identifier
	CurrentUserID() string
}
