package model

import (
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// HistoryEvent is an ownership or routing-status change on a case.
type HistoryEvent struct {
	CaseID    types.CaseID
	Field     string
	OldValue  types.RecordRef
	NewValue  types.RecordRef
	CreatedBy string
	CreatedAt time.Time
}

// CommentEvent is an entry in a case's discussion feed.
type CommentEvent struct {
	CaseID    types.CaseID
	Body      string
	CreatedBy string
	CreatedAt time.Time
}
