package model

import (
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// LogEntry is one row appended to the external triage logbook.
type LogEntry struct {
	LoggedAt   time.Time
	CaseNumber string
	AssignedTo string
	Severity   string
	Cloud      string
	ActionType types.ActionType
}

// Row renders the entry as the spreadsheet row layout:
// [date, time, caseNumber, user, severity, cloud].
func (e *LogEntry) Row() []any {
	return []any{
		e.LoggedAt.Format("2006-01-02"),
		e.LoggedAt.Format("15:04:05"),
		e.CaseNumber,
		e.AssignedTo,
		e.Severity,
		e.Cloud,
	}
}
