package model

import (
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// CaseView is the render-ready projection of one surviving case. Views
// are emitted in fetch order; the pipeline imposes no re-sort beyond the
// query's own ordering.
type CaseView struct {
	ID          types.CaseID  `json:"id"`
	CaseNumber  string        `json:"case_number"`
	Subject     string        `json:"subject"`
	Severity    string        `json:"severity"`
	Cloud       string        `json:"cloud"`
	OwnerName   string        `json:"owner_name"`
	CreatedAt   time.Time     `json:"created_at"`
	Age         time.Duration `json:"age"`
	Rule        Rule          `json:"rule"`
	ActionTaken bool          `json:"action_taken"`
}

// PollResult is the outcome of one poll cycle.
type PollResult struct {
	Mode             types.Mode  `json:"mode"`
	Views            []*CaseView `json:"views"`
	DisplayedCount   int         `json:"displayed_count"`
	ActionTakenCount int         `json:"action_taken_count"`
	// Foreground is true when unhandled cases remain and the UI should be
	// brought to the user's attention.
	Foreground bool      `json:"foreground"`
	PolledAt   time.Time `json:"polled_at"`
}

// AllClear reports whether the cycle surfaced nothing actionable.
func (r *PollResult) AllClear() bool {
	return r.DisplayedCount == 0
}
