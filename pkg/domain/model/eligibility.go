package model

import (
	"time"

	"github.com/secmon-lab/queuewatch/pkg/domain/model/config"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
)

// Rule identifies which eligibility rule decided a case.
type Rule string

const (
	RuleAlwaysUrgent Rule = "always-urgent"
	RuleWeekend      Rule = "weekend"
	RuleCritical     Rule = "critical"
	RuleDefault      Rule = "default"
)

// Decision is the per-case, per-instant eligibility outcome. It is never
// persisted; every poll recomputes it.
type Decision struct {
	Due       bool
	Rule      Rule
	Threshold time.Duration
}

// Evaluate decides whether a case is due for action at the given instant.
// Rule precedence, first match wins:
//  1. always-urgent taxonomy: due unconditionally
//  2. weekend window: 1 minute threshold for any severity
//  3. critical severity: 5 minutes, anything else: 20 minutes
//
// Thresholds come from cfg and are re-derived on every call; nothing is
// cached because "now" advances between polls and the weekend boundary
// can be crossed mid-session.
func Evaluate(rec *CaseRecord, now time.Time, cfg *config.TriageConfig) Decision {
	if cfg.IsAlwaysUrgent(rec.Taxonomy) {
		return Decision{Due: true, Rule: RuleAlwaysUrgent}
	}

	rule := RuleDefault
	thresholdMin := cfg.DefaultThresholdMin

	switch {
	case IsWeekend(now, cfg.Location):
		rule = RuleWeekend
		thresholdMin = cfg.WeekendThresholdMin
	case rec.Severity() == types.SeverityCritical:
		rule = RuleCritical
		thresholdMin = cfg.CriticalThresholdMin
	}

	threshold := time.Duration(thresholdMin) * time.Minute
	return Decision{
		Due:       !now.Before(rec.CreatedAt.Add(threshold)),
		Rule:      rule,
		Threshold: threshold,
	}
}
