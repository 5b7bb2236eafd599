package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/model/config"
)

func TestEvaluate(t *testing.T) {
	cfg := config.DefaultTriageConfig()

	// Wednesday noon in the reference timezone, well outside weekend
	// coverage.
	weekday := time.Date(2025, 3, 5, 12, 0, 0, 0, cfg.Location)
	// Saturday morning, inside weekend coverage.
	weekend := time.Date(2025, 3, 8, 6, 0, 0, 0, cfg.Location)

	newCase := func(severityRaw, taxonomy string, age time.Duration, now time.Time) *model.CaseRecord {
		return &model.CaseRecord{
			ID:          "500000000000001AAA",
			CaseNumber:  "00112233",
			SeverityRaw: severityRaw,
			Taxonomy:    taxonomy,
			CreatedAt:   now.Add(-age),
		}
	}

	tests := []struct {
		name     string
		rec      *model.CaseRecord
		now      time.Time
		wantDue  bool
		wantRule model.Rule
	}{
		{
			name:     "critical past threshold",
			rec:      newCase("Level 1 - Critical", "Sales-Other", 6*time.Minute, weekday),
			now:      weekday,
			wantDue:  true,
			wantRule: model.RuleCritical,
		},
		{
			name:     "critical under threshold",
			rec:      newCase("Level 1 - Critical", "Sales-Other", 4*time.Minute, weekday),
			now:      weekday,
			wantDue:  false,
			wantRule: model.RuleCritical,
		},
		{
			name:     "critical exactly at threshold",
			rec:      newCase("Level 1 - Critical", "Sales-Other", 5*time.Minute, weekday),
			now:      weekday,
			wantDue:  true,
			wantRule: model.RuleCritical,
		},
		{
			name:     "urgent uses default threshold",
			rec:      newCase("Level 2 - Urgent", "Sales-Other", 19*time.Minute, weekday),
			now:      weekday,
			wantDue:  false,
			wantRule: model.RuleDefault,
		},
		{
			name:     "urgent past default threshold",
			rec:      newCase("Level 2 - Urgent", "Sales-Other", 20*time.Minute, weekday),
			now:      weekday,
			wantDue:  true,
			wantRule: model.RuleDefault,
		},
		{
			name:     "always-urgent taxonomy due immediately",
			rec:      newCase("Level 3 - High", "Sales-Issues Developing for Salesforce Functions (Product)", 0, weekday),
			now:      weekday,
			wantDue:  true,
			wantRule: model.RuleAlwaysUrgent,
		},
		{
			name:     "weekend shortens any severity",
			rec:      newCase("Level 3 - High", "Sales-Other", time.Minute, weekend),
			now:      weekend,
			wantDue:  true,
			wantRule: model.RuleWeekend,
		},
		{
			name:     "weekend fresh case not yet due",
			rec:      newCase("Level 3 - High", "Sales-Other", 30*time.Second, weekend),
			now:      weekend,
			wantDue:  false,
			wantRule: model.RuleWeekend,
		},
		{
			name:     "weekend takes precedence over critical",
			rec:      newCase("Level 1 - Critical", "Sales-Other", 2*time.Minute, weekend),
			now:      weekend,
			wantDue:  true,
			wantRule: model.RuleWeekend,
		},
		{
			name:     "always-urgent takes precedence over weekend",
			rec:      newCase("Level 1 - Critical", "Sales-Issues Developing for Salesforce Functions (Product)", 0, weekend),
			now:      weekend,
			wantDue:  true,
			wantRule: model.RuleAlwaysUrgent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := model.Evaluate(tt.rec, tt.now, cfg)
			gt.Value(t, d.Due).Equal(tt.wantDue)
			gt.Value(t, d.Rule).Equal(tt.wantRule)
		})
	}
}
