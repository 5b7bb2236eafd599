package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
)

var ist = time.FixedZone("IST", (5*60+30)*60)

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{
			name: "friday night",
			at:   time.Date(2025, 3, 7, 23, 59, 0, 0, ist),
			want: false,
		},
		{
			name: "saturday before edge",
			at:   time.Date(2025, 3, 8, 5, 29, 59, 0, ist),
			want: false,
		},
		{
			name: "saturday at edge",
			at:   time.Date(2025, 3, 8, 5, 30, 0, 0, ist),
			want: true,
		},
		{
			name: "sunday noon",
			at:   time.Date(2025, 3, 9, 12, 0, 0, 0, ist),
			want: true,
		},
		{
			name: "monday before edge",
			at:   time.Date(2025, 3, 10, 5, 29, 59, 0, ist),
			want: true,
		},
		{
			name: "monday at edge",
			at:   time.Date(2025, 3, 10, 5, 30, 0, 0, ist),
			want: false,
		},
		{
			name: "wednesday",
			at:   time.Date(2025, 3, 5, 12, 0, 0, 0, ist),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.IsWeekend(tt.at, ist)).Equal(tt.want)
		})
	}
}

func TestIsWeekendConvertsZone(t *testing.T) {
	// Saturday 05:30 IST expressed in UTC is Saturday 00:00 UTC.
	utcInstant := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	gt.Value(t, model.IsWeekend(utcInstant, ist)).Equal(true)

	// One second earlier is still Friday coverage.
	gt.Value(t, model.IsWeekend(utcInstant.Add(-time.Second), ist)).Equal(false)
}

func TestWeekendWindowAt(t *testing.T) {
	t.Run("inside the window returns the current one", func(t *testing.T) {
		now := time.Date(2025, 3, 9, 12, 0, 0, 0, ist) // Sunday
		w := model.WeekendWindowAt(now, ist)

		gt.Value(t, w.Start).Equal(time.Date(2025, 3, 8, 5, 30, 0, 0, ist))
		gt.Value(t, w.End).Equal(time.Date(2025, 3, 10, 5, 30, 0, 0, ist))
		gt.Value(t, w.Contains(now)).Equal(true)
	})

	t.Run("after the window returns next week", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 6, 0, 0, 0, ist) // Monday after edge
		w := model.WeekendWindowAt(now, ist)

		gt.Value(t, w.Start).Equal(time.Date(2025, 3, 15, 5, 30, 0, 0, ist))
		gt.Value(t, w.Contains(now)).Equal(false)
	})

	t.Run("midweek returns the upcoming window", func(t *testing.T) {
		now := time.Date(2025, 3, 5, 12, 0, 0, 0, ist) // Wednesday
		w := model.WeekendWindowAt(now, ist)

		gt.Value(t, w.Start).Equal(time.Date(2025, 3, 8, 5, 30, 0, 0, ist))
	})
}
