package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpand_NoRule(t *testing.T) {
	start := date(2024, 6, 7)

	assert.Equal(t, []time.Time{start}, Expand(start, nil))
	assert.Equal(t, []time.Time{start}, Expand(start, &Rule{Frequency: None}))
	assert.Equal(t, []time.Time{start}, Expand(start, &Rule{}))
}

func TestExpand_EndBeforeStart(t *testing.T) {
	rule := &Rule{Frequency: Daily, EndDate: date(2024, 6, 6)}
	assert.Empty(t, Expand(date(2024, 6, 7), rule))
}

func TestExpand_Daily(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		start time.Time
		want  []time.Time
	}{
		{
			name:  "every day",
			rule:  Rule{Frequency: Daily, Interval: 1, EndDate: date(2024, 6, 10)},
			start: date(2024, 6, 7),
			want:  []time.Time{date(2024, 6, 7), date(2024, 6, 8), date(2024, 6, 9), date(2024, 6, 10)},
		},
		{
			name:  "every third day",
			rule:  Rule{Frequency: Daily, Interval: 3, EndDate: date(2024, 6, 14)},
			start: date(2024, 6, 7),
			want:  []time.Time{date(2024, 6, 7), date(2024, 6, 10), date(2024, 6, 13)},
		},
		{
			name: "skip dates excluded, including the start",
			rule: Rule{
				Frequency: Daily, Interval: 1, EndDate: date(2024, 6, 10),
				SkipDates: []time.Time{date(2024, 6, 7), date(2024, 6, 9)},
			},
			start: date(2024, 6, 7),
			want:  []time.Time{date(2024, 6, 8), date(2024, 6, 10)},
		},
		{
			name:  "zero interval treated as one",
			rule:  Rule{Frequency: Daily, EndDate: date(2024, 6, 8)},
			start: date(2024, 6, 7),
			want:  []time.Time{date(2024, 6, 7), date(2024, 6, 8)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.start, &tt.rule))
		})
	}
}

func TestExpand_CapsAtMaxOccurrences(t *testing.T) {
	rule := &Rule{Frequency: Daily, Interval: 1, EndDate: date(2030, 1, 1)}
	start := date(2024, 1, 1)

	got := Expand(start, rule)

	require.Len(t, got, MaxOccurrences)
	assert.Equal(t, start, got[0])
	assert.Equal(t, start.AddDate(0, 0, MaxOccurrences-1), got[len(got)-1])
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].After(got[i-1]), "series must be strictly increasing")
	}
}

func TestExpand_Weekly(t *testing.T) {
	// 2024-06-07 is a Friday.
	start := date(2024, 6, 7)

	t.Run("weekday set", func(t *testing.T) {
		rule := &Rule{
			Frequency: Weekly, Interval: 1, EndDate: date(2024, 6, 18),
			Weekdays: []time.Weekday{time.Monday, time.Friday},
		}
		want := []time.Time{
			date(2024, 6, 7),  // start
			date(2024, 6, 10), // Mon
			date(2024, 6, 14), // Fri
			date(2024, 6, 17), // Mon
		}
		assert.Equal(t, want, Expand(start, rule))
	})

	t.Run("empty weekday set defaults to the start weekday", func(t *testing.T) {
		bare := &Rule{Frequency: Weekly, Interval: 1, EndDate: date(2024, 7, 5)}
		explicit := &Rule{Frequency: Weekly, Interval: 1, EndDate: date(2024, 7, 5), Weekdays: []time.Weekday{time.Friday}}
		assert.Equal(t, Expand(start, explicit), Expand(start, bare))
	})

	t.Run("interval counts Sunday-aligned weeks from the baseline week", func(t *testing.T) {
		// Start Wednesday 2024-01-03; baseline week begins Sunday 2023-12-31.
		rule := &Rule{
			Frequency: Weekly, Interval: 2, EndDate: date(2024, 1, 20),
			Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		}
		want := []time.Time{
			date(2024, 1, 3),
			date(2024, 1, 15), // week 2: Mon
			date(2024, 1, 17), // week 2: Wed
		}
		assert.Equal(t, want, Expand(date(2024, 1, 3), rule))
	})
}

func TestExpand_MonthlyByDate(t *testing.T) {
	t.Run("month-end clamping across a leap February", func(t *testing.T) {
		rule := &Rule{Frequency: MonthlyByDate, Interval: 1, EndDate: date(2024, 4, 30)}
		want := []time.Time{
			date(2024, 1, 31),
			date(2024, 2, 29),
			date(2024, 3, 31),
			date(2024, 4, 30),
		}
		assert.Equal(t, want, Expand(date(2024, 1, 31), rule))
	})

	t.Run("explicit day of month", func(t *testing.T) {
		rule := &Rule{Frequency: MonthlyByDate, Interval: 1, MonthlyDay: 31, EndDate: date(2024, 3, 31)}
		want := []time.Time{
			date(2024, 1, 15),
			date(2024, 2, 29),
			date(2024, 3, 31),
		}
		assert.Equal(t, want, Expand(date(2024, 1, 15), rule))
	})

	t.Run("two-month interval", func(t *testing.T) {
		rule := &Rule{Frequency: MonthlyByDate, Interval: 2, EndDate: date(2024, 6, 30)}
		want := []time.Time{
			date(2024, 1, 10),
			date(2024, 3, 10),
			date(2024, 5, 10),
		}
		assert.Equal(t, want, Expand(date(2024, 1, 10), rule))
	})
}

func TestExpand_MonthlyByWeekday(t *testing.T) {
	t.Run("last Friday of each month", func(t *testing.T) {
		rule := &Rule{
			Frequency: MonthlyByWeekday, Interval: 1, MonthlyWeek: -1,
			Weekdays: []time.Weekday{time.Friday},
			EndDate:  date(2024, 4, 30),
		}
		want := []time.Time{
			date(2024, 1, 26),
			date(2024, 2, 23),
			date(2024, 3, 29),
			date(2024, 4, 26),
		}
		assert.Equal(t, want, Expand(date(2024, 1, 26), rule))
	})

	t.Run("second Tuesday", func(t *testing.T) {
		rule := &Rule{
			Frequency: MonthlyByWeekday, Interval: 1, MonthlyWeek: 2,
			Weekdays: []time.Weekday{time.Tuesday},
			EndDate:  date(2024, 3, 31),
		}
		want := []time.Time{
			date(2024, 1, 9),
			date(2024, 2, 13),
			date(2024, 3, 12),
		}
		assert.Equal(t, want, Expand(date(2024, 1, 9), rule))
	})

	t.Run("ordinal and weekday default to the start date's", func(t *testing.T) {
		// 2024-01-29 is the 5th Monday of January, treated as the last.
		rule := &Rule{Frequency: MonthlyByWeekday, Interval: 1, EndDate: date(2024, 3, 31)}
		want := []time.Time{
			date(2024, 1, 29),
			date(2024, 2, 26),
			date(2024, 3, 25),
		}
		assert.Equal(t, want, Expand(date(2024, 1, 29), rule))
	})
}

func TestExpand_BoundsProperty(t *testing.T) {
	start := date(2024, 2, 29)
	rules := []*Rule{
		{Frequency: Daily, Interval: 2, EndDate: date(2024, 5, 1), SkipDates: []time.Time{date(2024, 3, 4)}},
		{Frequency: Weekly, Interval: 1, EndDate: date(2024, 5, 1), Weekdays: []time.Weekday{time.Sunday, time.Saturday}},
		{Frequency: MonthlyByDate, Interval: 1, EndDate: date(2024, 12, 31)},
		{Frequency: MonthlyByWeekday, Interval: 1, MonthlyWeek: -1, EndDate: date(2024, 12, 31)},
	}
	for _, rule := range rules {
		for _, d := range Expand(start, rule) {
			assert.False(t, d.Before(start), "%s before series start", d)
			assert.False(t, d.After(rule.EndDate), "%s after series end", d)
			for _, skip := range rule.SkipDates {
				assert.NotEqual(t, skip, d)
			}
		}
	}
}

func TestRuleValidate(t *testing.T) {
	start := date(2024, 6, 7)

	tests := []struct {
		name    string
		rule    *Rule
		wantErr string
	}{
		{name: "nil rule", rule: nil},
		{name: "frequency none", rule: &Rule{Frequency: None}},
		{name: "valid daily", rule: &Rule{Frequency: Daily, Interval: 1, EndDate: date(2024, 7, 1)}},
		{
			name:    "missing end date",
			rule:    &Rule{Frequency: Daily, Interval: 1},
			wantErr: "end date required",
		},
		{
			name:    "end before start",
			rule:    &Rule{Frequency: Weekly, Interval: 1, EndDate: date(2024, 6, 1)},
			wantErr: "before start date",
		},
		{
			name:    "unknown frequency",
			rule:    &Rule{Frequency: "fortnightly", EndDate: date(2024, 7, 1)},
			wantErr: "unknown frequency",
		},
		{
			name:    "weekday out of range",
			rule:    &Rule{Frequency: Weekly, EndDate: date(2024, 7, 1), Weekdays: []time.Weekday{7}},
			wantErr: "invalid weekday",
		},
		{
			name:    "day of month out of range",
			rule:    &Rule{Frequency: MonthlyByDate, EndDate: date(2024, 7, 1), MonthlyDay: 32},
			wantErr: "invalid day of month",
		},
		{
			name:    "week of month out of range",
			rule:    &Rule{Frequency: MonthlyByWeekday, EndDate: date(2024, 7, 1), MonthlyWeek: 5},
			wantErr: "invalid week of month",
		},
		{
			name:    "negative interval",
			rule:    &Rule{Frequency: Daily, Interval: -1, EndDate: date(2024, 7, 1)},
			wantErr: "interval",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate(start)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
