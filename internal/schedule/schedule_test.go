package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplan/internal/clock"
	"studyplan/internal/topics"
)

var threeTopics = []string{"Intro", "Loops", "Functions"}

func fixedAt(y int, m time.Month, d, hh, mm int) clock.Fixed {
	return clock.Fixed(time.Date(y, m, d, hh, mm, 0, 0, time.Local))
}

func TestBuildConcreteScenario(t *testing.T) {
	b := NewBuilder(threeTopics, fixedAt(2030, 6, 1, 12, 0))

	got := b.Build("2024-01-01", 9, 0)
	require.Len(t, got, 3)

	wantDays := []int{1, 2, 3}
	for i, e := range got {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, threeTopics[i], e.Topic)
		assert.Equal(t, time.Date(2024, 1, wantDays[i], 0, 0, 0, 0, time.Local), e.Date)
		assert.Equal(t, time.Date(2024, 1, wantDays[i], 9, 0, 0, 0, time.Local), e.StartAt)
	}
}

func TestBuildCrossesLeapDayAndYearEnd(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  []string
	}{
		{"leap year", "2024-02-28", []string{"2024-02-28", "2024-02-29", "2024-03-01"}},
		{"non leap year", "2023-02-28", []string{"2023-02-28", "2023-03-01", "2023-03-02"}},
		{"year end", "2024-12-31", []string{"2024-12-31", "2025-01-01", "2025-01-02"}},
		{"month end", "2024-04-30", []string{"2024-04-30", "2024-05-01", "2024-05-02"}},
	}
	b := NewBuilder(threeTopics, fixedAt(2030, 6, 1, 12, 0))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Build(tt.start, 9, 0)
			require.Len(t, got, len(tt.want))
			for i, e := range got {
				assert.Equal(t, tt.want[i], e.Date.Format("2006-01-02"))
			}
		})
	}
}

func TestBuildConsecutiveDaysFullPlan(t *testing.T) {
	b := NewBuilder(topics.Default, fixedAt(2030, 6, 1, 12, 0))
	got := b.Build("2024-03-20", 18, 45)
	require.Len(t, got, len(topics.Default))

	for i := range got {
		assert.Equal(t, 18, got[i].StartAt.Hour())
		assert.Equal(t, 45, got[i].StartAt.Minute())
		assert.Equal(t, 0, got[i].Date.Hour())
		if i > 0 {
			next := got[i-1].Date.AddDate(0, 0, 1)
			assert.True(t, next.Equal(got[i].Date), "day %d is not one calendar day after day %d", i, i-1)
		}
	}
}

func TestBuildHourMinuteRollover(t *testing.T) {
	b := NewBuilder(threeTopics, fixedAt(2030, 6, 1, 12, 0))
	got := b.Build("2024-01-31", 25, 0)

	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local), got[0].Date)
	assert.Equal(t, time.Date(2024, 2, 1, 1, 0, 0, 0, time.Local), got[0].StartAt)

	got = b.Build("2024-01-01", 9, 75)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 15, 0, 0, time.Local), got[0].StartAt)
}

func TestBuildFallsBackToToday(t *testing.T) {
	now := fixedAt(2025, 7, 14, 16, 30)
	today := time.Date(2025, 7, 14, 0, 0, 0, 0, time.Local)

	for _, start := range []string{"", "not-a-date", "2024/01/01", "2024-01", "2024-xx-01"} {
		t.Run(start, func(t *testing.T) {
			got := NewBuilder(threeTopics, now).Build(start, 9, 0)
			require.Len(t, got, 3)
			assert.Equal(t, today, got[0].Date)
			assert.Equal(t, today.AddDate(0, 0, 2), got[2].Date)
		})
	}
}

func TestParseStartDateRollsOverFields(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), ParseStartDate("2024-02-30", now))
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local), ParseStartDate("2024-1-5", now))
}

func TestBuildUsesDay0Location(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	got := Build(time.Date(2024, 5, 10, 17, 42, 0, 0, loc), 7, 30, threeTopics)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, loc), got[0].Date)
	assert.Equal(t, time.Date(2024, 5, 12, 7, 30, 0, 0, loc), got[2].StartAt)
}

func TestCurrentIndex(t *testing.T) {
	s := Build(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), 9, 0, threeTopics)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before plan", time.Date(2023, 12, 25, 12, 0, 0, 0, time.Local), 0},
		{"day one before reminder", time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local), 0},
		{"day one at reminder", time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local), 0},
		{"day two before reminder", time.Date(2024, 1, 2, 8, 59, 0, 0, time.Local), 0},
		{"day two after reminder", time.Date(2024, 1, 2, 9, 1, 0, 0, time.Local), 1},
		{"last day", time.Date(2024, 1, 3, 10, 0, 0, 0, time.Local), 2},
		{"after plan", time.Date(2024, 2, 1, 10, 0, 0, 0, time.Local), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentIndex(s, tt.now))
		})
	}

	assert.Equal(t, 0, CurrentIndex(nil, time.Now()))
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(nil, 20))
	assert.Equal(t, 5, ProgressPercent([]int{0}, 20))
	assert.Equal(t, 33, ProgressPercent([]int{0}, 3))
	assert.Equal(t, 67, ProgressPercent([]int{0, 2}, 3))
	assert.Equal(t, 10, ProgressPercent([]int{1, 1, 2, 99, -1}, 20))
	assert.Equal(t, 0, ProgressPercent([]int{1}, 0))
}
