package schedule

import (
	"testing"
	"time"

	"discord-role-scheduler/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNextRunDaily(t *testing.T) {
	t.Parallel()
	desc := Descriptor{Type: model.ScheduleDaily, Hour: 9, Minute: 0}

	ref := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	got := ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)), "before the slot runs today")

	ref = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	got = ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)), "after the slot runs tomorrow")

	// Exactly on the boundary resolves to the boundary itself.
	ref = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	got = ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(ref))
}

func TestComputeNextRunDailyWithin24Hours(t *testing.T) {
	t.Parallel()
	desc := Descriptor{Type: model.ScheduleDaily, Hour: 23, Minute: 59}
	for hour := 0; hour < 24; hour++ {
		ref := time.Date(2025, 3, 10, hour, 17, 0, 0, time.UTC)
		got := ComputeNextRun(desc, ref, nil)
		require.False(t, got.Before(ref), "hour %d", hour)
		require.LessOrEqual(t, got.Sub(ref), 24*time.Hour, "hour %d", hour)
	}
}

func TestComputeNextRunWeekly(t *testing.T) {
	t.Parallel()
	// 2025-03-10 is a Monday.
	desc := Descriptor{Type: model.ScheduleWeekly, DayOfWeek: 5, Hour: 14, Minute: 0}
	ref := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	got := ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 3, 14, 14, 0, 0, 0, time.UTC)))

	// Today matches and the time has not passed: runs today.
	desc = Descriptor{Type: model.ScheduleWeekly, DayOfWeek: 1, Hour: 14, Minute: 0}
	got = ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)))

	// Today matches but the time has passed: runs next week.
	desc = Descriptor{Type: model.ScheduleWeekly, DayOfWeek: 1, Hour: 7, Minute: 0}
	got = ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 3, 17, 7, 0, 0, 0, time.UTC)))
}

func TestComputeNextRunMonthlySkipsShortMonths(t *testing.T) {
	t.Parallel()
	desc := Descriptor{Type: model.ScheduleMonthly, DayOfMonth: 31, Hour: 8, Minute: 0}

	// April has 30 days: day 31 skips straight to May.
	ref := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	got := ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 5, 31, 8, 0, 0, 0, time.UTC)))

	// Day 30 exists in April and is still ahead.
	desc.DayOfMonth = 30
	got = ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 4, 30, 8, 0, 0, 0, time.UTC)))

	// Day 29: 2025 is not a leap year, so a February reference skips to March.
	desc.DayOfMonth = 29
	ref = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	got = ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 3, 29, 8, 0, 0, 0, time.UTC)))
}

func TestComputeNextRunMonthlySameMonth(t *testing.T) {
	t.Parallel()
	desc := Descriptor{Type: model.ScheduleMonthly, DayOfMonth: 15, Hour: 12, Minute: 30}

	ref := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	got := ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 3, 15, 12, 30, 0, 0, time.UTC)))

	// Already past this month's occurrence: next month.
	ref = time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	got = ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(time.Date(2025, 4, 15, 12, 30, 0, 0, time.UTC)))
}

func TestComputeNextRunCustom(t *testing.T) {
	t.Parallel()
	desc := Descriptor{Type: model.ScheduleCustom, IntervalMinutes: 60}
	ref := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	// No previous run: counts from the reference.
	got := ComputeNextRun(desc, ref, nil)
	assert.True(t, got.Equal(ref.Add(60*time.Minute)))

	// With a previous run: counts from it, not the reference.
	lastRun := ref.Add(-15 * time.Minute)
	got = ComputeNextRun(desc, ref, &lastRun)
	assert.True(t, got.Equal(lastRun.Add(60*time.Minute)))
}
