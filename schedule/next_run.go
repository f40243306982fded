package schedule

import (
	"time"

	"discord-role-scheduler/model"
)

// ComputeNextRun derives the next execution instant for a recurring
// descriptor. lastRun is only consulted for custom intervals; the
// wall-clock types walk forward from ref.
//
// A ref exactly on the configured wall-clock time counts as not yet
// passed and resolves to ref itself.
func ComputeNextRun(desc Descriptor, ref time.Time, lastRun *time.Time) time.Time {
	switch desc.Type {
	case model.ScheduleDaily:
		candidate := atClock(ref, desc.Hour, desc.Minute)
		if candidate.Before(ref) {
			candidate = atClock(ref.AddDate(0, 0, 1), desc.Hour, desc.Minute)
		}
		return candidate

	case model.ScheduleWeekly:
		for i := 0; i <= 7; i++ {
			candidate := atClock(ref.AddDate(0, 0, i), desc.Hour, desc.Minute)
			if int(candidate.Weekday()) == desc.DayOfWeek && !candidate.Before(ref) {
				return candidate
			}
		}
		// Unreachable: a 8-day window always contains every weekday.
		return ref

	case model.ScheduleMonthly:
		// Months too short for the configured day are skipped, never
		// clamped to their last day.
		year, month := ref.Year(), ref.Month()
		for i := 0; i <= 12; i++ {
			if desc.DayOfMonth <= daysInMonth(year, month) {
				candidate := time.Date(year, month, desc.DayOfMonth,
					desc.Hour, desc.Minute, 0, 0, ref.Location())
				if !candidate.Before(ref) {
					return candidate
				}
			}
			month++
			if month > time.December {
				month = time.January
				year++
			}
		}
		return ref

	case model.ScheduleCustom:
		base := ref
		if lastRun != nil {
			base = *lastRun
		}
		return base.Add(time.Duration(desc.IntervalMinutes) * time.Minute)

	default:
		return ref
	}
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
