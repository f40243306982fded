package schedule

import "discord-role-scheduler/model"

// HelpText returns user-facing format examples for a schedule type.
func HelpText(scheduleType model.ScheduleType) string {
	switch scheduleType {
	case model.ScheduleOneTime:
		return "Examples: `14:30`, `2:30pm`, `9am`, `tomorrow 8am`, `friday 2pm`, `in 2 hours`, `30m`"
	case model.ScheduleDaily:
		return "Examples: `14:30`, `2:30pm`, `9am` (runs every day at that time)"
	case model.ScheduleWeekly:
		return "Examples: `monday 09:00`, `friday 2pm` (runs every week on that day)"
	case model.ScheduleMonthly:
		return "Examples: `1 09:00`, `15 2pm` (day of month 1-31, then a time)"
	case model.ScheduleCustom:
		return "A number of minutes between runs, 1 to 10080 (one week). Example: `90`"
	default:
		return "Unknown schedule type"
	}
}
