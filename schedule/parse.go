package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"discord-role-scheduler/model"
)

// ErrInvalidFormat marks schedule or duration text that could not be parsed.
// Callers must report it; it is never coerced into a best-effort guess.
var ErrInvalidFormat = errors.New("invalid format")

// Custom interval bounds, in minutes (1 minute to 1 week).
const (
	MinIntervalMinutes = 1
	MaxIntervalMinutes = 10080
)

// Descriptor is a normalized recurring schedule configuration.
// Only the fields relevant to Type are meaningful.
type Descriptor struct {
	Type            model.ScheduleType
	Hour            int
	Minute          int
	DayOfWeek       int // 0 = Sunday ... 6 = Saturday
	DayOfMonth      int // 1-31, kept as given even for short months
	IntervalMinutes int
}

var (
	re24Hour   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	re12Hour   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)$`)
	reRelative = regexp.MustCompile(`^in\s+(\d+)\s+(minutes?|mins?|hours?|hrs?|days?)$`)
	reCompact  = regexp.MustCompile(`^(\d+)([mhd])$`)
)

var weekdays = map[string]int{
	"sunday": 0, "sun": 0,
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2, "tues": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4, "thurs": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
}

// parseClock parses "HH:MM" (24h) or "H[:MM](am|pm)" into hour and minute.
func parseClock(text string) (int, int, error) {
	if m := re24Hour.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return 0, 0, fmt.Errorf("%w: time %q out of range", ErrInvalidFormat, text)
		}
		return hour, minute, nil
	}
	if m := re12Hour.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return 0, 0, fmt.Errorf("%w: time %q out of range", ErrInvalidFormat, text)
		}
		if hour == 12 {
			hour = 0
		}
		if m[3] == "pm" {
			hour += 12
		}
		return hour, minute, nil
	}
	return 0, 0, fmt.Errorf("%w: unrecognized time %q", ErrInvalidFormat, text)
}

// parseOffset parses relative offsets like "in 2 hours", "2h", "30m", "1d".
func parseOffset(text string) (time.Duration, bool, error) {
	var amount int
	var unit string

	if m := reRelative.FindStringSubmatch(text); m != nil {
		amount, _ = strconv.Atoi(m[1])
		unit = m[2][:1]
	} else if m := reCompact.FindStringSubmatch(text); m != nil {
		amount, _ = strconv.Atoi(m[1])
		unit = m[2]
	} else {
		return 0, false, nil
	}

	if amount <= 0 {
		return 0, true, fmt.Errorf("%w: offset %q must be positive", ErrInvalidFormat, text)
	}
	switch unit {
	case "m":
		return time.Duration(amount) * time.Minute, true, nil
	case "h":
		return time.Duration(amount) * time.Hour, true, nil
	default:
		return time.Duration(amount) * 24 * time.Hour, true, nil
	}
}

// ParseOneTime resolves a one-shot schedule string to an absolute instant.
// Supported forms: clock times ("14:30", "2:30pm", "9am"), day-qualified
// times ("tomorrow 8am", "friday 2pm") and relative offsets ("in 2 hours",
// "2h", "30m"). A bare clock time that has already passed today resolves
// to the same time tomorrow.
func ParseOneTime(text string, now time.Time) (time.Time, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty schedule text", ErrInvalidFormat)
	}

	if offset, ok, err := parseOffset(text); ok {
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(offset), nil
	}

	if day, rest, found := strings.Cut(text, " "); found {
		rest = strings.TrimSpace(rest)
		hour, minute, err := parseClock(rest)
		if err != nil {
			return time.Time{}, err
		}
		if day == "tomorrow" {
			return atClock(now.AddDate(0, 0, 1), hour, minute), nil
		}
		if wd, ok := weekdays[day]; ok {
			for i := 0; i <= 7; i++ {
				candidate := atClock(now.AddDate(0, 0, i), hour, minute)
				if int(candidate.Weekday()) == wd && candidate.After(now) {
					return candidate, nil
				}
			}
		}
		return time.Time{}, fmt.Errorf("%w: unrecognized day %q", ErrInvalidFormat, day)
	}

	hour, minute, err := parseClock(text)
	if err != nil {
		return time.Time{}, err
	}
	candidate := atClock(now, hour, minute)
	if !candidate.After(now) {
		candidate = atClock(now.AddDate(0, 0, 1), hour, minute)
	}
	return candidate, nil
}

// ParseRecurring normalizes the schedule text for a recurring schedule type.
func ParseRecurring(scheduleType model.ScheduleType, text string) (Descriptor, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	desc := Descriptor{Type: scheduleType}

	switch scheduleType {
	case model.ScheduleDaily:
		hour, minute, err := parseClock(text)
		if err != nil {
			return Descriptor{}, err
		}
		desc.Hour, desc.Minute = hour, minute
		return desc, nil

	case model.ScheduleWeekly:
		day, rest, found := strings.Cut(text, " ")
		if !found {
			return Descriptor{}, fmt.Errorf("%w: weekly schedule needs a weekday and a time", ErrInvalidFormat)
		}
		wd, ok := weekdays[day]
		if !ok {
			return Descriptor{}, fmt.Errorf("%w: unrecognized weekday %q", ErrInvalidFormat, day)
		}
		hour, minute, err := parseClock(strings.TrimSpace(rest))
		if err != nil {
			return Descriptor{}, err
		}
		desc.DayOfWeek, desc.Hour, desc.Minute = wd, hour, minute
		return desc, nil

	case model.ScheduleMonthly:
		dayText, rest, found := strings.Cut(text, " ")
		if !found {
			return Descriptor{}, fmt.Errorf("%w: monthly schedule needs a day of month and a time", ErrInvalidFormat)
		}
		day, err := strconv.Atoi(dayText)
		if err != nil || day < 1 || day > 31 {
			return Descriptor{}, fmt.Errorf("%w: day of month %q out of range", ErrInvalidFormat, dayText)
		}
		hour, minute, err := parseClock(strings.TrimSpace(rest))
		if err != nil {
			return Descriptor{}, err
		}
		desc.DayOfMonth, desc.Hour, desc.Minute = day, hour, minute
		return desc, nil

	case model.ScheduleCustom:
		minutes, err := strconv.Atoi(text)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: interval %q is not a number of minutes", ErrInvalidFormat, text)
		}
		if minutes < MinIntervalMinutes || minutes > MaxIntervalMinutes {
			return Descriptor{}, fmt.Errorf("%w: interval %d outside %d-%d minutes",
				ErrInvalidFormat, minutes, MinIntervalMinutes, MaxIntervalMinutes)
		}
		desc.IntervalMinutes = minutes
		return desc, nil

	default:
		return Descriptor{}, fmt.Errorf("%w: %q is not a recurring schedule type", ErrInvalidFormat, scheduleType)
	}
}

// ParseDuration parses a temporary-role duration: "2h", "30m", "1d",
// "in 2 hours", or a bare number of minutes.
func ParseDuration(text string) (time.Duration, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if minutes, err := strconv.Atoi(text); err == nil {
		if minutes <= 0 {
			return 0, fmt.Errorf("%w: duration must be positive", ErrInvalidFormat)
		}
		return time.Duration(minutes) * time.Minute, nil
	}
	offset, ok, err := parseOffset(text)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: unrecognized duration %q", ErrInvalidFormat, text)
	}
	return offset, nil
}

// atClock returns the given day at hour:minute in the day's location.
func atClock(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
