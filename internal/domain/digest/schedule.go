package digest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// scheduleGranularity is the scheduler tick cadence. Local minutes are
// floored to this boundary before comparing against the configured time,
// so a config set to 09:00 matches any tick between 09:00 and 09:14.
const scheduleGranularity = 15

// FloorToQuarterHour formats t's wall clock as HH:MM with the minute
// floored to the nearest 15-minute boundary.
func FloorToQuarterHour(t time.Time) string {
	minute := t.Minute() - t.Minute()%scheduleGranularity
	return fmt.Sprintf("%02d:%02d", t.Hour(), minute)
}

// Matches reports whether now, converted into tz, falls on one of the
// configured weekdays at the configured HH:MM slot.
func Matches(now time.Time, tz string, weekdays []int, deliveryTime string) (bool, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return false, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	local := now.In(loc)

	if !containsWeekday(weekdays, int(local.Weekday())) {
		return false, nil
	}

	configured, err := normalizeDeliveryTime(deliveryTime)
	if err != nil {
		return false, err
	}

	return FloorToQuarterHour(local) == configured, nil
}

// DayWindow returns the [midnight, next midnight) interval containing now
// in tz. The "already sent today" check queries audit rows against it.
func DayWindow(now time.Time, tz string) (time.Time, time.Time, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1), nil
}

// ParseWeekdays parses a comma-separated weekday set ("1,2,3,4,5").
// Values outside 0..6 are rejected.
func ParseWeekdays(csv string) ([]int, error) {
	trimmed := strings.TrimSpace(csv)
	if trimmed == "" {
		return nil, errors.New("weekday set is empty")
	}

	parts := strings.Split(trimmed, ",")
	out := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q: %w", part, err)
		}
		if value < 0 || value > 6 {
			return nil, fmt.Errorf("weekday %d out of range", value)
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out, nil
}

func normalizeDeliveryTime(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	parsed, err := time.Parse("15:04", trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid delivery time %q: %w", value, err)
	}
	return FloorToQuarterHour(parsed), nil
}

func containsWeekday(weekdays []int, day int) bool {
	for _, candidate := range weekdays {
		if candidate == day {
			return true
		}
	}
	return false
}
