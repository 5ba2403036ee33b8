// Package availability computes which calendar dates are bookable event
// dates. The venue runs events on Fridays and Saturdays only; a date is
// bookable iff its weekday matches, it is not blacked out, and it is not
// past the same-day cutoff time. Cutoff comparisons use the venue's
// wall clock (Europe/London).
package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timezone is the fixed venue timezone for cutoff comparisons.
const Timezone = "Europe/London"

var venueTZ = mustLoadLocation(Timezone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("availability: load location %s: %v", name, err))
	}
	return loc
}

// FridaysAndSaturdaysBetween returns every Friday and Saturday between
// start and end inclusive, in ascending order. Time-of-day on either
// endpoint is ignored; comparison is at day granularity.
func FridaysAndSaturdaysBetween(start, end time.Time) []time.Time {
	var dates []time.Time
	first := dayStart(start)
	last := dayStart(end)

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Friday || wd == time.Saturday {
			dates = append(dates, d)
		}
	}
	return dates
}

// IsDateAvailable reports whether a date can still be booked: it must not
// appear in the blackout list and must not be past the cutoff at now.
// Weekday filtering is the caller's concern (FridaysAndSaturdaysBetween).
func IsDateAvailable(date time.Time, blackoutDates []BlackoutDate, cutoffTime string, now time.Time) bool {
	for _, b := range blackoutDates {
		if sameDay(date, b.Date) {
			return false
		}
	}
	return !IsPastCutoff(date, cutoffTime, now)
}

// IsPastCutoff reports whether a date can no longer be booked because of
// the time-of-day cutoff. The policy is a three-way split on the venue's
// calendar day: past days are always past cutoff, future days never are,
// and today compares the venue wall clock against the cutoff. Collapsing
// this to a single instant comparison would wrongly exclude future dates
// whose cutoff time-of-day has already passed today.
func IsPastCutoff(date time.Time, cutoffTime string, now time.Time) bool {
	nowLocal := now.In(venueTZ)
	dateLocal := date.In(venueTZ)

	dy, dm, dd := dateLocal.Date()
	ny, nm, nd := nowLocal.Date()
	dateDay := time.Date(dy, dm, dd, 0, 0, 0, 0, venueTZ)
	nowDay := time.Date(ny, nm, nd, 0, 0, 0, 0, venueTZ)

	if dateDay.Before(nowDay) {
		return true
	}
	if dateDay.After(nowDay) {
		return false
	}

	hour, minute, ok := parseClock(cutoffTime)
	if !ok {
		return false
	}

	cutoff := time.Date(dy, dm, dd, hour, minute, 0, 0, venueTZ)
	return !nowLocal.Before(cutoff)
}

// FilterBlackoutDates removes blacked-out days from dates, preserving the
// input order.
func FilterBlackoutDates(dates []time.Time, blackoutDates []BlackoutDate) []time.Time {
	if len(blackoutDates) == 0 {
		return dates
	}

	blocked := make(map[string]struct{}, len(blackoutDates))
	for _, b := range blackoutDates {
		blocked[dayKey(b.Date)] = struct{}{}
	}

	filtered := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, ok := blocked[dayKey(d)]; !ok {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// FormatDateForDisplay renders a date as e.g. "Friday, 21st March",
// optionally suffixed with the year.
func FormatDateForDisplay(date time.Time, includeYear bool) string {
	day := date.Day()
	out := fmt.Sprintf("%s, %d%s %s", date.Weekday(), day, ordinalSuffix(day), date.Month())
	if includeYear {
		out += fmt.Sprintf(" %d", date.Year())
	}
	return out
}

// FormatTimeForDisplay converts a 24-hour "HH:mm" string to "h:mm AM/PM".
// Malformed or out-of-range input is echoed back unchanged; this feeds
// directly into UI text, so degrading beats raising here.
func FormatTimeForDisplay(timeOfDay string) string {
	hour, minute, ok := parseClock(timeOfDay)
	if !ok {
		return timeOfDay
	}

	period := "AM"
	displayHour := hour
	switch {
	case hour == 0:
		displayHour = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		displayHour = hour - 12
		period = "PM"
	}

	return fmt.Sprintf("%d:%02d %s", displayHour, minute, period)
}

// ordinalSuffix returns the English ordinal suffix for a day of month.
// 11-13 take "th" regardless of their last digit.
func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// parseClock parses "HH:mm" into hour and minute, rejecting out-of-range
// values.
func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// dayStart normalizes to UTC midnight of the instant's calendar day.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	return dayKey(a) == dayKey(b)
}
