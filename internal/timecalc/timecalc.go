package timecalc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts used for the string fields of a work record.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// DisplayBreakFallback is what FormatBreakTime shows for a record without an
// explicit break. It is a fixed display value, independent of the configured
// default break.
const DisplayBreakFallback = 60

// ErrNegativeDuration is returned when an interval ends before it starts.
var ErrNegativeDuration = errors.New("end is before start")

// NextID mints a record id from t in Unix milliseconds, bumping past last so
// ids stay unique and increasing even when the clock does not advance.
func NextID(t time.Time, last int64) int64 {
	id := t.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}

// ComputeDuration returns the gross time between start and end as HH:MM.
// Seconds are truncated.
func ComputeDuration(start, end time.Time) (string, error) {
	if end.Before(start) {
		return "", fmt.Errorf("computing duration %s → %s: %w",
			start.Format(ClockLayout), end.Format(ClockLayout), ErrNegativeDuration)
	}
	seconds := int64(end.Sub(start) / time.Second)
	return FormatHHMM(seconds / 60), nil
}

// ParseDurationMinutes parses an HH:MM or HH:MM:SS duration into whole
// minutes. Seconds, when present, are ignored.
func ParseDurationMinutes(s string) (int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var vals [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		vals[i] = n
	}
	if vals[1] > 59 || vals[2] > 59 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return vals[0]*60 + vals[1], nil
}

// NetMinutes subtracts breakMinutes from the gross duration, never going
// below zero. Unparseable durations count as zero.
func NetMinutes(duration string, breakMinutes int) int64 {
	gross, err := ParseDurationMinutes(duration)
	if err != nil {
		return 0
	}
	return max(0, gross-int64(breakMinutes))
}

// FormatHHMM formats minutes as zero-padded HH:MM.
func FormatHHMM(minutes int64) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatTotal formats minutes as H:MM with an unpadded hour, e.g. "7:05".
func FormatTotal(minutes int64) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// FormatBreakTime formats a break for display. A nil break shows the fixed
// fallback rather than the configured default.
func FormatBreakTime(minutes *int) string {
	if minutes == nil {
		return FormatHHMM(DisplayBreakFallback)
	}
	return FormatHHMM(int64(*minutes))
}

// ParseClock parses an HH:MM or HH:MM:SS time of day on the given date in loc.
func ParseClock(date, clock string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{
		DateLayout + "T" + ClockLayout,
		DateLayout + "T15:04",
	} {
		if t, err := time.ParseInLocation(layout, date+"T"+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q %q", date, clock)
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatDuration formats minutes as a human-readable string like "1h 40m" or "45m".
func FormatDuration(minutes int64) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
