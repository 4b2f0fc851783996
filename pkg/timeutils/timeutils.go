package timeutils

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format of scheduleDate ("2025-12-08").
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format of scheduleTime ("14:00").
	ClockLayout = "15:04"
)

// ParseSchedule combines a date ("YYYY-MM-DD") and a wall clock time ("HH:MM")
// into an instant in loc. The backend stores both parts as local wall time.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("date and time are required")
	}
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q %q: %w", date, clock, err)
	}
	return t, nil
}

// SplitSchedule is the inverse of ParseSchedule.
func SplitSchedule(t time.Time) (date string, clock string) {
	return t.Format(DateLayout), t.Format(ClockLayout)
}

// FormatUptime renders seconds the way the dashboard shows bot uptime:
// "42s", "5m 3s", "2h 10m".
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}
