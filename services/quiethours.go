package services

import (
	"strconv"
	"strings"
	"time"

	"plannerjobs/model"
)

// IsInQuietHours reports whether now falls inside the configured quiet
// window, using the local clock of now. A window whose start is later than
// its end wraps past midnight. Both endpoints are inclusive. A window with an
// unparseable start or end is treated as disabled.
func IsInQuietHours(cfg *model.QuietHoursConfig, now time.Time) bool {
	if cfg == nil || !cfg.Enabled {
		return false
	}
	start, ok := parseClock(cfg.Start)
	if !ok {
		return false
	}
	end, ok := parseClock(cfg.End)
	if !ok {
		return false
	}
	current := now.Hour()*60 + now.Minute()
	if start <= end {
		return current >= start && current <= end
	}
	// spans midnight, e.g. 22:00-08:00
	return current >= start || current <= end
}

// parseClock converts an "HH:MM" string into minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
