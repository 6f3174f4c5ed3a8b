package services

import (
	"fmt"
	"strings"
	"time"

	"plannerjobs/model"
)

const weeklyDigestHour = 9 // weekly digests never go out before 09:00

// DigestDecision carries the outcome of a schedule check. Reason is
// diagnostic only.
type DigestDecision struct {
	ShouldSend bool
	Reason     string
}

var weekdayIndex = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// ShouldSendDailyDigest decides whether the daily digest is due. It never
// fires before the configured time of day and at most once per calendar day.
func ShouldSendDailyDigest(pref model.EmailPreference, now time.Time) DigestDecision {
	if !pref.DailyDigest {
		return DigestDecision{false, "daily digest disabled"}
	}
	digestTime := pref.DailyDigestTime
	if digestTime == "" {
		digestTime = "09:00"
	}
	scheduled, ok := parseClock(digestTime)
	if !ok {
		scheduled = 9 * 60
	}
	current := now.Hour()*60 + now.Minute()
	if current < scheduled {
		return DigestDecision{false, fmt.Sprintf("before scheduled time %s", digestTime)}
	}
	if pref.LastDailySent != nil && sameDay(*pref.LastDailySent, now) {
		return DigestDecision{false, "already sent today"}
	}
	return DigestDecision{true, "daily digest due"}
}

// ShouldSendWeeklyDigest decides whether the weekly digest is due: only on
// the configured weekday, only from 09:00, and at most once per week counted
// from the most recent Sunday midnight.
func ShouldSendWeeklyDigest(pref model.EmailPreference, now time.Time) DigestDecision {
	if !pref.WeeklyDigest {
		return DigestDecision{false, "weekly digest disabled"}
	}
	day := strings.ToLower(pref.DigestDay)
	if day == "" {
		day = "monday"
	}
	target, ok := weekdayIndex[day]
	if !ok {
		return DigestDecision{false, fmt.Sprintf("invalid digest day %q", pref.DigestDay)}
	}
	if int(now.Weekday()) != target {
		return DigestDecision{false, fmt.Sprintf("not %s", day)}
	}
	if now.Hour() < weeklyDigestHour {
		return DigestDecision{false, "before 09:00"}
	}
	weekStart := StartOfWeek(now)
	if pref.LastWeeklySent != nil && !pref.LastWeeklySent.Before(weekStart) {
		return DigestDecision{false, "already sent this week"}
	}
	return DigestDecision{true, "weekly digest due"}
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the most recent Sunday at local midnight.
func StartOfWeek(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

func sameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
