package model

import "time"

// QuietHoursConfig is a local-time window during which nothing is sent.
// Start and End are "HH:MM" strings; Start > End means the window wraps
// past midnight.
type QuietHoursConfig struct {
	Enabled bool   `firestore:"enabled"`
	Start   string `firestore:"start,omitempty"`
	End     string `firestore:"end,omitempty"`
}

// NotificationPreference controls push notifications for one user. It is
// written by the settings UI and read-only to the job.
type NotificationPreference struct {
	UserEmail     string            `firestore:"userEmail,omitempty"`
	Enabled       bool              `firestore:"enabled"`
	OverdueAlerts bool              `firestore:"overdueAlerts"`
	TaskReminders bool              `firestore:"taskReminders"`
	QuietHours    *QuietHoursConfig `firestore:"quietHours,omitempty"`
}

// EmailPreference controls the daily/weekly digest emails. LastDailySent and
// LastWeeklySent are the idempotency markers the dispatcher stamps after a
// confirmed successful send.
type EmailPreference struct {
	UserEmail       string            `firestore:"userEmail,omitempty"`
	DailyDigest     bool              `firestore:"dailyDigest"`
	WeeklyDigest    bool              `firestore:"weeklyDigest"`
	DailyDigestTime string            `firestore:"dailyDigestTime,omitempty"` // "HH:MM", default "09:00"
	DigestDay       string            `firestore:"digestDay,omitempty"`       // weekday name, default "monday"
	QuietHours      *QuietHoursConfig `firestore:"quietHours,omitempty"`
	LastDailySent   *time.Time        `firestore:"lastDailySent,omitempty"`
	LastWeeklySent  *time.Time        `firestore:"lastWeeklySent,omitempty"`
}
