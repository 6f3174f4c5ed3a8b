package model

import "time"

// MilestoneNotificationSettings gates each of the fixed lead-time alerts.
type MilestoneNotificationSettings struct {
	OnTheDay        bool `firestore:"onTheDay"`
	OneDayBefore    bool `firestore:"oneDayBefore"`
	ThreeDaysBefore bool `firestore:"threeDaysBefore"`
	OneWeekBefore   bool `firestore:"oneWeekBefore"`
	OneMonthBefore  bool `firestore:"oneMonthBefore"`
}

// Milestone is a user milestone (anniversary, achievement, ...). The job only
// ever writes LastNotifiedAt.
type Milestone struct {
	MilestoneID          string                        `firestore:"id,omitempty"`
	Title                string                        `firestore:"title,omitempty"`
	Type                 string                        `firestore:"type,omitempty"`
	Icon                 string                        `firestore:"icon,omitempty"`
	IsActive             bool                          `firestore:"isActive"`
	IsRecurring          bool                          `firestore:"isRecurring"`
	OriginalDate         *time.Time                    `firestore:"originalDate,omitempty"`
	NotificationSettings MilestoneNotificationSettings `firestore:"notificationSettings"`
	LastNotifiedAt       *time.Time                    `firestore:"lastNotifiedAt,omitempty"`
}
