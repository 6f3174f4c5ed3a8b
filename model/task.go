package model

import "time"

// Task is the slice of a task document the notification job cares about.
// The job only ever writes NotifiedAt (after an overdue alert) and
// LastRemindedAt (after a reminder); everything else is owned by the app.
type Task struct {
	TaskID               string     `firestore:"id,omitempty"`
	Title                string     `firestore:"title,omitempty"`
	ReminderAt           *time.Time `firestore:"reminderAt,omitempty"`
	CompletedAt          *time.Time `firestore:"completedAt,omitempty"`
	NotifiedAt           *time.Time `firestore:"notifiedAt,omitempty"`
	LastRemindedAt       *time.Time `firestore:"lastRemindedAt,omitempty"`
	OnlyNotifyAtReminder bool       `firestore:"onlyNotifyAtReminder,omitempty"`
}
