package model

import "time"

// Notification type constants carried in NotificationData.Type.
const (
	NotifTypeOverdueTask       = "overdue-task"
	NotifTypeTaskReminder      = "task-reminder"
	NotifTypeMilestoneReminder = "milestone-reminder"
	NotifTypeTest              = "test"
)

// Milestone lead-time identifiers carried in NotificationData.NotificationType.
const (
	MilestoneOnTheDay        = "onTheDay"
	MilestoneOneDayBefore    = "oneDayBefore"
	MilestoneThreeDaysBefore = "threeDaysBefore"
	MilestoneOneWeekBefore   = "oneWeekBefore"
	MilestoneOneMonthBefore  = "oneMonthBefore"
)

// NotificationData is the payload metadata stored with a record and sent to
// the push transport.
type NotificationData struct {
	Type             string `firestore:"type" json:"type"`
	NotificationType string `firestore:"notificationType,omitempty" json:"notificationType,omitempty"`
	TaskID           string `firestore:"taskId,omitempty" json:"taskId,omitempty"`
	MilestoneID      string `firestore:"milestoneId,omitempty" json:"milestoneId,omitempty"`
	Title            string `firestore:"title,omitempty" json:"title,omitempty"`
	NotificationID   string `firestore:"notificationId,omitempty" json:"notificationId,omitempty"`
	UserEmail        string `firestore:"userEmail,omitempty" json:"userEmail,omitempty"`
	URL              string `firestore:"url,omitempty" json:"url,omitempty"`
	Timestamp        int64  `firestore:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// NotificationRecord is the durable dedupe ledger entry. It is created before
// delivery is attempted, so a record exists even when every send fails;
// SentAt is set only when at least one subscription delivery succeeded.
type NotificationRecord struct {
	NotificationID     string           `firestore:"id"`
	Title              string           `firestore:"title"`
	Body               string           `firestore:"body"`
	Type               string           `firestore:"type"` // delivery channel, always "push"
	RelatedTaskID      string           `firestore:"relatedTaskId,omitempty"`
	RelatedMilestoneID string           `firestore:"relatedMilestoneId,omitempty"`
	IsRead             bool             `firestore:"isRead"`
	CreatedAt          time.Time        `firestore:"createdAt"`
	SentAt             *time.Time       `firestore:"sentAt,omitempty"`
	Data               NotificationData `firestore:"data"`
}

// PushSubscription is an opaque browser push endpoint for one device.
type PushSubscription struct {
	SubscriptionID string     `firestore:"id,omitempty"`
	Endpoint       string     `firestore:"endpoint"`
	P256dh         string     `firestore:"p256dh"`
	Auth           string     `firestore:"auth"`
	CreatedAt      *time.Time `firestore:"createdAt,omitempty"`
}
