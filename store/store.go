package store

import (
	"context"
	"time"

	"plannerjobs/model"
)

// Store is the document-store collaborator consumed by the notification job.
// Users are identified by email address throughout.
type Store interface {
	NotificationPreferences(ctx context.Context) ([]model.NotificationPreference, error)
	EmailPreferences(ctx context.Context) ([]model.EmailPreference, error)
	UpdateEmailPreference(ctx context.Context, userEmail string, fields map[string]interface{}) error

	TasksForUser(ctx context.Context, userEmail string) ([]model.Task, error)
	UpdateTask(ctx context.Context, userEmail, taskID string, fields map[string]interface{}) error

	ActiveMilestonesForUser(ctx context.Context, userEmail string) ([]model.Milestone, error)
	UpdateMilestone(ctx context.Context, userEmail, milestoneID string, fields map[string]interface{}) error

	SubscriptionsForUser(ctx context.Context, userEmail string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, userEmail, subscriptionID string) error

	// HasUnreadTaskNotification reports whether an unread record of the given
	// data type already exists for the task.
	HasUnreadTaskNotification(ctx context.Context, userEmail, taskID, notifType string) (bool, error)
	// HasMilestoneNotificationSince reports whether a milestone-reminder
	// record with the given lead-time type was created at or after since.
	HasMilestoneNotificationSince(ctx context.Context, userEmail, milestoneID, notificationType string, since time.Time) (bool, error)
	CreateNotification(ctx context.Context, userEmail string, record model.NotificationRecord) error
	MarkNotificationSent(ctx context.Context, userEmail, notificationID string, sentAt time.Time) error

	LoopControl(ctx context.Context) (model.LoopControl, error)
	SetLoopControl(ctx context.Context, running bool, updatedAt string) error
}
