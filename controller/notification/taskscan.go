package notification

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"plannerjobs/dto"
	"plannerjobs/model"
	"plannerjobs/services"

	"github.com/google/uuid"
)

const (
	overdueCooldown   = 24 * time.Hour   // no overdue re-alert for a task within this window
	reminderCooldown  = 30 * time.Minute // no reminder re-send for a task within this window
	reminderLookahead = 2 * time.Hour    // reminders fire only this close to the due time
)

// ScanUserNotifications runs the overdue, reminder and milestone passes for
// one user and reports what was sent. now is passed explicitly so every
// decision is reproducible.
func ScanUserNotifications(ctx context.Context, deps Deps, pref model.NotificationPreference, now time.Time) dto.UserScanDetail {
	detail := dto.UserScanDetail{UserEmail: pref.UserEmail, Status: "processed"}
	if !pref.Enabled {
		detail.Status = "skipped"
		detail.Reason = "notifications disabled"
		return detail
	}
	if services.IsInQuietHours(pref.QuietHours, now) {
		detail.Status = "skipped"
		detail.Reason = "quiet hours"
		return detail
	}
	subs, err := deps.Store.SubscriptionsForUser(ctx, pref.UserEmail)
	if err != nil {
		detail.Status = "error"
		detail.Error = fmt.Sprintf("load subscriptions: %v", err)
		return detail
	}
	if len(subs) == 0 {
		detail.Status = "skipped"
		detail.Reason = "no push subscriptions"
		return detail
	}

	var errs []string
	if pref.OverdueAlerts || pref.TaskReminders {
		tasks, err := deps.Store.TasksForUser(ctx, pref.UserEmail)
		if err != nil {
			errs = append(errs, fmt.Sprintf("load tasks: %v", err))
		} else {
			for _, task := range tasks {
				// tasks without a normalizable reminder time carry nothing to schedule on
				if task.ReminderAt == nil {
					continue
				}
				if pref.OverdueAlerts && isOverdueCandidate(task, now) {
					sent, err := sendOverdueAlert(ctx, deps, pref.UserEmail, task, subs, now)
					if err != nil {
						errs = append(errs, err.Error())
					}
					if sent {
						detail.OverdueSent++
					}
				}
				if pref.TaskReminders && isReminderCandidate(task, now) {
					sent, err := sendTaskReminder(ctx, deps, pref.UserEmail, task, subs, now)
					if err != nil {
						errs = append(errs, err.Error())
					}
					if sent {
						detail.RemindersSent++
					}
				}
			}
		}
	}

	milestonesSent, milestoneErrs := scanUserMilestones(ctx, deps, pref.UserEmail, subs, now)
	detail.MilestonesSent = milestonesSent
	errs = append(errs, milestoneErrs...)

	if len(errs) > 0 {
		detail.Error = strings.Join(errs, "; ")
	}
	return detail
}

func isOverdueCandidate(task model.Task, now time.Time) bool {
	if task.CompletedAt != nil {
		return false
	}
	if task.NotifiedAt != nil && now.Sub(*task.NotifiedAt) < overdueCooldown {
		return false
	}
	return task.ReminderAt.Before(now)
}

func isReminderCandidate(task model.Task, now time.Time) bool {
	if task.CompletedAt != nil || task.OnlyNotifyAtReminder {
		return false
	}
	if task.LastRemindedAt != nil && now.Sub(*task.LastRemindedAt) < reminderCooldown {
		return false
	}
	if !task.ReminderAt.After(now) {
		return false
	}
	return !task.ReminderAt.After(now.Add(reminderLookahead))
}

func sendOverdueAlert(ctx context.Context, deps Deps, userEmail string, task model.Task, subs []model.PushSubscription, now time.Time) (bool, error) {
	duplicate, err := deps.Store.HasUnreadTaskNotification(ctx, userEmail, task.TaskID, model.NotifTypeOverdueTask)
	if err != nil {
		// a failed dedupe check does not block the alert
		deps.logger().Warnw("overdue dedupe check failed", "user", userEmail, "task", task.TaskID, "error", err)
	} else if duplicate {
		return false, nil
	}

	body := fmt.Sprintf("%q is overdue!", task.Title)
	record := newTaskNotification(userEmail, task, "Task Overdue", body, model.NotifTypeOverdueTask, now)
	if err := deps.Store.CreateNotification(ctx, userEmail, record); err != nil {
		return false, fmt.Errorf("create overdue notification for task %s: %w", task.TaskID, err)
	}

	if delivered := deliverToSubscriptions(ctx, deps, userEmail, subs, notificationPayload(record)); delivered > 0 {
		if err := deps.Store.MarkNotificationSent(ctx, userEmail, record.NotificationID, now); err != nil {
			deps.logger().Warnw("failed to mark notification sent", "user", userEmail, "notification", record.NotificationID, "error", err)
		}
	}

	// notifiedAt is stamped even when every delivery failed; the task must
	// not retrigger on each cycle inside the cooldown window
	if err := deps.Store.UpdateTask(ctx, userEmail, task.TaskID, map[string]interface{}{"notifiedAt": now}); err != nil {
		return true, fmt.Errorf("stamp notifiedAt on task %s: %w", task.TaskID, err)
	}
	return true, nil
}

func sendTaskReminder(ctx context.Context, deps Deps, userEmail string, task model.Task, subs []model.PushSubscription, now time.Time) (bool, error) {
	duplicate, err := deps.Store.HasUnreadTaskNotification(ctx, userEmail, task.TaskID, model.NotifTypeTaskReminder)
	if err != nil {
		deps.logger().Warnw("reminder dedupe check failed", "user", userEmail, "task", task.TaskID, "error", err)
	} else if duplicate {
		return false, nil
	}

	minutes := int(math.Round(task.ReminderAt.Sub(now).Minutes()))
	body := fmt.Sprintf("%q is due in %d minutes", task.Title, minutes)
	record := newTaskNotification(userEmail, task, "Task Reminder", body, model.NotifTypeTaskReminder, now)
	if err := deps.Store.CreateNotification(ctx, userEmail, record); err != nil {
		return false, fmt.Errorf("create reminder notification for task %s: %w", task.TaskID, err)
	}

	if delivered := deliverToSubscriptions(ctx, deps, userEmail, subs, notificationPayload(record)); delivered > 0 {
		if err := deps.Store.MarkNotificationSent(ctx, userEmail, record.NotificationID, now); err != nil {
			deps.logger().Warnw("failed to mark notification sent", "user", userEmail, "notification", record.NotificationID, "error", err)
		}
	}

	if err := deps.Store.UpdateTask(ctx, userEmail, task.TaskID, map[string]interface{}{"lastRemindedAt": now}); err != nil {
		return true, fmt.Errorf("stamp lastRemindedAt on task %s: %w", task.TaskID, err)
	}
	return true, nil
}

func newTaskNotification(userEmail string, task model.Task, title, body, notifType string, now time.Time) model.NotificationRecord {
	id := uuid.New().String()
	return model.NotificationRecord{
		NotificationID: id,
		Title:          title,
		Body:           body,
		Type:           "push",
		RelatedTaskID:  task.TaskID,
		IsRead:         false,
		CreatedAt:      now,
		Data: model.NotificationData{
			Type:           notifType,
			TaskID:         task.TaskID,
			Title:          task.Title,
			NotificationID: id,
			UserEmail:      userEmail,
			URL:            "/tasks",
			Timestamp:      now.UnixMilli(),
		},
	}
}

func notificationPayload(record model.NotificationRecord) services.PushPayload {
	return services.PushPayload{
		Title: record.Title,
		Body:  record.Body,
		Icon:  "/icons/icon-192.png",
		Badge: "/icons/badge-72.png",
		Tag:   record.Data.Type + "-" + record.NotificationID,
		Data:  record.Data,
	}
}
