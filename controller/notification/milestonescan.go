package notification

import (
	"context"
	"fmt"
	"math"
	"time"

	"plannerjobs/model"
	"plannerjobs/services"

	"github.com/google/uuid"
)

// scanUserMilestones runs the anniversary pass for one user. Only recurring
// milestones are evaluated; a non-recurring milestone has no upcoming
// anniversary to count down to.
func scanUserMilestones(ctx context.Context, deps Deps, userEmail string, subs []model.PushSubscription, now time.Time) (int, []string) {
	milestones, err := deps.Store.ActiveMilestonesForUser(ctx, userEmail)
	if err != nil {
		return 0, []string{fmt.Sprintf("load milestones: %v", err)}
	}

	sent := 0
	var errs []string
	for _, m := range milestones {
		if !m.IsRecurring || m.OriginalDate == nil {
			continue
		}
		daysUntil := daysUntilAnniversary(*m.OriginalDate, now)
		notificationType, ok := milestoneNotificationType(m.NotificationSettings, daysUntil)
		if !ok {
			continue
		}
		didSend, err := sendMilestoneAlert(ctx, deps, userEmail, m, subs, daysUntil, notificationType, now)
		if err != nil {
			errs = append(errs, err.Error())
		}
		if didSend {
			sent++
		}
	}
	return sent, errs
}

// daysUntilAnniversary counts whole days from today until the next
// occurrence of originalDate's month and day. This year's date is used
// unless it has already passed, in which case next year's is.
func daysUntilAnniversary(originalDate, now time.Time) int {
	today := services.StartOfDay(now)
	anniversary := time.Date(now.Year(), originalDate.Month(), originalDate.Day(), 0, 0, 0, 0, now.Location())
	if anniversary.Before(today) {
		anniversary = anniversary.AddDate(1, 0, 0)
	}
	return int(math.Round(anniversary.Sub(today).Hours() / 24))
}

// milestoneNotificationType matches daysUntil against the five fixed
// lead-time thresholds, each gated by its own setting. No other offsets
// ever trigger.
func milestoneNotificationType(settings model.MilestoneNotificationSettings, daysUntil int) (string, bool) {
	switch daysUntil {
	case 0:
		if settings.OnTheDay {
			return model.MilestoneOnTheDay, true
		}
	case 1:
		if settings.OneDayBefore {
			return model.MilestoneOneDayBefore, true
		}
	case 3:
		if settings.ThreeDaysBefore {
			return model.MilestoneThreeDaysBefore, true
		}
	case 7:
		if settings.OneWeekBefore {
			return model.MilestoneOneWeekBefore, true
		}
	case 30:
		if settings.OneMonthBefore {
			return model.MilestoneOneMonthBefore, true
		}
	}
	return "", false
}

func sendMilestoneAlert(ctx context.Context, deps Deps, userEmail string, m model.Milestone, subs []model.PushSubscription, daysUntil int, notificationType string, now time.Time) (bool, error) {
	// one alert per milestone per lead-time type per calendar day, regardless
	// of whether the earlier one was read
	duplicate, err := deps.Store.HasMilestoneNotificationSince(ctx, userEmail, m.MilestoneID, notificationType, services.StartOfDay(now))
	if err != nil {
		deps.logger().Warnw("milestone dedupe check failed", "user", userEmail, "milestone", m.MilestoneID, "error", err)
	} else if duplicate {
		return false, nil
	}

	record := newMilestoneNotification(userEmail, m, daysUntil, notificationType, now)
	if err := deps.Store.CreateNotification(ctx, userEmail, record); err != nil {
		return false, fmt.Errorf("create milestone notification for %s: %w", m.MilestoneID, err)
	}

	if delivered := deliverToSubscriptions(ctx, deps, userEmail, subs, notificationPayload(record)); delivered > 0 {
		if err := deps.Store.MarkNotificationSent(ctx, userEmail, record.NotificationID, now); err != nil {
			deps.logger().Warnw("failed to mark notification sent", "user", userEmail, "notification", record.NotificationID, "error", err)
		}
	}

	if err := deps.Store.UpdateMilestone(ctx, userEmail, m.MilestoneID, map[string]interface{}{"lastNotifiedAt": now}); err != nil {
		return true, fmt.Errorf("stamp lastNotifiedAt on milestone %s: %w", m.MilestoneID, err)
	}
	return true, nil
}

func newMilestoneNotification(userEmail string, m model.Milestone, daysUntil int, notificationType string, now time.Time) model.NotificationRecord {
	years := yearsSince(*m.OriginalDate, now)
	if daysUntil == 0 {
		// today's alert celebrates the anniversary being reached
		years++
	}

	var body string
	if daysUntil == 0 {
		body = fmt.Sprintf("%s is today! %d years 🎉", m.Title, years)
	} else {
		body = fmt.Sprintf("%d days until %s (%d years)", daysUntil, m.Title, years)
	}

	title := "Milestone Reminder"
	if m.Icon != "" {
		title = m.Icon + " " + title
	}

	id := uuid.New().String()
	return model.NotificationRecord{
		NotificationID:     id,
		Title:              title,
		Body:               body,
		Type:               "push",
		RelatedMilestoneID: m.MilestoneID,
		IsRead:             false,
		CreatedAt:          now,
		Data: model.NotificationData{
			Type:             model.NotifTypeMilestoneReminder,
			NotificationType: notificationType,
			MilestoneID:      m.MilestoneID,
			Title:            m.Title,
			NotificationID:   id,
			UserEmail:        userEmail,
			URL:              "/milestones",
			Timestamp:        now.UnixMilli(),
		},
	}
}

func yearsSince(originalDate, now time.Time) int {
	return int(now.Sub(originalDate).Hours() / (24 * 365.25))
}
