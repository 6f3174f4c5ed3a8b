package notification

import (
	"context"
	"fmt"
	"time"

	"plannerjobs/dto"
	"plannerjobs/model"
	"plannerjobs/services"
)

// DispatchUserDigests evaluates the daily and weekly digest schedules for one
// user and sends whichever is due. The last-sent markers are updated only
// after the mail service confirms a send, so a failed send retries on the
// next cycle.
func DispatchUserDigests(ctx context.Context, deps Deps, pref model.EmailPreference, now time.Time) dto.UserDigestDetail {
	detail := dto.UserDigestDetail{UserEmail: pref.UserEmail, Status: "skipped"}

	daily := services.ShouldSendDailyDigest(pref, now)
	detail.DailyReason = daily.Reason
	if daily.ShouldSend {
		if services.IsInQuietHours(pref.QuietHours, now) {
			detail.DailyReason = "quiet hours"
		} else if err := deps.Mail.SendDailyDigest(ctx, pref.UserEmail); err != nil {
			detail.Error = appendError(detail.Error, fmt.Sprintf("daily digest: %v", err))
		} else {
			detail.DailySent = true
			if err := deps.Store.UpdateEmailPreference(ctx, pref.UserEmail, map[string]interface{}{"lastDailySent": now}); err != nil {
				detail.Error = appendError(detail.Error, fmt.Sprintf("stamp lastDailySent: %v", err))
			}
		}
	}

	weekly := services.ShouldSendWeeklyDigest(pref, now)
	detail.WeeklyReason = weekly.Reason
	if weekly.ShouldSend {
		if services.IsInQuietHours(pref.QuietHours, now) {
			detail.WeeklyReason = "quiet hours"
		} else if err := deps.Mail.SendWeeklyDigest(ctx, pref.UserEmail); err != nil {
			detail.Error = appendError(detail.Error, fmt.Sprintf("weekly digest: %v", err))
		} else {
			detail.WeeklySent = true
			if err := deps.Store.UpdateEmailPreference(ctx, pref.UserEmail, map[string]interface{}{"lastWeeklySent": now}); err != nil {
				detail.Error = appendError(detail.Error, fmt.Sprintf("stamp lastWeeklySent: %v", err))
			}
		}
	}

	if detail.DailySent || detail.WeeklySent {
		detail.Status = "processed"
	}
	if detail.Error != "" {
		detail.Status = "error"
	}
	return detail
}

func appendError(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + "; " + next
}
