package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"plannerjobs/dto"
	"plannerjobs/model"
)

// ExecuteNotificationCheck runs one full cycle: the task+milestone scan over
// every notification-preference user and the digest dispatch over every
// email-preference user. The two branches are independent and run
// concurrently; per-user work inside each branch is sequential so a user's
// dedupe reads never race their own writes.
func ExecuteNotificationCheck(ctx context.Context, deps Deps, now time.Time) dto.CycleReport {
	report := dto.CycleReport{Timestamp: now.Format(time.RFC3339)}

	var wg sync.WaitGroup
	var pushSummary dto.ScanSummary
	var digestSummary dto.DigestSummary
	wg.Add(2)
	go func() {
		defer wg.Done()
		pushSummary = scanAllUsers(ctx, deps, now)
	}()
	go func() {
		defer wg.Done()
		digestSummary = dispatchAllDigests(ctx, deps, now)
	}()
	wg.Wait()

	report.PushNotifications = pushSummary
	report.EmailDigests = digestSummary

	// flattened counters for older report consumers
	report.TotalProcessed = pushSummary.Processed + digestSummary.Processed
	report.NotificationsSent = pushSummary.Sent
	report.DigestsSent = digestSummary.Sent
	report.Errors = append(append([]string{}, pushSummary.Errors...), digestSummary.Errors...)
	report.SuccessLogs = append(append([]string{}, pushSummary.SuccessLogs...), digestSummary.SuccessLogs...)

	deps.logger().Infow("notification cycle finished",
		"processed", report.TotalProcessed,
		"notificationsSent", report.NotificationsSent,
		"digestsSent", report.DigestsSent,
		"errors", len(report.Errors))
	return report
}

func scanAllUsers(ctx context.Context, deps Deps, now time.Time) dto.ScanSummary {
	summary := dto.ScanSummary{Errors: []string{}, SuccessLogs: []string{}}
	prefs, err := deps.Store.NotificationPreferences(ctx)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("load notification preferences: %v", err))
		return summary
	}

	for _, pref := range prefs {
		detail := scanUserSafe(ctx, deps, pref, now)
		summary.Details = append(summary.Details, detail)

		switch detail.Status {
		case "skipped":
			summary.Skipped++
		case "error":
			// full per-user failure; partial failures stay "processed"
		default:
			summary.Processed++
		}
		if detail.Error != "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", detail.UserEmail, detail.Error))
		}

		sent := detail.OverdueSent + detail.RemindersSent + detail.MilestonesSent
		summary.Sent += sent
		if sent > 0 {
			summary.SuccessLogs = append(summary.SuccessLogs,
				fmt.Sprintf("%s: %d overdue, %d reminders, %d milestones",
					detail.UserEmail, detail.OverdueSent, detail.RemindersSent, detail.MilestonesSent))
		}
	}
	return summary
}

// scanUserSafe isolates one user: a panic while scanning them becomes an
// error detail instead of taking down the rest of the cycle.
func scanUserSafe(ctx context.Context, deps Deps, pref model.NotificationPreference, now time.Time) (detail dto.UserScanDetail) {
	defer func() {
		if r := recover(); r != nil {
			deps.logger().Errorw("user scan panicked", "user", pref.UserEmail, "panic", r)
			detail = dto.UserScanDetail{UserEmail: pref.UserEmail, Status: "error", Error: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return ScanUserNotifications(ctx, deps, pref, now)
}

func dispatchAllDigests(ctx context.Context, deps Deps, now time.Time) dto.DigestSummary {
	summary := dto.DigestSummary{Errors: []string{}, SuccessLogs: []string{}}
	prefs, err := deps.Store.EmailPreferences(ctx)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("load email preferences: %v", err))
		return summary
	}

	for _, pref := range prefs {
		detail := dispatchUserSafe(ctx, deps, pref, now)
		summary.Details = append(summary.Details, detail)

		switch detail.Status {
		case "skipped":
			summary.Skipped++
		case "error":
		default:
			summary.Processed++
		}
		if detail.Error != "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", detail.UserEmail, detail.Error))
		}
		if detail.DailySent {
			summary.Sent++
			summary.SuccessLogs = append(summary.SuccessLogs, fmt.Sprintf("%s: daily digest sent", detail.UserEmail))
		}
		if detail.WeeklySent {
			summary.Sent++
			summary.SuccessLogs = append(summary.SuccessLogs, fmt.Sprintf("%s: weekly digest sent", detail.UserEmail))
		}
	}
	return summary
}

func dispatchUserSafe(ctx context.Context, deps Deps, pref model.EmailPreference, now time.Time) (detail dto.UserDigestDetail) {
	defer func() {
		if r := recover(); r != nil {
			deps.logger().Errorw("digest dispatch panicked", "user", pref.UserEmail, "panic", r)
			detail = dto.UserDigestDetail{UserEmail: pref.UserEmail, Status: "error", Error: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return DispatchUserDigests(ctx, deps, pref, now)
}
