package notification

import (
	"fmt"
	"net/http"
	"time"

	"plannerjobs/middleware"
	"plannerjobs/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NotificationCheckController(router *gin.Engine, deps Deps) {
	router.POST("/notifications/check", middleware.InternalAuthMiddleware(), func(c *gin.Context) {
		RunNotificationCheck(c, deps)
	})
	router.GET("/notifications/check", middleware.InternalAuthMiddleware(), func(c *gin.Context) {
		SendTestNotifications(c, deps)
	})
	router.DELETE("/notifications/check", middleware.InternalAuthMiddleware(), func(c *gin.Context) {
		StopNotificationLoop(c, deps)
	})
}

// RunNotificationCheck runs either a single cycle (?mode=single) or the full
// continuous loop (default). Any failure escaping the job force-resets the
// loop flag so the system cannot wedge in "running".
func RunNotificationCheck(c *gin.Context, deps Deps) {
	defer func() {
		if r := recover(); r != nil {
			if err := setLoopRunning(c.Request.Context(), deps, false); err != nil {
				deps.logger().Errorw("failed to force-reset loop flag", "error", err)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("notification check failed: %v", r)})
		}
	}()

	ctx := c.Request.Context()
	if c.Query("mode") == "single" {
		report := ExecuteNotificationCheck(ctx, deps, time.Now())
		c.JSON(http.StatusOK, report)
		return
	}
	result := StartNotificationLoop(ctx, deps, DefaultLoopConfig())
	c.JSON(http.StatusOK, result)
}

// SendTestNotifications pushes an ad-hoc test notification to every enabled,
// subscribed user, bypassing schedules, dedupe and stamping.
func SendTestNotifications(c *gin.Context, deps Deps) {
	ctx := c.Request.Context()
	now := time.Now()

	prefs, err := deps.Store.NotificationPreferences(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notification preferences"})
		return
	}

	notified := 0
	attempted := 0
	var errors []string
	for _, pref := range prefs {
		if !pref.Enabled {
			continue
		}
		subs, err := deps.Store.SubscriptionsForUser(ctx, pref.UserEmail)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", pref.UserEmail, err))
			continue
		}
		if len(subs) == 0 {
			continue
		}
		attempted++

		id := uuid.New().String()
		record := model.NotificationRecord{
			NotificationID: id,
			Title:          "Test Notification",
			Body:           "Push notifications are working!",
			Type:           "push",
			CreatedAt:      now,
			Data: model.NotificationData{
				Type:           model.NotifTypeTest,
				NotificationID: id,
				UserEmail:      pref.UserEmail,
				Timestamp:      now.UnixMilli(),
			},
		}
		if err := deps.Store.CreateNotification(ctx, pref.UserEmail, record); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", pref.UserEmail, err))
			continue
		}
		if delivered := deliverToSubscriptions(ctx, deps, pref.UserEmail, subs, notificationPayload(record)); delivered > 0 {
			if err := deps.Store.MarkNotificationSent(ctx, pref.UserEmail, id, now); err != nil {
				deps.logger().Warnw("failed to mark test notification sent", "user", pref.UserEmail, "error", err)
			}
			notified++
		}
	}

	ctrl, err := deps.Store.LoopControl(ctx)
	if err != nil {
		deps.logger().Warnw("failed to read loop control", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Test notifications sent",
		"usersNotified":  notified,
		"usersAttempted": attempted,
		"errors":         errors,
		"isLoopRunning":  ctrl.IsLoopRunning,
		"loopUpdatedAt":  ctrl.UpdatedAt,
	})
}

// StopNotificationLoop force-sets the loop flag to false. It always reports
// success; an unreachable store is logged, not surfaced.
func StopNotificationLoop(c *gin.Context, deps Deps) {
	if err := setLoopRunning(c.Request.Context(), deps, false); err != nil {
		deps.logger().Errorw("failed to stop notification loop", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification loop stopped",
	})
}
