package dto

// UserScanDetail is the per-user outcome of the task + milestone scan.
type UserScanDetail struct {
	UserEmail      string `json:"userEmail"`
	Status         string `json:"status"` // "processed", "skipped" or "error"
	Reason         string `json:"reason,omitempty"`
	OverdueSent    int    `json:"overdueSent"`
	RemindersSent  int    `json:"remindersSent"`
	MilestonesSent int    `json:"milestonesSent"`
	Error          string `json:"error,omitempty"`
}

// UserDigestDetail is the per-user outcome of the digest dispatch.
type UserDigestDetail struct {
	UserEmail    string `json:"userEmail"`
	Status       string `json:"status"`
	DailySent    bool   `json:"dailySent"`
	WeeklySent   bool   `json:"weeklySent"`
	DailyReason  string `json:"dailyReason,omitempty"`
	WeeklyReason string `json:"weeklyReason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ScanSummary aggregates the push-notification branch of a cycle.
type ScanSummary struct {
	Processed   int              `json:"processed"`
	Skipped     int              `json:"skipped"`
	Sent        int              `json:"sent"`
	Errors      []string         `json:"errors"`
	SuccessLogs []string         `json:"successLogs"`
	Details     []UserScanDetail `json:"details"`
}

// DigestSummary aggregates the email-digest branch of a cycle.
type DigestSummary struct {
	Processed   int                `json:"processed"`
	Skipped     int                `json:"skipped"`
	Sent        int                `json:"sent"`
	Errors      []string           `json:"errors"`
	SuccessLogs []string           `json:"successLogs"`
	Details     []UserDigestDetail `json:"details"`
}

// CycleReport is the structured result of one orchestrator pass. The
// flattened counters duplicate the nested sections for older report
// consumers.
type CycleReport struct {
	Timestamp         string        `json:"timestamp"`
	PushNotifications ScanSummary   `json:"pushNotifications"`
	EmailDigests      DigestSummary `json:"emailDigests"`
	TotalProcessed    int           `json:"totalProcessed"`
	NotificationsSent int           `json:"notificationsSent"`
	DigestsSent       int           `json:"digestsSent"`
	Errors            []string      `json:"errors"`
	SuccessLogs       []string      `json:"successLogs"`
}

// LoopResult is the aggregate returned once the continuous loop terminates.
type LoopResult struct {
	Success           bool     `json:"success"`
	Message           string   `json:"message"`
	Cycles            int      `json:"cycles"`
	NotificationsSent int      `json:"notificationsSent"`
	DigestsSent       int      `json:"digestsSent"`
	Errors            []string `json:"errors"`
	StartedAt         string   `json:"startedAt"`
	EndedAt           string   `json:"endedAt,omitempty"`
}
