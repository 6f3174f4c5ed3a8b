package notification

import (
	"context"
	"fmt"
	"time"

	"plannerjobs/dto"
)

// LoopConfig bounds one invocation of the continuous loop.
type LoopConfig struct {
	MaxRunTime time.Duration // wall-clock budget for the whole invocation
	CycleDelay time.Duration // sleep between successful cycles
	ErrorDelay time.Duration // sleep after a failed cycle (intentionally shorter; observed behavior)
	StopMargin time.Duration // stop early when less than this much budget remains
}

func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxRunTime: 5 * time.Minute,
		CycleDelay: 30 * time.Second,
		ErrorDelay: 5 * time.Second,
		StopMargin: time.Minute,
	}
}

// StartNotificationLoop runs cycles back to back until the wall-clock budget
// is spent or the persisted flag is flipped off by another actor. The flag is
// the only cross-invocation coordination: a second invocation that observes
// it set returns immediately without running any cycle.
func StartNotificationLoop(ctx context.Context, deps Deps, cfg LoopConfig) dto.LoopResult {
	log := deps.logger()
	result := dto.LoopResult{Errors: []string{}, StartedAt: time.Now().Format(time.RFC3339)}

	ctrl, err := deps.Store.LoopControl(ctx)
	if err != nil {
		result.Message = "failed to read loop control"
		result.Errors = append(result.Errors, err.Error())
		result.EndedAt = time.Now().Format(time.RFC3339)
		return result
	}
	if ctrl.IsLoopRunning {
		result.Success = true
		result.Message = "Loop already running"
		result.EndedAt = time.Now().Format(time.RFC3339)
		return result
	}

	start := time.Now()
	if err := setLoopRunning(ctx, deps, true); err != nil {
		result.Message = "failed to set loop flag"
		result.Errors = append(result.Errors, err.Error())
		result.EndedAt = time.Now().Format(time.RFC3339)
		return result
	}
	// the flag must come back down no matter how the loop exits
	defer func() {
		if err := setLoopRunning(ctx, deps, false); err != nil {
			log.Errorw("failed to reset loop flag", "error", err)
		}
	}()

	log.Infow("notification loop started", "maxRunTime", cfg.MaxRunTime)
	for time.Since(start) < cfg.MaxRunTime {
		ctrl, err := deps.Store.LoopControl(ctx)
		if err == nil && !ctrl.IsLoopRunning {
			result.Message = "Loop stopped externally"
			break
		}
		// refresh the flag so updatedAt doubles as a liveness marker
		if err := setLoopRunning(ctx, deps, true); err != nil {
			log.Warnw("failed to refresh loop flag", "error", err)
		}

		report, cycleErr := runCycleSafe(ctx, deps, time.Now())
		if cycleErr != nil {
			log.Errorw("notification cycle failed", "error", cycleErr)
			result.Errors = append(result.Errors, cycleErr.Error())
			time.Sleep(cfg.ErrorDelay)
			continue
		}

		result.Cycles++
		result.NotificationsSent += report.NotificationsSent
		result.DigestsSent += report.DigestsSent
		result.Errors = append(result.Errors, report.Errors...)

		if remaining := cfg.MaxRunTime - time.Since(start); remaining < cfg.StopMargin {
			result.Message = "Run time budget exhausted"
			break
		}
		time.Sleep(cfg.CycleDelay)
	}

	result.Success = true
	if result.Message == "" {
		result.Message = fmt.Sprintf("Loop finished after %d cycles", result.Cycles)
	}
	result.EndedAt = time.Now().Format(time.RFC3339)
	log.Infow("notification loop finished", "cycles", result.Cycles, "message", result.Message)
	return result
}

// runCycleSafe turns a panicking cycle into an error so the loop can keep
// going.
func runCycleSafe(ctx context.Context, deps Deps, now time.Time) (report dto.CycleReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return ExecuteNotificationCheck(ctx, deps, now), nil
}

// setLoopRunning writes the control document. UpdatedAt is a formatted local
// time string, matching what the settings UI displays.
func setLoopRunning(ctx context.Context, deps Deps, running bool) error {
	return deps.Store.SetLoopControl(ctx, running, time.Now().Format("2006-01-02 15:04:05"))
}
