package service

import (
	"time"

	"github.com/izdhan/examcenter/internal/apperr"
)

// TimingInput carries the schedule fields checked at exam creation or update.
type TimingInput struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    int // minutes
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// ValidateTiming checks start/end/window/duration consistency. A windowed exam
// lets students begin anywhere inside windowStart..windowEnd, which must nest
// inside the overall start..end period; a strict exam runs the full period.
// All checks are skipped when start or end is absent (partial update).
func ValidateTiming(in TimingInput) error {
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil
	}
	if !in.EndTime.After(in.StartTime) {
		return apperr.New(apperr.CodeEndBeforeStart, "exam end time must be after start time")
	}

	duration := time.Duration(in.Duration) * time.Minute

	switch {
	case in.WindowStart != nil && in.WindowEnd != nil:
		if !in.WindowEnd.After(*in.WindowStart) {
			return apperr.New(apperr.CodeWindowEndBeforeStart, "window end must be after window start")
		}
		if in.WindowStart.Before(in.StartTime) {
			return apperr.New(apperr.CodeWindowStartBeforeExam, "window start must not precede exam start")
		}
		if in.WindowEnd.After(in.EndTime) {
			return apperr.New(apperr.CodeWindowEndAfterExam, "window end must not exceed exam end")
		}
		if duration > in.WindowEnd.Sub(*in.WindowStart) {
			return apperr.New(apperr.CodeDurationExceedsWindow, "exam duration does not fit inside the start window")
		}
	case in.WindowStart == nil && in.WindowEnd == nil:
		if duration > in.EndTime.Sub(in.StartTime) {
			return apperr.New(apperr.CodeDurationExceedsTime, "exam duration does not fit between start and end time")
		}
	default:
		return apperr.New(apperr.CodeInvalidWindowConfig, "window start and window end must be set together")
	}
	return nil
}
