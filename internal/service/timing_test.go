package service

import (
	"testing"
	"time"

	"github.com/izdhan/examcenter/internal/apperr"
)

func TestValidateTiming(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name     string
		input    TimingInput
		wantCode apperr.Code
	}{
		{
			name: "valid strict exam",
			input: TimingInput{
				StartTime: base,
				EndTime:   base.Add(2 * time.Hour),
				Duration:  120,
			},
		},
		{
			name: "valid windowed exam",
			input: TimingInput{
				StartTime:   base,
				EndTime:     base.Add(4 * time.Hour),
				Duration:    60,
				WindowStart: ptr(base.Add(30 * time.Minute)),
				WindowEnd:   ptr(base.Add(2 * time.Hour)),
			},
		},
		{
			name: "missing start and end skips validation",
			input: TimingInput{
				Duration: 60,
			},
		},
		{
			name: "end before start",
			input: TimingInput{
				StartTime: base,
				EndTime:   base.Add(-time.Hour),
				Duration:  30,
			},
			wantCode: apperr.CodeEndBeforeStart,
		},
		{
			name: "end equals start",
			input: TimingInput{
				StartTime: base,
				EndTime:   base,
				Duration:  30,
			},
			wantCode: apperr.CodeEndBeforeStart,
		},
		{
			name: "window end before window start",
			input: TimingInput{
				StartTime:   base,
				EndTime:     base.Add(4 * time.Hour),
				Duration:    30,
				WindowStart: ptr(base.Add(2 * time.Hour)),
				WindowEnd:   ptr(base.Add(time.Hour)),
			},
			wantCode: apperr.CodeWindowEndBeforeStart,
		},
		{
			name: "window starts before exam",
			input: TimingInput{
				StartTime:   base,
				EndTime:     base.Add(4 * time.Hour),
				Duration:    30,
				WindowStart: ptr(base.Add(-time.Hour)),
				WindowEnd:   ptr(base.Add(time.Hour)),
			},
			wantCode: apperr.CodeWindowStartBeforeExam,
		},
		{
			name: "window ends after exam",
			input: TimingInput{
				StartTime:   base,
				EndTime:     base.Add(4 * time.Hour),
				Duration:    30,
				WindowStart: ptr(base.Add(time.Hour)),
				WindowEnd:   ptr(base.Add(5 * time.Hour)),
			},
			wantCode: apperr.CodeWindowEndAfterExam,
		},
		{
			name: "ninety minute exam in one hour window",
			input: TimingInput{
				StartTime:   base,
				EndTime:     base.Add(4 * time.Hour),
				Duration:    90,
				WindowStart: ptr(base),
				WindowEnd:   ptr(base.Add(time.Hour)),
			},
			wantCode: apperr.CodeDurationExceedsWindow,
		},
		{
			name: "duration exactly fills window",
			input: TimingInput{
				StartTime:   base,
				EndTime:     base.Add(4 * time.Hour),
				Duration:    60,
				WindowStart: ptr(base),
				WindowEnd:   ptr(base.Add(time.Hour)),
			},
		},
		{
			name: "duration exceeds start to end period",
			input: TimingInput{
				StartTime: base,
				EndTime:   base.Add(time.Hour),
				Duration:  90,
			},
			wantCode: apperr.CodeDurationExceedsTime,
		},
		{
			name: "only window start set",
			input: TimingInput{
				StartTime:   base,
				EndTime:     base.Add(4 * time.Hour),
				Duration:    30,
				WindowStart: ptr(base),
			},
			wantCode: apperr.CodeInvalidWindowConfig,
		},
		{
			name: "only window end set",
			input: TimingInput{
				StartTime: base,
				EndTime:   base.Add(4 * time.Hour),
				Duration:  30,
				WindowEnd: ptr(base.Add(time.Hour)),
			},
			wantCode: apperr.CodeInvalidWindowConfig,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTiming(tc.input)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("ValidateTiming() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateTiming() = nil, want code %s", tc.wantCode)
			}
			if got := apperr.CodeOf(err); got != tc.wantCode {
				t.Errorf("code = %s, want %s", got, tc.wantCode)
			}
		})
	}
}
