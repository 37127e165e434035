package model

import (
	"testing"
	"time"
)

func TestEffectiveStatus(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	exam := Exam{Status: ExamPublished, StartTime: start, EndTime: end}

	if got := exam.EffectiveStatus(start.Add(time.Hour)); got != ExamActive {
		t.Errorf("inside period = %s, want ACTIVE", got)
	}
	if got := exam.EffectiveStatus(start); got != ExamActive {
		t.Errorf("at start = %s, want ACTIVE", got)
	}
	if got := exam.EffectiveStatus(end); got != ExamActive {
		t.Errorf("at end = %s, want ACTIVE", got)
	}
	if got := exam.EffectiveStatus(start.Add(-time.Minute)); got != ExamPublished {
		t.Errorf("before start = %s, want PUBLISHED", got)
	}
	if got := exam.EffectiveStatus(end.Add(time.Minute)); got != ExamPublished {
		t.Errorf("after end = %s, want PUBLISHED", got)
	}

	draft := Exam{Status: ExamDraft, StartTime: start, EndTime: end}
	if got := draft.EffectiveStatus(start.Add(time.Hour)); got != ExamDraft {
		t.Errorf("draft exam = %s, want DRAFT", got)
	}
}

func TestAcademicYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), "2025/2026"},
		{time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), "2026/2027"},
		{time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC), "2026/2027"},
		{time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "2025/2026"},
	}
	for _, tc := range tests {
		if got := AcademicYear(tc.date); got != tc.want {
			t.Errorf("AcademicYear(%s) = %q, want %q", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}
