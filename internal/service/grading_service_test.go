package service

import (
	"testing"
	"time"

	"github.com/izdhan/examcenter/internal/apperr"
	"github.com/izdhan/examcenter/internal/dto"
	"github.com/izdhan/examcenter/internal/model"
)

func points(v float64) *float64 { return &v }

func newGradingFixture(t *testing.T) (GradingService, *fakeAttemptRepo, *fakeAnswerRepo) {
	t.Helper()
	exam := &model.Exam{
		ID:           1,
		Title:        "Term Test",
		Status:       model.ExamPublished,
		TotalMarks:   100,
		PassingMarks: 50,
		CreatedByID:  10,
	}
	essay := model.ExamQuestion{ID: 3, ExamID: 1, ExamPart: model.PartManual, Type: model.QuestionEssay, Points: 35}
	mcq := model.ExamQuestion{ID: 1, ExamID: 1, ExamPart: model.PartAuto, Type: model.QuestionMCQ, Points: 40}

	submittedAt := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	attemptRepo := newFakeAttemptRepo(&model.ExamAttempt{
		ID:          7,
		ExamID:      1,
		StudentID:   100,
		Status:      model.AttemptSubmitted,
		MaxScore:    100,
		Part1Score:  40,
		TotalScore:  40,
		SubmittedAt: &submittedAt,
		Answers: []model.ExamAnswer{
			{ID: 20, AttemptID: 7, QuestionID: 1, Question: mcq, IsCorrect: true, PointsAwarded: points(40)},
			{ID: 21, AttemptID: 7, QuestionID: 3, Question: essay, Answer: "essay text"},
		},
	})
	answerRepo := newFakeAnswerRepo(
		&model.ExamAnswer{ID: 21, AttemptID: 7, QuestionID: 3, Question: essay, Answer: "essay text"},
	)
	questionRepo := newFakeQuestionRepo(&mcq, &essay)

	rankingSvc := NewRankingService(newFakeExamRepo(exam), attemptRepo, newFakeRankingRepo())
	svc := NewGradingService(newFakeExamRepo(exam), questionRepo, attemptRepo, answerRepo, newFakeUserRepo(), rankingSvc, &fakeNotifier{})
	return svc, attemptRepo, answerRepo
}

func TestGradeAnswer(t *testing.T) {
	t.Run("full marks sets isCorrect", func(t *testing.T) {
		svc, _, _ := newGradingFixture(t)

		resp, err := svc.GradeAnswer(21, dto.GradeAnswerRequest{PointsAwarded: 35, Comments: "well argued"}, 10, model.RoleTeacher)
		if err != nil {
			t.Fatalf("GradeAnswer() = %v", err)
		}
		if !resp.Answer.IsCorrect {
			t.Error("full marks should set isCorrect")
		}
		if resp.Answer.PointsAwarded == nil || *resp.Answer.PointsAwarded != 35 {
			t.Errorf("PointsAwarded = %v, want 35", resp.Answer.PointsAwarded)
		}
	})

	t.Run("partial marks leave isCorrect false", func(t *testing.T) {
		svc, _, answerRepo := newGradingFixture(t)

		resp, err := svc.GradeAnswer(21, dto.GradeAnswerRequest{PointsAwarded: 20}, 10, model.RoleTeacher)
		if err != nil {
			t.Fatalf("GradeAnswer() = %v", err)
		}
		if resp.Answer.IsCorrect {
			t.Error("partial marks should not set isCorrect")
		}
		stored, _ := answerRepo.FindByID(21)
		if stored.PointsAwarded == nil || *stored.PointsAwarded != 20 {
			t.Errorf("stored points = %v, want 20", stored.PointsAwarded)
		}
	})

	t.Run("rejects marks above the question maximum", func(t *testing.T) {
		svc, _, _ := newGradingFixture(t)

		_, err := svc.GradeAnswer(21, dto.GradeAnswerRequest{PointsAwarded: 35.01}, 10, model.RoleTeacher)
		if apperr.CodeOf(err) != apperr.CodeInvalidInput {
			t.Errorf("code = %s, want INVALID_INPUT", apperr.CodeOf(err))
		}
	})

	t.Run("denies graders without a claim on the exam", func(t *testing.T) {
		svc, _, _ := newGradingFixture(t)

		_, err := svc.GradeAnswer(21, dto.GradeAnswerRequest{PointsAwarded: 10}, 77, model.RoleTeacher)
		if apperr.CodeOf(err) != apperr.CodeAccessDenied {
			t.Errorf("code = %s, want ACCESS_DENIED", apperr.CodeOf(err))
		}
	})

	t.Run("unknown answer", func(t *testing.T) {
		svc, _, _ := newGradingFixture(t)

		_, err := svc.GradeAnswer(999, dto.GradeAnswerRequest{PointsAwarded: 10}, 10, model.RoleTeacher)
		if apperr.CodeOf(err) != apperr.CodeAnswerNotFound {
			t.Errorf("code = %s, want ANSWER_NOT_FOUND", apperr.CodeOf(err))
		}
	})
}

func TestAutoAssignMarks(t *testing.T) {
	essay := model.ExamQuestion{ID: 3, ExamID: 1, ExamPart: model.PartManual, Type: model.QuestionEssay, Points: 35}
	foreign := model.ExamQuestion{ID: 9, ExamID: 2, ExamPart: model.PartManual, Type: model.QuestionEssay, Points: 35}

	newFixture := func(answers ...*model.ExamAnswer) (GradingService, *fakeAnswerRepo) {
		exam := &model.Exam{ID: 1, Status: model.ExamPublished, TotalMarks: 100, PassingMarks: 50, CreatedByID: 10}
		attemptRepo := newFakeAttemptRepo(
			&model.ExamAttempt{ID: 7, ExamID: 1, StudentID: 100, Status: model.AttemptSubmitted, MaxScore: 100},
			&model.ExamAttempt{ID: 8, ExamID: 1, StudentID: 101, Status: model.AttemptSubmitted, MaxScore: 100},
		)
		answerRepo := newFakeAnswerRepo(answers...)
		svc := NewGradingService(newFakeExamRepo(exam), newFakeQuestionRepo(&essay, &foreign),
			attemptRepo, answerRepo, newFakeUserRepo(), nil, &fakeNotifier{})
		return svc, answerRepo
	}

	t.Run("unknown question", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.AutoAssignMarks(1, dto.AutoAssignMarksRequest{QuestionID: 999, Points: 10}, 10, model.RoleTeacher)
		if apperr.CodeOf(err) != apperr.CodeQuestionNotFound {
			t.Errorf("code = %s, want QUESTION_NOT_FOUND", apperr.CodeOf(err))
		}
	})

	t.Run("question outside the exam is rejected even without answers", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.AutoAssignMarks(1, dto.AutoAssignMarksRequest{QuestionID: 9, Points: 10}, 10, model.RoleTeacher)
		if apperr.CodeOf(err) != apperr.CodeQuestionNotFound {
			t.Errorf("code = %s, want QUESTION_NOT_FOUND", apperr.CodeOf(err))
		}
	})

	t.Run("over-limit points are rejected even without answers", func(t *testing.T) {
		svc, _ := newFixture()
		_, err := svc.AutoAssignMarks(1, dto.AutoAssignMarksRequest{QuestionID: 3, Points: 40}, 10, model.RoleTeacher)
		if apperr.CodeOf(err) != apperr.CodeInvalidInput {
			t.Errorf("code = %s, want INVALID_INPUT", apperr.CodeOf(err))
		}
	})

	t.Run("restricted mode touches only ungraded answers", func(t *testing.T) {
		svc, answerRepo := newFixture(
			&model.ExamAnswer{ID: 21, AttemptID: 7, QuestionID: 3, Question: essay},
			&model.ExamAnswer{ID: 22, AttemptID: 8, QuestionID: 3, Question: essay, PointsAwarded: points(30)},
		)
		resp, err := svc.AutoAssignMarks(1, dto.AutoAssignMarksRequest{QuestionID: 3, Points: 20, ApplyToUngraded: true}, 10, model.RoleTeacher)
		if err != nil {
			t.Fatalf("AutoAssignMarks() = %v", err)
		}
		if resp.AnswersUpdated != 1 || resp.AttemptsRecomputed != 1 {
			t.Errorf("updated %d answers across %d attempts, want 1 and 1", resp.AnswersUpdated, resp.AttemptsRecomputed)
		}
		ungraded, _ := answerRepo.FindByID(21)
		if ungraded.PointsAwarded == nil || *ungraded.PointsAwarded != 20 {
			t.Errorf("ungraded answer points = %v, want 20", ungraded.PointsAwarded)
		}
		graded, _ := answerRepo.FindByID(22)
		if *graded.PointsAwarded != 30 {
			t.Errorf("graded answer points = %v, want untouched 30", *graded.PointsAwarded)
		}
	})

	t.Run("unrestricted mode overwrites every answer", func(t *testing.T) {
		svc, answerRepo := newFixture(
			&model.ExamAnswer{ID: 21, AttemptID: 7, QuestionID: 3, Question: essay},
			&model.ExamAnswer{ID: 22, AttemptID: 8, QuestionID: 3, Question: essay, PointsAwarded: points(30)},
		)
		resp, err := svc.AutoAssignMarks(1, dto.AutoAssignMarksRequest{QuestionID: 3, Points: 35}, 10, model.RoleTeacher)
		if err != nil {
			t.Fatalf("AutoAssignMarks() = %v", err)
		}
		if resp.AnswersUpdated != 2 || resp.AttemptsRecomputed != 2 {
			t.Errorf("updated %d answers across %d attempts, want 2 and 2", resp.AnswersUpdated, resp.AttemptsRecomputed)
		}
		for _, id := range []uint{21, 22} {
			answer, _ := answerRepo.FindByID(id)
			if answer.PointsAwarded == nil || *answer.PointsAwarded != 35 {
				t.Errorf("answer %d points = %v, want 35", id, answer.PointsAwarded)
			}
			if !answer.IsCorrect {
				t.Errorf("answer %d at full marks should be correct", id)
			}
		}
	})
}

func TestRecalculateAttemptScore(t *testing.T) {
	exam := &model.Exam{ID: 1, TotalMarks: 100, PassingMarks: 50, CreatedByID: 10}
	mcq := model.ExamQuestion{ID: 1, ExamID: 1, ExamPart: model.PartAuto, Points: 40}
	essay := model.ExamQuestion{ID: 3, ExamID: 1, ExamPart: model.PartManual, Points: 35}

	t.Run("fully graded attempt passes with part sums", func(t *testing.T) {
		attemptRepo := newFakeAttemptRepo(&model.ExamAttempt{
			ID: 7, ExamID: 1, StudentID: 100, Status: model.AttemptSubmitted, MaxScore: 100,
			Answers: []model.ExamAnswer{
				{ID: 20, AttemptID: 7, QuestionID: 1, Question: mcq, PointsAwarded: points(40)},
				{ID: 21, AttemptID: 7, QuestionID: 3, Question: essay, PointsAwarded: points(25)},
			},
		})
		svc := NewGradingService(newFakeExamRepo(exam), newFakeQuestionRepo(), attemptRepo, newFakeAnswerRepo(), newFakeUserRepo(), nil, &fakeNotifier{})

		if err := svc.RecalculateAttemptScore(7); err != nil {
			t.Fatalf("RecalculateAttemptScore() = %v", err)
		}
		attempt, _ := attemptRepo.FindByID(7)
		if attempt.Part1Score != 40 || attempt.Part2Score != 25 {
			t.Errorf("part scores = %v, %v; want 40, 25", attempt.Part1Score, attempt.Part2Score)
		}
		if attempt.TotalScore != 65 {
			t.Errorf("TotalScore = %v, want 65", attempt.TotalScore)
		}
		if attempt.Percentage != 65 {
			t.Errorf("Percentage = %v, want 65", attempt.Percentage)
		}
		if !attempt.Passed {
			t.Error("65/100 with passing marks 50 should pass")
		}
		if attempt.Status != model.AttemptGraded {
			t.Errorf("Status = %s, want GRADED", attempt.Status)
		}
	})

	t.Run("ungraded answers keep the attempt submitted", func(t *testing.T) {
		attemptRepo := newFakeAttemptRepo(&model.ExamAttempt{
			ID: 8, ExamID: 1, StudentID: 100, Status: model.AttemptSubmitted, MaxScore: 100,
			Answers: []model.ExamAnswer{
				{ID: 22, AttemptID: 8, QuestionID: 1, Question: mcq, PointsAwarded: points(40)},
				{ID: 23, AttemptID: 8, QuestionID: 3, Question: essay},
			},
		})
		svc := NewGradingService(newFakeExamRepo(exam), newFakeQuestionRepo(), attemptRepo, newFakeAnswerRepo(), newFakeUserRepo(), nil, &fakeNotifier{})

		if err := svc.RecalculateAttemptScore(8); err != nil {
			t.Fatalf("RecalculateAttemptScore() = %v", err)
		}
		attempt, _ := attemptRepo.FindByID(8)
		if attempt.Status != model.AttemptSubmitted {
			t.Errorf("Status = %s, want SUBMITTED while ungraded answers remain", attempt.Status)
		}
		if attempt.TotalScore != 40 {
			t.Errorf("TotalScore = %v, want 40", attempt.TotalScore)
		}
		if attempt.Passed {
			t.Error("40/100 should not pass yet")
		}
	})

	t.Run("failing total stays below passing marks", func(t *testing.T) {
		attemptRepo := newFakeAttemptRepo(&model.ExamAttempt{
			ID: 9, ExamID: 1, StudentID: 100, Status: model.AttemptSubmitted, MaxScore: 100,
			Answers: []model.ExamAnswer{
				{ID: 24, AttemptID: 9, QuestionID: 1, Question: mcq, PointsAwarded: points(20)},
				{ID: 25, AttemptID: 9, QuestionID: 3, Question: essay, PointsAwarded: points(29)},
			},
		})
		svc := NewGradingService(newFakeExamRepo(exam), newFakeQuestionRepo(), attemptRepo, newFakeAnswerRepo(), newFakeUserRepo(), nil, &fakeNotifier{})

		if err := svc.RecalculateAttemptScore(9); err != nil {
			t.Fatalf("RecalculateAttemptScore() = %v", err)
		}
		attempt, _ := attemptRepo.FindByID(9)
		if attempt.Passed {
			t.Error("49/100 with passing marks 50 should fail")
		}
		if attempt.Status != model.AttemptGraded {
			t.Errorf("Status = %s, want GRADED", attempt.Status)
		}
	})
}

func TestSummarizeAnswers(t *testing.T) {
	mcq := model.ExamQuestion{ExamPart: model.PartAuto}
	essay := model.ExamQuestion{ExamPart: model.PartManual}

	summary := SummarizeAnswers([]model.ExamAnswer{
		{Question: mcq, PointsAwarded: points(30)},
		{Question: mcq, PointsAwarded: points(10)},
		{Question: essay, PointsAwarded: points(25)},
	})
	if summary.Part1Score != 40 || summary.Part2Score != 25 {
		t.Errorf("parts = %v, %v; want 40, 25", summary.Part1Score, summary.Part2Score)
	}
	if summary.TotalScore() != 65 {
		t.Errorf("TotalScore() = %v, want part1+part2", summary.TotalScore())
	}
	if !summary.AllGraded {
		t.Error("AllGraded should hold when every answer has points")
	}

	summary = SummarizeAnswers([]model.ExamAnswer{
		{Question: mcq, PointsAwarded: points(30)},
		{Question: essay},
	})
	if summary.AllGraded {
		t.Error("AllGraded should not hold with a nil-points answer")
	}
}

func TestListSubmissions(t *testing.T) {
	svc, _, _ := newGradingFixture(t)

	attempts, err := svc.ListSubmissions(1, 10, model.RoleTeacher)
	if err != nil {
		t.Fatalf("ListSubmissions() = %v", err)
	}
	if len(attempts) != 1 || attempts[0].ID != 7 {
		t.Fatalf("attempts = %+v, want the one seeded attempt", attempts)
	}

	if _, err := svc.ListSubmissions(1, 77, model.RoleStudent); apperr.CodeOf(err) != apperr.CodeAccessDenied {
		t.Errorf("code = %s, want ACCESS_DENIED", apperr.CodeOf(err))
	}
}
