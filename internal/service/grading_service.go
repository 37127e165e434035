package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/izdhan/examcenter/internal/apperr"
	"github.com/izdhan/examcenter/internal/dto"
	"github.com/izdhan/examcenter/internal/model"
	"github.com/izdhan/examcenter/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// GradingService is the marking workflow for manual-part answers: per-answer
// grading, bulk mark assignment, attempt score recomputation and results
// publication.
type GradingService interface {
	GradeAnswer(answerID uint, req dto.GradeAnswerRequest, userID uint, role model.Role) (*dto.GradeAnswerResponse, error)
	AutoAssignMarks(examID uint, req dto.AutoAssignMarksRequest, userID uint, role model.Role) (*dto.AutoAssignMarksResponse, error)
	ListSubmissions(examID, userID uint, role model.Role) ([]dto.AttemptResponse, error)
	RecalculateAttemptScore(attemptID uint) error
	PublishResults(examID, userID uint, role model.Role) error
}

type gradingService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AnswerRepository
	userRepo     repository.UserRepository
	rankingSvc   RankingService
	notifier     Notifier
}

func NewGradingService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	rankingSvc RankingService,
	notifier Notifier,
) GradingService {
	return &gradingService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		userRepo:     userRepo,
		rankingSvc:   rankingSvc,
		notifier:     notifier,
	}
}

// gradableExam loads the exam and checks the grading gate: exam creator, the
// class's teacher, or an admin.
func (s *gradingService) gradableExam(examID, userID uint, role model.Role) (*model.Exam, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	var class *model.Class
	if exam.ClassID != nil {
		class, err = s.userRepo.FindClassByID(*exam.ClassID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load class %d: %w", *exam.ClassID, err)
		}
	}
	if !CanGradeExam(exam, class, userID, role) {
		return nil, apperr.New(apperr.CodeAccessDenied, "grading requires the exam creator, the class teacher or an admin")
	}
	return exam, nil
}

func (s *gradingService) GradeAnswer(answerID uint, req dto.GradeAnswerRequest, userID uint, role model.Role) (*dto.GradeAnswerResponse, error) {
	answer, err := s.answerRepo.FindByID(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeAnswerNotFound, "answer %d not found", answerID)
		}
		return nil, fmt.Errorf("failed to load answer %d: %w", answerID, err)
	}
	if _, err := s.gradableExam(answer.Question.ExamID, userID, role); err != nil {
		return nil, err
	}

	if req.PointsAwarded > answer.Question.Points {
		return nil, apperr.Newf(apperr.CodeInvalidInput,
			"awarded points %.2f exceed the question maximum %.2f", req.PointsAwarded, answer.Question.Points)
	}

	points := req.PointsAwarded
	answer.PointsAwarded = &points
	answer.IsCorrect = points == answer.Question.Points
	answer.GraderComments = req.Comments
	if err := s.answerRepo.Update(answer); err != nil {
		return nil, fmt.Errorf("failed to save grade for answer %d: %w", answerID, err)
	}

	if err := s.RecalculateAttemptScore(answer.AttemptID); err != nil {
		return nil, err
	}

	log.Info().Uint("answerID", answerID).Float64("points", points).Uint("graderID", userID).Msg("Answer graded")
	var resp dto.GradeAnswerResponse
	copier.Copy(&resp.Answer, answer)
	return &resp, nil
}

// AutoAssignMarks applies one point value to every answer of a question across
// the exam (or only the still-ungraded ones), then recomputes each affected
// attempt.
func (s *gradingService) AutoAssignMarks(examID uint, req dto.AutoAssignMarksRequest, userID uint, role model.Role) (*dto.AutoAssignMarksResponse, error) {
	if _, err := s.gradableExam(examID, userID, role); err != nil {
		return nil, err
	}

	// Validate against the question itself, not its answers: an unanswered
	// question must still reject out-of-exam IDs and over-limit points.
	question, err := s.questionRepo.FindByID(req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeQuestionNotFound, "question %d not found", req.QuestionID)
		}
		return nil, fmt.Errorf("failed to load question %d: %w", req.QuestionID, err)
	}
	if question.ExamID != examID {
		return nil, apperr.Newf(apperr.CodeQuestionNotFound, "question %d does not belong to exam %d", req.QuestionID, examID)
	}
	if req.Points > question.Points {
		return nil, apperr.Newf(apperr.CodeInvalidInput,
			"assigned points %.2f exceed the question maximum %.2f", req.Points, question.Points)
	}

	answers, err := s.answerRepo.FindByQuestionID(req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for question %d: %w", req.QuestionID, err)
	}

	touched := make(map[uint]struct{})
	toSave := make([]model.ExamAnswer, 0, len(answers))
	for i := range answers {
		answer := &answers[i]
		if req.ApplyToUngraded && answer.PointsAwarded != nil {
			continue
		}
		points := req.Points
		answer.PointsAwarded = &points
		answer.IsCorrect = points == question.Points
		toSave = append(toSave, *answer)
		touched[answer.AttemptID] = struct{}{}
	}
	if err := s.answerRepo.UpdateBatch(toSave); err != nil {
		log.Error().Err(err).Uint("questionID", req.QuestionID).Msg("AutoAssignMarks: save failed")
		return nil, err
	}
	updated := len(toSave)

	for attemptID := range touched {
		if err := s.RecalculateAttemptScore(attemptID); err != nil {
			return nil, err
		}
	}

	log.Info().Uint("examID", examID).Uint("questionID", req.QuestionID).Int("updated", updated).Msg("Marks auto-assigned")
	return &dto.AutoAssignMarksResponse{AnswersUpdated: updated, AttemptsRecomputed: len(touched)}, nil
}

// ListSubmissions returns every attempt of an exam for the grading view,
// ordered by submission time.
func (s *gradingService) ListSubmissions(examID, userID uint, role model.Role) ([]dto.AttemptResponse, error) {
	if _, err := s.gradableExam(examID, userID, role); err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.FindByExamID(examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts for exam %d: %w", examID, err)
	}
	var resp []dto.AttemptResponse
	copier.Copy(&resp, &attempts)
	return resp, nil
}

// RecalculateAttemptScore re-sums awarded points per part and refreshes the
// attempt's totals. The attempt becomes GRADED only once every answer carries
// points; otherwise it stays SUBMITTED.
func (s *gradingService) RecalculateAttemptScore(attemptID uint) error {
	attempt, err := s.attemptRepo.FindByIDWithAnswers(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.CodeAttemptNotFound, "attempt %d not found", attemptID)
		}
		return fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}
	exam, err := s.examRepo.FindByID(attempt.ExamID)
	if err != nil {
		return fmt.Errorf("failed to load exam %d: %w", attempt.ExamID, err)
	}

	summary := SummarizeAnswers(attempt.Answers)
	attempt.Part1Score = summary.Part1Score
	attempt.Part2Score = summary.Part2Score
	attempt.TotalScore = summary.TotalScore()
	attempt.Percentage = percentageOf(attempt.TotalScore, exam.TotalMarks)
	attempt.Passed = attempt.TotalScore >= exam.PassingMarks
	if summary.AllGraded {
		attempt.Status = model.AttemptGraded
	} else if attempt.Status != model.AttemptInProgress {
		attempt.Status = model.AttemptSubmitted
	}

	if err := s.attemptRepo.Update(attempt); err != nil {
		return fmt.Errorf("failed to save recomputed attempt %d: %w", attemptID, err)
	}
	return nil
}

// PublishResults opens results to students, completes the exam, recalculates
// rankings and notifies every graded student.
func (s *gradingService) PublishResults(examID, userID uint, role model.Role) error {
	exam, err := s.gradableExam(examID, userID, role)
	if err != nil {
		return err
	}

	exam.ShowResults = true
	exam.Status = model.ExamCompleted
	if err := s.examRepo.Update(exam); err != nil {
		return fmt.Errorf("failed to publish results for exam %d: %w", examID, err)
	}

	if exam.EnableRanking {
		if err := s.rankingSvc.CalculateRankingsForExam(examID); err != nil {
			log.Error().Err(err).Uint("examID", examID).Msg("PublishResults: ranking recalculation failed")
		}
	}

	graded, err := s.attemptRepo.FindByExamAndStatus(examID, model.AttemptGraded)
	if err != nil {
		return fmt.Errorf("failed to load graded attempts for exam %d: %w", examID, err)
	}
	for _, attempt := range graded {
		if err := s.notifier.CreateNotification(attempt.StudentID, exam.Title,
			fmt.Sprintf("Results for %q are available. Score: %.1f/%.1f", exam.Title, attempt.TotalScore, attempt.MaxScore),
			"EXAM_RESULTS",
			map[string]any{"exam_id": examID, "attempt_id": attempt.ID, "published_at": time.Now()},
		); err != nil {
			log.Warn().Err(err).Uint("studentID", attempt.StudentID).Msg("PublishResults: result notification failed")
		}
	}

	log.Info().Uint("examID", examID).Int("gradedAttempts", len(graded)).Msg("Exam results published")
	return nil
}

// AnswerSummary is the outcome of re-summing an attempt's answers.
type AnswerSummary struct {
	Part1Score float64
	Part2Score float64
	AllGraded  bool
}

func (s AnswerSummary) TotalScore() float64 {
	return s.Part1Score + s.Part2Score
}

// SummarizeAnswers sums awarded points per exam part. AllGraded holds only
// when every answer has non-nil points.
func SummarizeAnswers(answers []model.ExamAnswer) AnswerSummary {
	summary := AnswerSummary{AllGraded: true}
	for _, answer := range answers {
		if answer.PointsAwarded == nil {
			summary.AllGraded = false
			continue
		}
		if answer.Question.ExamPart == model.PartManual {
			summary.Part2Score += *answer.PointsAwarded
		} else {
			summary.Part1Score += *answer.PointsAwarded
		}
	}
	return summary
}
