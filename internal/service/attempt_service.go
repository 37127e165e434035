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

// AttemptService runs the student side of an exam: starting an attempt within
// the allowed window and cap, and submitting answers for auto-scoring.
type AttemptService interface {
	StartExam(examID, studentID uint) (*dto.StartExamResponse, error)
	SubmitExam(attemptID uint, req dto.SubmitExamRequest, studentID uint) (*dto.SubmitExamResponse, error)
	GetAttempt(attemptID, userID uint, role model.Role) (*dto.AttemptResponse, error)
	GetStudentAttempts(studentID uint) ([]dto.AttemptResponse, error)
}

type attemptService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	userRepo     repository.UserRepository
	rankingQueue *RankingQueue
	db           *gorm.DB
	now          func() time.Time
}

func NewAttemptService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	rankingQueue *RankingQueue,
	db *gorm.DB,
) AttemptService {
	return &attemptService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		rankingQueue: rankingQueue,
		db:           db,
		now:          time.Now,
	}
}

func (s *attemptService) StartExam(examID, studentID uint) (*dto.StartExamResponse, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}

	if exam.ClassID != nil {
		enrolled, err := s.userRepo.HasActiveEnrollment(*exam.ClassID, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check enrollment: %w", err)
		}
		if !enrolled {
			return nil, apperr.New(apperr.CodeNotEnrolled, "student is not actively enrolled in the exam's class")
		}
	}

	if exam.Status != model.ExamPublished {
		return nil, apperr.Newf(apperr.CodeExamNotAvailable, "exam %d is not open for attempts", examID)
	}
	now := s.now()
	if now.Before(exam.StartTime) || now.After(exam.EndTime) {
		return nil, apperr.Newf(apperr.CodeExamNotActive, "exam %d is outside its active period", examID)
	}

	count, err := s.attemptRepo.CountByExamAndStudent(examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if count >= int64(exam.AttemptsAllowed) {
		return nil, apperr.Newf(apperr.CodeMaxAttempts, "all %d attempts have been used", exam.AttemptsAllowed)
	}

	attempt := model.ExamAttempt{
		ExamID:        examID,
		StudentID:     studentID,
		AttemptNumber: int(count) + 1,
		Status:        model.AttemptInProgress,
		MaxScore:      exam.TotalMarks,
		StartedAt:     now,
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		log.Error().Err(err).Uint("examID", examID).Uint("studentID", studentID).Msg("StartExam: failed to create attempt")
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	questions, err := s.questionRepo.FindByExamID(examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for exam %d: %w", examID, err)
	}

	resp := dto.StartExamResponse{}
	copier.Copy(&resp.Attempt, &attempt)
	copier.Copy(&resp.Exam, exam)
	// Students get the answer-key-free question view.
	copier.Copy(&resp.Questions, &questions)

	log.Info().Uint("examID", examID).Uint("studentID", studentID).Int("attemptNumber", attempt.AttemptNumber).Msg("Exam attempt started")
	return &resp, nil
}

func (s *attemptService) SubmitExam(attemptID uint, req dto.SubmitExamRequest, studentID uint) (*dto.SubmitExamResponse, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeAttemptNotFound, "attempt %d not found", attemptID)
		}
		return nil, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}
	if attempt.StudentID != studentID {
		return nil, apperr.New(apperr.CodeForbidden, "attempt belongs to another student")
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, apperr.Newf(apperr.CodeAttemptNotInProgress, "attempt %d is not in progress", attemptID)
	}

	exam, err := s.examRepo.FindByIDWithQuestions(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam %d: %w", attempt.ExamID, err)
	}
	questionMap := make(map[uint]model.ExamQuestion, len(exam.Questions))
	for _, q := range exam.Questions {
		questionMap[q.ID] = q
	}

	now := s.now()
	answers, part1Score := ScoreSubmission(questionMap, req.Answers)

	attempt.Part1Score = part1Score
	attempt.TotalScore = part1Score
	attempt.Percentage = percentageOf(part1Score, attempt.MaxScore)
	attempt.Passed = part1Score >= exam.PassingMarks
	attempt.Status = model.AttemptSubmitted
	attempt.SubmittedAt = &now

	// Answer rows and the attempt update commit together.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			answers[i].AttemptID = attempt.ID
			if err := tx.Create(&answers[i]).Error; err != nil {
				return fmt.Errorf("failed to store answer for question %d: %w", answers[i].QuestionID, err)
			}
		}
		return tx.Save(attempt).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("SubmitExam: transaction failed")
		return nil, err
	}

	// Ranking runs in the background; a ranking failure never reaches the
	// submitting student.
	if exam.EnableRanking {
		s.rankingQueue.Enqueue(exam.ID)
	}

	resp := dto.SubmitExamResponse{
		Score:      attempt.TotalScore,
		MaxScore:   attempt.MaxScore,
		Percentage: attempt.Percentage,
		Passed:     attempt.Passed,
	}
	copier.Copy(&resp.Attempt, attempt)
	log.Info().Uint("attemptID", attemptID).Float64("score", attempt.TotalScore).Msg("Exam attempt submitted")
	return &resp, nil
}

func (s *attemptService) GetAttempt(attemptID, userID uint, role model.Role) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithAnswers(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeAttemptNotFound, "attempt %d not found", attemptID)
		}
		return nil, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}
	if attempt.StudentID != userID && !role.IsAdmin() && !role.IsTeacher() {
		return nil, apperr.New(apperr.CodeForbidden, "attempt belongs to another student")
	}
	var resp dto.AttemptResponse
	copier.Copy(&resp, attempt)
	return &resp, nil
}

func (s *attemptService) GetStudentAttempts(studentID uint) ([]dto.AttemptResponse, error) {
	attempts, err := s.attemptRepo.FindByStudent(studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts for student %d: %w", studentID, err)
	}
	var resp []dto.AttemptResponse
	copier.Copy(&resp, &attempts)
	return resp, nil
}

// ScoreSubmission builds the answer rows for a submission. Auto-part answers
// are scored by exact match against the question's correct answer; manual-part
// answers are stored ungraded (nil points) for the marking workflow. Answers
// to unknown question IDs are dropped.
func ScoreSubmission(questions map[uint]model.ExamQuestion, submitted []dto.SubmittedAnswer) ([]model.ExamAnswer, float64) {
	var answers []model.ExamAnswer
	var part1Score float64
	for _, sub := range submitted {
		question, ok := questions[sub.QuestionID]
		if !ok {
			log.Warn().Uint("questionID", sub.QuestionID).Msg("ScoreSubmission: answer for unknown question, skipping")
			continue
		}

		answer := model.ExamAnswer{
			QuestionID: question.ID,
			Answer:     sub.Answer,
			TimeSpent:  sub.TimeSpent,
		}
		if question.ExamPart == model.PartAuto {
			points := 0.0
			answer.IsCorrect = sub.Answer == question.CorrectAnswer
			if answer.IsCorrect {
				points = question.Points
			}
			answer.PointsAwarded = &points
			part1Score += points
		}
		answers = append(answers, answer)
	}
	return answers, part1Score
}

func percentageOf(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score / maxScore * 100
}
