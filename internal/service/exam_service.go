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

// ExamService owns the exam lifecycle: creation, approval workflow,
// publishing, force-close and removal.
type ExamService interface {
	CreateExam(req dto.CreateExamRequest, creatorID uint) (*dto.ExamResponse, error)
	UpdateExam(examID uint, req dto.UpdateExamRequest, userID uint, role model.Role) (*dto.ExamResponse, error)
	GetExam(examID uint) (*dto.ExamResponse, error)
	ListByCreator(creatorID uint) ([]dto.ExamSummaryResponse, error)
	ListPublished() ([]dto.ExamSummaryResponse, error)
	ApproveExam(examID, reviewerID uint, role model.Role) (*dto.ExamResponse, error)
	RejectExam(examID uint, req dto.RejectExamRequest, reviewerID uint, role model.Role) (*dto.ExamResponse, error)
	PublishExam(examID, userID uint, role model.Role) (*dto.ExamResponse, error)
	ForceCloseExam(examID, userID uint, role model.Role) error
	DeleteExam(examID, userID uint, role model.Role) error
}

type examService struct {
	examRepo     repository.ExamRepository
	attemptRepo  repository.AttemptRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	rankingQueue *RankingQueue
}

func NewExamService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	rankingQueue *RankingQueue,
) ExamService {
	return &examService{
		examRepo:     examRepo,
		attemptRepo:  attemptRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		rankingQueue: rankingQueue,
	}
}

func (s *examService) CreateExam(req dto.CreateExamRequest, creatorID uint) (*dto.ExamResponse, error) {
	creator, err := s.userRepo.FindByID(creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeTeacherNotFound, "user %d not found", creatorID)
		}
		return nil, fmt.Errorf("failed to load exam creator: %w", err)
	}
	if !creator.Role.IsTeacher() && !creator.Role.IsAdmin() {
		return nil, apperr.New(apperr.CodeForbidden, "only teachers and admins may create exams")
	}

	// Subject/grade/medium come from the class when one is given; explicit
	// DTO fields apply otherwise.
	var subjectID, gradeID, mediumID uint
	if req.ClassID != nil {
		class, err := s.userRepo.FindClassByID(*req.ClassID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Newf(apperr.CodeClassNotFound, "class %d not found", *req.ClassID)
			}
			return nil, fmt.Errorf("failed to load class: %w", err)
		}
		if class.TeacherID != creatorID && !creator.Role.IsAdmin() {
			return nil, apperr.New(apperr.CodeForbidden, "exam class must be owned by the creating teacher")
		}
		subjectID, gradeID, mediumID = class.SubjectID, class.GradeID, class.MediumID
	} else {
		if req.SubjectID == nil || req.GradeID == nil || req.MediumID == nil {
			return nil, apperr.New(apperr.CodeMissingField, "subject, grade and medium are required when no class is given")
		}
		subjectID, gradeID, mediumID = *req.SubjectID, *req.GradeID, *req.MediumID
	}

	if !creator.Role.IsAdmin() {
		if creator.IsExternalTransferOnly {
			return nil, apperr.New(apperr.CodeForbidden, "external-transfer-only teachers may not create exams")
		}
		year := model.AcademicYear(time.Now())
		assignment, err := s.userRepo.FindActiveAssignment(creatorID, subjectID, gradeID, mediumID, year)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.New(apperr.CodeNoActiveAssignment, "no active subject assignment for this subject, grade and medium")
			}
			return nil, fmt.Errorf("failed to load teacher assignment: %w", err)
		}
		if !assignment.CanCreateExams {
			return nil, apperr.New(apperr.CodeNoActiveAssignment, "subject assignment does not permit exam creation")
		}
	}

	if err := ValidateTiming(TimingInput{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Duration:    req.Duration,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
	}); err != nil {
		return nil, err
	}

	approval := model.ApprovalPending
	if creator.Role.IsAdmin() {
		approval = model.ApprovalApproved
	}

	exam := model.Exam{
		Title:                    req.Title,
		Description:              req.Description,
		Type:                     req.Type,
		Status:                   model.ExamDraft,
		ApprovalStatus:           approval,
		StartTime:                req.StartTime,
		EndTime:                  req.EndTime,
		WindowStart:              req.WindowStart,
		WindowEnd:                req.WindowEnd,
		Duration:                 req.Duration,
		PassingMarks:             req.PassingMarks,
		AttemptsAllowed:          req.AttemptsAllowed,
		EnableRanking:            req.EnableRanking,
		UseHierarchicalStructure: req.UseHierarchicalStructure,
		ClassID:                  req.ClassID,
		SubjectID:                subjectID,
		GradeID:                  gradeID,
		MediumID:                 mediumID,
		CreatedByID:              creatorID,
	}
	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Msg("CreateExam: failed to persist exam")
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	return s.toResponse(&exam), nil
}

func (s *examService) UpdateExam(examID uint, req dto.UpdateExamRequest, userID uint, role model.Role) (*dto.ExamResponse, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if !CanManageExam(exam, userID, role) {
		return nil, apperr.New(apperr.CodeForbidden, "only the exam creator or an admin may update it")
	}
	if exam.Status == model.ExamPublished || exam.Status == model.ExamCancelled {
		return nil, apperr.Newf(apperr.CodeInvalidExamState, "exam in status %s cannot be updated", exam.Status)
	}

	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.StartTime != nil {
		exam.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		exam.EndTime = *req.EndTime
	}
	if req.WindowStart != nil {
		exam.WindowStart = req.WindowStart
	}
	if req.WindowEnd != nil {
		exam.WindowEnd = req.WindowEnd
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.AttemptsAllowed != nil {
		exam.AttemptsAllowed = *req.AttemptsAllowed
	}
	if req.EnableRanking != nil {
		exam.EnableRanking = *req.EnableRanking
	}
	if req.PassingMarks != nil {
		if exam.TotalMarks > 0 && *req.PassingMarks > exam.TotalMarks {
			return nil, apperr.New(apperr.CodeValidationError, "passing marks must not exceed total marks")
		}
		exam.PassingMarks = *req.PassingMarks
	}

	if err := ValidateTiming(TimingInput{
		StartTime:   exam.StartTime,
		EndTime:     exam.EndTime,
		Duration:    exam.Duration,
		WindowStart: exam.WindowStart,
		WindowEnd:   exam.WindowEnd,
	}); err != nil {
		return nil, err
	}

	if err := s.examRepo.Update(exam); err != nil {
		return nil, fmt.Errorf("failed to update exam %d: %w", examID, err)
	}
	return s.toResponse(exam), nil
}

func (s *examService) GetExam(examID uint) (*dto.ExamResponse, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	return s.toResponse(exam), nil
}

func (s *examService) ListByCreator(creatorID uint) ([]dto.ExamSummaryResponse, error) {
	exams, err := s.examRepo.FindByCreator(creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams for creator %d: %w", creatorID, err)
	}
	var resp []dto.ExamSummaryResponse
	copier.Copy(&resp, &exams)
	return resp, nil
}

func (s *examService) ListPublished() ([]dto.ExamSummaryResponse, error) {
	exams, err := s.examRepo.FindByStatus(model.ExamPublished)
	if err != nil {
		return nil, fmt.Errorf("failed to list published exams: %w", err)
	}
	var resp []dto.ExamSummaryResponse
	copier.Copy(&resp, &exams)
	return resp, nil
}

func (s *examService) ApproveExam(examID, reviewerID uint, role model.Role) (*dto.ExamResponse, error) {
	if !role.IsAdmin() {
		return nil, apperr.New(apperr.CodeForbidden, "only admins may approve exams")
	}
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if exam.ApprovalStatus != model.ApprovalPending {
		return nil, apperr.Newf(apperr.CodeExamPendingApproval, "exam %d is not pending approval", examID)
	}

	exam.ApprovalStatus = model.ApprovalApproved
	exam.Status = model.ExamApproved
	if err := s.examRepo.Update(exam); err != nil {
		return nil, fmt.Errorf("failed to approve exam %d: %w", examID, err)
	}

	if err := s.notifier.NotifyAboutExam(exam.CreatedByID, "APPROVED", exam.Title, "Your exam has been approved."); err != nil {
		log.Warn().Err(err).Uint("examID", examID).Msg("ApproveExam: failed to notify creator")
	}
	log.Info().Uint("examID", examID).Uint("reviewerID", reviewerID).Msg("Exam approved")
	return s.toResponse(exam), nil
}

func (s *examService) RejectExam(examID uint, req dto.RejectExamRequest, reviewerID uint, role model.Role) (*dto.ExamResponse, error) {
	if !role.IsAdmin() {
		return nil, apperr.New(apperr.CodeForbidden, "only admins may reject exams")
	}
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if exam.ApprovalStatus != model.ApprovalPending {
		return nil, apperr.Newf(apperr.CodeExamPendingApproval, "exam %d is not pending approval", examID)
	}

	exam.ApprovalStatus = model.ApprovalRejected
	exam.Status = model.ExamCancelled
	exam.RejectionReason = req.Reason
	if req.Feedback != "" {
		exam.RejectionReason = fmt.Sprintf("%s (%s)", req.Reason, req.Feedback)
	}
	if err := s.examRepo.Update(exam); err != nil {
		return nil, fmt.Errorf("failed to reject exam %d: %w", examID, err)
	}

	if err := s.notifier.NotifyAboutExam(exam.CreatedByID, "REJECTED", exam.Title, "Reason: "+req.Reason); err != nil {
		log.Warn().Err(err).Uint("examID", examID).Msg("RejectExam: failed to notify creator")
	}
	log.Info().Uint("examID", examID).Uint("reviewerID", reviewerID).Str("reason", req.Reason).Msg("Exam rejected")
	return s.toResponse(exam), nil
}

// PublishExam makes an exam available to students. Approval status is not
// consulted here; only the approve/reject flow reads it.
func (s *examService) PublishExam(examID, userID uint, role model.Role) (*dto.ExamResponse, error) {
	exam, err := s.findExam(examID)
	if err != nil {
		return nil, err
	}
	if !CanManageExam(exam, userID, role) {
		return nil, apperr.New(apperr.CodeForbidden, "only the exam creator or an admin may publish it")
	}
	if exam.Status == model.ExamPublished {
		return nil, apperr.Newf(apperr.CodeInvalidExamState, "exam %d is already published", examID)
	}
	if exam.Status == model.ExamCancelled {
		return nil, apperr.Newf(apperr.CodeInvalidExamState, "exam %d has been cancelled", examID)
	}
	questionCount, err := s.examRepo.CountQuestions(examID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions for exam %d: %w", examID, err)
	}
	if questionCount == 0 {
		return nil, apperr.New(apperr.CodeValidationError, "an exam without questions cannot be published")
	}
	if exam.PassingMarks > exam.TotalMarks {
		return nil, apperr.New(apperr.CodeValidationError, "passing marks must not exceed total marks")
	}

	exam.Status = model.ExamPublished
	if err := s.examRepo.Update(exam); err != nil {
		return nil, fmt.Errorf("failed to publish exam %d: %w", examID, err)
	}

	// Reminder notifications are best-effort: a failure never rolls back the
	// publish.
	s.scheduleReminders(exam)

	log.Info().Uint("examID", examID).Uint("userID", userID).Msg("Exam published")
	return s.toResponse(exam), nil
}

func (s *examService) scheduleReminders(exam *model.Exam) {
	if exam.ClassID == nil {
		return
	}
	studentIDs, err := s.userRepo.FindActiveStudentIDs(*exam.ClassID)
	if err != nil {
		log.Warn().Err(err).Uint("examID", exam.ID).Msg("PublishExam: failed to load enrolled students for reminders")
		return
	}
	for _, studentID := range studentIDs {
		if err := s.notifier.CreateNotification(studentID, exam.Title,
			fmt.Sprintf("Exam %q opens at %s.", exam.Title, exam.StartTime.Format(time.RFC1123)),
			"EXAM_REMINDER",
			map[string]any{"exam_id": exam.ID, "start_time": exam.StartTime},
		); err != nil {
			log.Warn().Err(err).Uint("examID", exam.ID).Uint("studentID", studentID).Msg("PublishExam: reminder notification failed")
		}
	}
}

// ForceCloseExam ends a running exam immediately: every in-progress attempt is
// stamped submitted, the exam is completed, and rankings are recalculated.
func (s *examService) ForceCloseExam(examID, userID uint, role model.Role) error {
	if !role.IsAdmin() {
		return apperr.New(apperr.CodeForbidden, "only admins may force-close exams")
	}
	exam, err := s.findExam(examID)
	if err != nil {
		return err
	}
	now := time.Now()
	if exam.EffectiveStatus(now) != model.ExamActive {
		return apperr.Newf(apperr.CodeInvalidExamState, "exam %d is not active", examID)
	}

	if err := s.examRepo.ForceClose(examID, now); err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("ForceCloseExam: close failed")
		return err
	}

	if exam.EnableRanking {
		s.rankingQueue.Enqueue(examID)
	}
	log.Info().Uint("examID", examID).Uint("userID", userID).Msg("Exam force-closed")
	return nil
}

// DeleteExam soft-deletes when attempts exist so history survives, and
// hard-deletes (with questions) otherwise.
func (s *examService) DeleteExam(examID, userID uint, role model.Role) error {
	exam, err := s.findExam(examID)
	if err != nil {
		return err
	}
	if !CanManageExam(exam, userID, role) {
		return apperr.New(apperr.CodeForbidden, "only the exam creator or an admin may delete it")
	}

	attemptCount, err := s.attemptRepo.CountByExam(examID)
	if err != nil {
		return fmt.Errorf("failed to count attempts for exam %d: %w", examID, err)
	}
	if attemptCount > 0 {
		return s.examRepo.SoftDelete(examID)
	}
	return s.examRepo.HardDelete(examID)
}

func (s *examService) findExam(examID uint) (*model.Exam, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	return exam, nil
}

func (s *examService) toResponse(exam *model.Exam) *dto.ExamResponse {
	var resp dto.ExamResponse
	copier.Copy(&resp, exam)
	return &resp
}
