package service

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/izdhan/examcenter/internal/apperr"
	"github.com/izdhan/examcenter/internal/dto"
	"github.com/izdhan/examcenter/internal/model"
	"github.com/izdhan/examcenter/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Bucket keys for questions outside the hierarchical structure.
const (
	noSectionBucket = "no-section"
	noGroupBucket   = "no-group"
)

// QuestionService manages exam questions and their hierarchical containers,
// keeping Exam.TotalMarks consistent with the sum of question points on every
// mutation.
type QuestionService interface {
	AddQuestion(examID uint, req dto.CreateQuestionRequest, userID uint, role model.Role) (*dto.QuestionResponse, error)
	BulkAddQuestions(examID uint, req dto.BulkAddQuestionsRequest, userID uint, role model.Role) ([]dto.QuestionResponse, error)
	UpdateQuestion(questionID uint, req dto.UpdateQuestionRequest, userID uint, role model.Role) (*dto.QuestionResponse, error)
	RemoveQuestion(questionID, userID uint, role model.Role) error
	ReorderQuestions(examID uint, req dto.ReorderQuestionsRequest, userID uint, role model.Role) error
	AddSection(examID uint, req dto.CreateSectionRequest, userID uint, role model.Role) (*model.ExamSection, error)
	AddGroup(examID uint, req dto.CreateGroupRequest, userID uint, role model.Role) (*model.QuestionGroup, error)
	GetQuestions(examID uint) (*dto.QuestionHierarchyResponse, error)
	GetQuestionsByPart(examID uint, part int) (*dto.QuestionHierarchyResponse, error)
}

type questionService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
}

func NewQuestionService(examRepo repository.ExamRepository, questionRepo repository.QuestionRepository) QuestionService {
	return &questionService{examRepo: examRepo, questionRepo: questionRepo}
}

// mutableExam loads the exam and runs the shared guards for question
// mutations: creator-or-admin, and not published or cancelled.
func (s *questionService) mutableExam(examID, userID uint, role model.Role) (*model.Exam, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	if !CanManageExam(exam, userID, role) {
		return nil, apperr.New(apperr.CodeForbidden, "only the exam creator or an admin may modify questions")
	}
	if exam.Status == model.ExamPublished || exam.Status == model.ExamCancelled {
		return nil, apperr.Newf(apperr.CodeInvalidExamState, "questions cannot be modified while the exam is %s", exam.Status)
	}
	return exam, nil
}

func buildQuestion(examID uint, req dto.CreateQuestionRequest) (model.ExamQuestion, error) {
	options, err := model.NormalizeOptions(req.Type, req.Options)
	if err != nil {
		return model.ExamQuestion{}, apperr.Newf(apperr.CodeInvalidInput, "invalid %s options: %v", req.Type, err)
	}
	part := req.ExamPart
	if part == 0 {
		part = model.PartAuto
	}
	return model.ExamQuestion{
		ExamID:        examID,
		SectionID:     req.SectionID,
		GroupID:       req.GroupID,
		Type:          req.Type,
		Question:      req.Question,
		Options:       options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Order:         req.Order,
		ExamPart:      part,
	}, nil
}

func (s *questionService) AddQuestion(examID uint, req dto.CreateQuestionRequest, userID uint, role model.Role) (*dto.QuestionResponse, error) {
	if _, err := s.mutableExam(examID, userID, role); err != nil {
		return nil, err
	}

	question, err := buildQuestion(examID, req)
	if err != nil {
		return nil, err
	}
	if err := s.questionRepo.CreateWithMarks(&question); err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("AddQuestion: create failed")
		return nil, err
	}

	var resp dto.QuestionResponse
	copier.Copy(&resp, &question)
	return &resp, nil
}

func (s *questionService) BulkAddQuestions(examID uint, req dto.BulkAddQuestionsRequest, userID uint, role model.Role) ([]dto.QuestionResponse, error) {
	if _, err := s.mutableExam(examID, userID, role); err != nil {
		return nil, err
	}

	questions := make([]model.ExamQuestion, 0, len(req.Questions))
	var totalPoints float64
	for _, qReq := range req.Questions {
		question, err := buildQuestion(examID, qReq)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
		totalPoints += qReq.Points
	}

	if err := s.questionRepo.CreateBatchWithMarks(questions, totalPoints); err != nil {
		log.Error().Err(err).Uint("examID", examID).Int("count", len(questions)).Msg("BulkAddQuestions: create failed")
		return nil, err
	}

	var resp []dto.QuestionResponse
	copier.Copy(&resp, &questions)
	return resp, nil
}

func (s *questionService) UpdateQuestion(questionID uint, req dto.UpdateQuestionRequest, userID uint, role model.Role) (*dto.QuestionResponse, error) {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeQuestionNotFound, "question %d not found", questionID)
		}
		return nil, fmt.Errorf("failed to load question %d: %w", questionID, err)
	}
	if _, err := s.mutableExam(question.ExamID, userID, role); err != nil {
		return nil, err
	}

	pointsDelta := 0.0
	if req.Question != nil {
		question.Question = *req.Question
	}
	if req.Options != nil {
		options, err := model.NormalizeOptions(question.Type, *req.Options)
		if err != nil {
			return nil, apperr.Newf(apperr.CodeInvalidInput, "invalid %s options: %v", question.Type, err)
		}
		question.Options = options
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Order != nil {
		question.Order = *req.Order
	}
	if req.SectionID != nil {
		question.SectionID = req.SectionID
	}
	if req.GroupID != nil {
		question.GroupID = req.GroupID
	}
	if req.Points != nil {
		if *req.Points <= 0 {
			return nil, apperr.New(apperr.CodeInvalidInput, "question points must be positive")
		}
		pointsDelta = *req.Points - question.Points
		question.Points = *req.Points
	}

	if err := s.questionRepo.SaveWithMarks(question, pointsDelta); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("UpdateQuestion: save failed")
		return nil, err
	}

	var resp dto.QuestionResponse
	copier.Copy(&resp, question)
	return &resp, nil
}

func (s *questionService) RemoveQuestion(questionID, userID uint, role model.Role) error {
	question, err := s.questionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.CodeQuestionNotFound, "question %d not found", questionID)
		}
		return fmt.Errorf("failed to load question %d: %w", questionID, err)
	}
	if _, err := s.mutableExam(question.ExamID, userID, role); err != nil {
		return err
	}

	if err := s.questionRepo.DeleteWithMarks(question); err != nil {
		log.Error().Err(err).Uint("questionID", questionID).Msg("RemoveQuestion: delete failed")
		return err
	}
	return nil
}

// ReorderQuestions updates order (and optionally section/group placement) for
// a batch of questions. No mark side-effects.
func (s *questionService) ReorderQuestions(examID uint, req dto.ReorderQuestionsRequest, userID uint, role model.Role) error {
	if _, err := s.mutableExam(examID, userID, role); err != nil {
		return err
	}

	placements := make([]repository.QuestionPlacement, 0, len(req.Items))
	for _, item := range req.Items {
		placements = append(placements, repository.QuestionPlacement{
			QuestionID: item.QuestionID,
			Order:      item.Order,
			SectionID:  item.SectionID,
			GroupID:    item.GroupID,
		})
	}
	if err := s.questionRepo.Reorder(examID, placements); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.CodeQuestionNotFound, "a question in the reorder request does not belong to exam %d", examID)
		}
		return err
	}
	return nil
}

func (s *questionService) AddSection(examID uint, req dto.CreateSectionRequest, userID uint, role model.Role) (*model.ExamSection, error) {
	exam, err := s.mutableExam(examID, userID, role)
	if err != nil {
		return nil, err
	}
	if !exam.UseHierarchicalStructure {
		return nil, apperr.New(apperr.CodeValidationError, "exam does not use a hierarchical structure")
	}
	part := req.ExamPart
	if part == 0 {
		part = model.PartAuto
	}
	section := model.ExamSection{ExamID: examID, Title: req.Title, Order: req.Order, ExamPart: part}
	if err := s.questionRepo.CreateSection(&section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return &section, nil
}

func (s *questionService) AddGroup(examID uint, req dto.CreateGroupRequest, userID uint, role model.Role) (*model.QuestionGroup, error) {
	exam, err := s.mutableExam(examID, userID, role)
	if err != nil {
		return nil, err
	}
	if !exam.UseHierarchicalStructure {
		return nil, apperr.New(apperr.CodeValidationError, "exam does not use a hierarchical structure")
	}
	part := req.ExamPart
	if part == 0 {
		part = model.PartAuto
	}
	group := model.QuestionGroup{SectionID: req.SectionID, Title: req.Title, Order: req.Order, ExamPart: part}
	if err := s.questionRepo.CreateGroup(&group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &group, nil
}

func (s *questionService) GetQuestions(examID uint) (*dto.QuestionHierarchyResponse, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	questions, err := s.questionRepo.FindByExamID(examID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for exam %d: %w", examID, err)
	}
	return &dto.QuestionHierarchyResponse{
		ExamID: examID,
		Parts:  GroupQuestions(questions, exam.UseHierarchicalStructure),
	}, nil
}

func (s *questionService) GetQuestionsByPart(examID uint, part int) (*dto.QuestionHierarchyResponse, error) {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	questions, err := s.questionRepo.FindByExamAndPart(examID, part)
	if err != nil {
		return nil, fmt.Errorf("failed to load part %d questions for exam %d: %w", part, examID, err)
	}
	return &dto.QuestionHierarchyResponse{
		ExamID: examID,
		Parts:  GroupQuestions(questions, exam.UseHierarchicalStructure),
	}, nil
}

// GroupQuestions arranges questions into part -> section -> group buckets,
// preserving the incoming (order-sorted) sequence within each bucket. With
// hierarchy disabled everything lands in one flat bucket per part.
func GroupQuestions(questions []model.ExamQuestion, hierarchical bool) []dto.PartBucket {
	var parts []dto.PartBucket
	partIdx := make(map[int]int)
	sectionIdx := make(map[int]map[string]int)
	groupIdx := make(map[int]map[string]map[string]int)

	sectionKey := func(q model.ExamQuestion) string {
		if !hierarchical || q.SectionID == nil {
			return noSectionBucket
		}
		return fmt.Sprintf("%d", *q.SectionID)
	}
	groupKey := func(q model.ExamQuestion) string {
		if !hierarchical || q.GroupID == nil {
			return noGroupBucket
		}
		return fmt.Sprintf("%d", *q.GroupID)
	}

	for _, q := range questions {
		pi, ok := partIdx[q.ExamPart]
		if !ok {
			pi = len(parts)
			partIdx[q.ExamPart] = pi
			parts = append(parts, dto.PartBucket{Part: q.ExamPart})
			sectionIdx[q.ExamPart] = make(map[string]int)
			groupIdx[q.ExamPart] = make(map[string]map[string]int)
		}

		sKey := sectionKey(q)
		si, ok := sectionIdx[q.ExamPart][sKey]
		if !ok {
			si = len(parts[pi].Sections)
			sectionIdx[q.ExamPart][sKey] = si
			parts[pi].Sections = append(parts[pi].Sections, dto.SectionBucket{SectionID: sKey})
			groupIdx[q.ExamPart][sKey] = make(map[string]int)
		}

		gKey := groupKey(q)
		gi, ok := groupIdx[q.ExamPart][sKey][gKey]
		if !ok {
			gi = len(parts[pi].Sections[si].Groups)
			groupIdx[q.ExamPart][sKey][gKey] = gi
			parts[pi].Sections[si].Groups = append(parts[pi].Sections[si].Groups, dto.GroupBucket{GroupID: gKey})
		}

		var qResp dto.QuestionResponse
		copier.Copy(&qResp, &q)
		parts[pi].Sections[si].Groups[gi].Questions = append(parts[pi].Sections[si].Groups[gi].Questions, qResp)
	}
	return parts
}
