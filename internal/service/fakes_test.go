package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/izdhan/examcenter/internal/model"
	"github.com/izdhan/examcenter/internal/repository"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests. They implement just
// enough of the repository contracts to drive the business logic; anything not
// seeded behaves like an empty table.

type fakeExamRepo struct {
	exams         map[uint]*model.Exam
	questionCount map[uint]int64
	softDeleted   []uint
	hardDeleted   []uint

	// Set when a test exercises ForceClose, which spans both tables.
	attempts *fakeAttemptRepo
}

func newFakeExamRepo(exams ...*model.Exam) *fakeExamRepo {
	repo := &fakeExamRepo{
		exams:         make(map[uint]*model.Exam),
		questionCount: make(map[uint]int64),
	}
	for _, exam := range exams {
		repo.exams[exam.ID] = exam
	}
	return repo
}

func (r *fakeExamRepo) Create(exam *model.Exam) error {
	if exam.ID == 0 {
		exam.ID = uint(len(r.exams) + 1)
	}
	r.exams[exam.ID] = exam
	return nil
}

func (r *fakeExamRepo) FindByID(id uint) (*model.Exam, error) {
	exam, ok := r.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *exam
	return &clone, nil
}

func (r *fakeExamRepo) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	return r.FindByID(id)
}

func (r *fakeExamRepo) FindByStatus(status model.ExamStatus) ([]model.Exam, error) {
	var out []model.Exam
	for _, exam := range r.exams {
		if exam.Status == status {
			out = append(out, *exam)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExamRepo) FindByCreator(creatorID uint) ([]model.Exam, error) {
	var out []model.Exam
	for _, exam := range r.exams {
		if exam.CreatedByID == creatorID {
			out = append(out, *exam)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExamRepo) Update(exam *model.Exam) error {
	clone := *exam
	r.exams[exam.ID] = &clone
	return nil
}

func (r *fakeExamRepo) CountQuestions(examID uint) (int64, error) {
	return r.questionCount[examID], nil
}

func (r *fakeExamRepo) ForceClose(examID uint, closedAt time.Time) error {
	if r.attempts != nil {
		for _, a := range r.attempts.attempts {
			if a.ExamID == examID && a.Status == model.AttemptInProgress {
				a.Status = model.AttemptSubmitted
				at := closedAt
				a.SubmittedAt = &at
			}
		}
	}
	if exam, ok := r.exams[examID]; ok {
		exam.Status = model.ExamCompleted
	}
	return nil
}

func (r *fakeExamRepo) SoftDelete(id uint) error {
	r.softDeleted = append(r.softDeleted, id)
	delete(r.exams, id)
	return nil
}

func (r *fakeExamRepo) HardDelete(id uint) error {
	r.hardDeleted = append(r.hardDeleted, id)
	delete(r.exams, id)
	return nil
}

type fakeQuestionRepo struct {
	questions map[uint]*model.ExamQuestion
	sections  []model.ExamSection
	groups    []model.QuestionGroup
	nextID    uint

	// Set when a test asserts the TotalMarks bookkeeping of the *WithMarks
	// mutations.
	exams *fakeExamRepo
}

func newFakeQuestionRepo(questions ...*model.ExamQuestion) *fakeQuestionRepo {
	repo := &fakeQuestionRepo{questions: make(map[uint]*model.ExamQuestion), nextID: 1}
	for _, q := range questions {
		repo.questions[q.ID] = q
		if q.ID >= repo.nextID {
			repo.nextID = q.ID + 1
		}
	}
	return repo
}

func (r *fakeQuestionRepo) addMarks(examID uint, delta float64) {
	if r.exams == nil {
		return
	}
	if exam, ok := r.exams.exams[examID]; ok {
		exam.TotalMarks += delta
	}
}

func (r *fakeQuestionRepo) CreateWithMarks(question *model.ExamQuestion) error {
	if question.ID == 0 {
		question.ID = r.nextID
		r.nextID++
	}
	clone := *question
	r.questions[question.ID] = &clone
	r.addMarks(question.ExamID, question.Points)
	return nil
}

func (r *fakeQuestionRepo) CreateBatchWithMarks(questions []model.ExamQuestion, totalPoints float64) error {
	if len(questions) == 0 {
		return nil
	}
	for i := range questions {
		if questions[i].ID == 0 {
			questions[i].ID = r.nextID
			r.nextID++
		}
		clone := questions[i]
		r.questions[clone.ID] = &clone
	}
	r.addMarks(questions[0].ExamID, totalPoints)
	return nil
}

func (r *fakeQuestionRepo) SaveWithMarks(question *model.ExamQuestion, marksDelta float64) error {
	clone := *question
	r.questions[question.ID] = &clone
	r.addMarks(question.ExamID, marksDelta)
	return nil
}

func (r *fakeQuestionRepo) DeleteWithMarks(question *model.ExamQuestion) error {
	delete(r.questions, question.ID)
	r.addMarks(question.ExamID, -question.Points)
	return nil
}

func (r *fakeQuestionRepo) Reorder(examID uint, placements []repository.QuestionPlacement) error {
	for _, p := range placements {
		q, ok := r.questions[p.QuestionID]
		if !ok || q.ExamID != examID {
			return fmt.Errorf("question %d does not belong to exam %d: %w", p.QuestionID, examID, gorm.ErrRecordNotFound)
		}
		q.Order = p.Order
		if p.SectionID != nil {
			q.SectionID = p.SectionID
		}
		if p.GroupID != nil {
			q.GroupID = p.GroupID
		}
	}
	return nil
}

func (r *fakeQuestionRepo) FindByID(id uint) (*model.ExamQuestion, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *q
	return &clone, nil
}

func (r *fakeQuestionRepo) FindByExamID(examID uint) ([]model.ExamQuestion, error) {
	var out []model.ExamQuestion
	for _, q := range r.questions {
		if q.ExamID == examID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExamPart != out[j].ExamPart {
			return out[i].ExamPart < out[j].ExamPart
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (r *fakeQuestionRepo) FindByExamAndPart(examID uint, part int) ([]model.ExamQuestion, error) {
	all, _ := r.FindByExamID(examID)
	var out []model.ExamQuestion
	for _, q := range all {
		if q.ExamPart == part {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) FindSectionsByExamID(examID uint) ([]model.ExamSection, error) {
	var out []model.ExamSection
	for _, s := range r.sections {
		if s.ExamID == examID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) CreateSection(section *model.ExamSection) error {
	if section.ID == 0 {
		section.ID = uint(len(r.sections) + 1)
	}
	r.sections = append(r.sections, *section)
	return nil
}

func (r *fakeQuestionRepo) CreateGroup(group *model.QuestionGroup) error {
	if group.ID == 0 {
		group.ID = uint(len(r.groups) + 1)
	}
	r.groups = append(r.groups, *group)
	return nil
}

type fakeAttemptRepo struct {
	attempts map[uint]*model.ExamAttempt
	nextID   uint
}

func newFakeAttemptRepo(attempts ...*model.ExamAttempt) *fakeAttemptRepo {
	repo := &fakeAttemptRepo{attempts: make(map[uint]*model.ExamAttempt), nextID: 1}
	for _, a := range attempts {
		repo.attempts[a.ID] = a
		if a.ID >= repo.nextID {
			repo.nextID = a.ID + 1
		}
	}
	return repo
}

func (r *fakeAttemptRepo) Create(attempt *model.ExamAttempt) error {
	if attempt.ID == 0 {
		attempt.ID = r.nextID
		r.nextID++
	}
	clone := *attempt
	r.attempts[attempt.ID] = &clone
	return nil
}

func (r *fakeAttemptRepo) FindByID(id uint) (*model.ExamAttempt, error) {
	a, ok := r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAttemptRepo) FindByIDWithAnswers(id uint) (*model.ExamAttempt, error) {
	return r.FindByID(id)
}

func (r *fakeAttemptRepo) FindByExamID(examID uint) ([]model.ExamAttempt, error) {
	var out []model.ExamAttempt
	for _, a := range r.attempts {
		if a.ExamID == examID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttemptRepo) FindByExamAndStatus(examID uint, status model.AttemptStatus) ([]model.ExamAttempt, error) {
	var out []model.ExamAttempt
	for _, a := range r.attempts {
		if a.ExamID == examID && a.Status == status {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttemptRepo) FindByStudent(studentID uint) ([]model.ExamAttempt, error) {
	var out []model.ExamAttempt
	for _, a := range r.attempts {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttemptRepo) CountByExam(examID uint) (int64, error) {
	var count int64
	for _, a := range r.attempts {
		if a.ExamID == examID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) CountByExamAndStudent(examID, studentID uint) (int64, error) {
	var count int64
	for _, a := range r.attempts {
		if a.ExamID == examID && a.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) Update(attempt *model.ExamAttempt) error {
	clone := *attempt
	r.attempts[attempt.ID] = &clone
	return nil
}

type fakeAnswerRepo struct {
	answers map[uint]*model.ExamAnswer
}

func newFakeAnswerRepo(answers ...*model.ExamAnswer) *fakeAnswerRepo {
	repo := &fakeAnswerRepo{answers: make(map[uint]*model.ExamAnswer)}
	for _, a := range answers {
		repo.answers[a.ID] = a
	}
	return repo
}

func (r *fakeAnswerRepo) FindByID(id uint) (*model.ExamAnswer, error) {
	a, ok := r.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAnswerRepo) FindByAttemptID(attemptID uint) ([]model.ExamAnswer, error) {
	var out []model.ExamAnswer
	for _, a := range r.answers {
		if a.AttemptID == attemptID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAnswerRepo) FindByQuestionID(questionID uint) ([]model.ExamAnswer, error) {
	var out []model.ExamAnswer
	for _, a := range r.answers {
		if a.QuestionID == questionID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAnswerRepo) Update(answer *model.ExamAnswer) error {
	clone := *answer
	r.answers[answer.ID] = &clone
	return nil
}

func (r *fakeAnswerRepo) UpdateBatch(answers []model.ExamAnswer) error {
	for _, answer := range answers {
		clone := answer
		r.answers[answer.ID] = &clone
	}
	return nil
}

type fakeRankingRepo struct {
	rankings   map[uint]map[uint]*model.ExamRanking // examID -> studentID -> row
	upserts    int
	zoneResets int
}

func newFakeRankingRepo() *fakeRankingRepo {
	return &fakeRankingRepo{rankings: make(map[uint]map[uint]*model.ExamRanking)}
}

func (r *fakeRankingRepo) Upsert(ranking *model.ExamRanking) error {
	r.upserts++
	byStudent, ok := r.rankings[ranking.ExamID]
	if !ok {
		byStudent = make(map[uint]*model.ExamRanking)
		r.rankings[ranking.ExamID] = byStudent
	}
	clone := *ranking
	byStudent[ranking.StudentID] = &clone
	return nil
}

func (r *fakeRankingRepo) FindByExamID(examID uint) ([]model.ExamRanking, error) {
	var out []model.ExamRanking
	for _, row := range r.rankings[examID] {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IslandRank < out[j].IslandRank })
	return out, nil
}

func (r *fakeRankingRepo) FindByExamAndStudent(examID, studentID uint) (*model.ExamRanking, error) {
	row, ok := r.rankings[examID][studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeRankingRepo) ResetZoneRanks(examID uint) error {
	r.zoneResets++
	for _, row := range r.rankings[examID] {
		row.ZoneRank = nil
		row.TotalZone = nil
	}
	return nil
}

type fakeUserRepo struct {
	users       map[uint]*model.User
	classes     map[uint]*model.Class
	enrolled    map[uint][]uint // classID -> active student IDs
	assignments []model.TeacherSubjectAssignment
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uint]*model.User),
		classes:  make(map[uint]*model.Class),
		enrolled: make(map[uint][]uint),
	}
}

func (r *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) FindClassByID(id uint) (*model.Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *fakeUserRepo) HasActiveEnrollment(classID, studentID uint) (bool, error) {
	for _, id := range r.enrolled[classID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) FindActiveStudentIDs(classID uint) ([]uint, error) {
	return r.enrolled[classID], nil
}

func (r *fakeUserRepo) FindActiveAssignment(teacherID, subjectID, gradeID, mediumID uint, academicYear string) (*model.TeacherSubjectAssignment, error) {
	for _, a := range r.assignments {
		if a.TeacherID == teacherID && a.SubjectID == subjectID && a.GradeID == gradeID &&
			a.MediumID == mediumID && a.AcademicYear == academicYear && a.Active {
			clone := a
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type sentNotification struct {
	userID  uint
	event   string
	title   string
	message string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (n *fakeNotifier) NotifyAboutExam(userID uint, event, examTitle, message string) error {
	n.sent = append(n.sent, sentNotification{userID: userID, event: event, title: examTitle, message: message})
	return nil
}

func (n *fakeNotifier) CreateNotification(userID uint, title, message, notificationType string, metadata map[string]any) error {
	n.sent = append(n.sent, sentNotification{userID: userID, event: notificationType, title: title, message: message})
	return nil
}
