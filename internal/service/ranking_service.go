package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/izdhan/examcenter/internal/apperr"
	"github.com/izdhan/examcenter/internal/model"
	"github.com/izdhan/examcenter/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RankingService computes island-wide and per-district ranks over an exam's
// graded attempts. Recalculation is idempotent: rows are upserted by
// (exam, student) and fully overwritten.
type RankingService interface {
	CalculateRankingsForExam(examID uint) error
	GetRankingsForExam(examID uint) ([]model.ExamRanking, error)
	GetStudentRanking(examID, studentID uint) (*model.ExamRanking, error)
}

type rankingService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	rankingRepo repository.RankingRepository

	// One in-flight recalculation per exam; concurrent recalculations would
	// upsert from different snapshots. The map holds only exams with a
	// recalculation in flight: the last holder evicts the entry.
	mu    sync.Mutex
	locks map[uint]*examLock
}

type examLock struct {
	sync.Mutex
	refs int
}

func NewRankingService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	rankingRepo repository.RankingRepository,
) RankingService {
	return &rankingService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		rankingRepo: rankingRepo,
		locks:       make(map[uint]*examLock),
	}
}

func (s *rankingService) lockExam(examID uint) *examLock {
	s.mu.Lock()
	lock, ok := s.locks[examID]
	if !ok {
		lock = &examLock{}
		s.locks[examID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.Lock()
	return lock
}

func (s *rankingService) unlockExam(examID uint, lock *examLock) {
	lock.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, examID)
	}
	s.mu.Unlock()
}

func (s *rankingService) CalculateRankingsForExam(examID uint) error {
	exam, err := s.examRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	if !exam.EnableRanking {
		return apperr.Newf(apperr.CodeRankingNotEnabled, "ranking is not enabled for exam %d", examID)
	}

	lock := s.lockExam(examID)
	defer s.unlockExam(examID, lock)

	attempts, err := s.attemptRepo.FindByExamAndStatus(examID, model.AttemptGraded)
	if err != nil {
		return fmt.Errorf("failed to load graded attempts for exam %d: %w", examID, err)
	}
	if len(attempts) == 0 {
		return nil
	}

	rankings := ComputeRankings(examID, attempts, time.Now())
	for i := range rankings {
		if err := s.rankingRepo.Upsert(&rankings[i]); err != nil {
			return fmt.Errorf("failed to upsert ranking for student %d: %w", rankings[i].StudentID, err)
		}
	}
	// Zone ranking has no data source yet; clear any stale values.
	if err := s.rankingRepo.ResetZoneRanks(examID); err != nil {
		return fmt.Errorf("failed to reset zone ranks for exam %d: %w", examID, err)
	}

	log.Info().Uint("examID", examID).Int("students", len(rankings)).Msg("Rankings recalculated")
	return nil
}

func (s *rankingService) GetRankingsForExam(examID uint) ([]model.ExamRanking, error) {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeExamNotFound, "exam %d not found", examID)
		}
		return nil, fmt.Errorf("failed to load exam %d: %w", examID, err)
	}
	return s.rankingRepo.FindByExamID(examID)
}

func (s *rankingService) GetStudentRanking(examID, studentID uint) (*model.ExamRanking, error) {
	ranking, err := s.rankingRepo.FindByExamAndStudent(examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeRankingNotFound, "no ranking for student %d on exam %d", studentID, examID)
		}
		return nil, fmt.Errorf("failed to load ranking for exam %d student %d: %w", examID, studentID, err)
	}
	return ranking, nil
}

// rankOrder is the deterministic ranking order: score descending, then
// earlier submission, then lower attempt ID. Ranks are ordinal 1..N; equal
// scores still get distinct ranks in this order.
func rankOrder(attempts []model.ExamAttempt) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := attempts[i], attempts[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		switch {
		case a.SubmittedAt == nil && b.SubmittedAt == nil:
			return a.ID < b.ID
		case a.SubmittedAt == nil:
			return false
		case b.SubmittedAt == nil:
			return true
		case !a.SubmittedAt.Equal(*b.SubmittedAt):
			return a.SubmittedAt.Before(*b.SubmittedAt)
		default:
			return a.ID < b.ID
		}
	}
}

// ComputeRankings builds one ranking row per graded attempt's student:
// island ranks over the whole field, district ranks within each non-null
// district partition. Attempts must carry their Student.
func ComputeRankings(examID uint, attempts []model.ExamAttempt, calculatedAt time.Time) []model.ExamRanking {
	ordered := make([]model.ExamAttempt, len(attempts))
	copy(ordered, attempts)
	sort.SliceStable(ordered, rankOrder(ordered))

	total := len(ordered)
	rankings := make([]model.ExamRanking, 0, total)
	rowByStudent := make(map[uint]int, total)

	for i, attempt := range ordered {
		studentType := model.StudentExternal
		if attempt.Student.Role == model.RoleStudent {
			studentType = model.StudentInternal
		}
		rankings = append(rankings, model.ExamRanking{
			ExamID:       examID,
			StudentID:    attempt.StudentID,
			Score:        attempt.TotalScore,
			Percentage:   attempt.Percentage,
			StudentType:  studentType,
			District:     attempt.Student.DistrictID,
			IslandRank:   i + 1,
			TotalIsland:  total,
			CalculatedAt: calculatedAt,
		})
		rowByStudent[attempt.StudentID] = len(rankings) - 1
	}

	// District ranks are computed independently within each partition.
	byDistrict := make(map[string][]model.ExamAttempt)
	for _, attempt := range ordered {
		if attempt.Student.DistrictID == nil {
			continue
		}
		district := *attempt.Student.DistrictID
		byDistrict[district] = append(byDistrict[district], attempt)
	}
	for _, partition := range byDistrict {
		sort.SliceStable(partition, rankOrder(partition))
		partitionTotal := len(partition)
		for i, attempt := range partition {
			row := &rankings[rowByStudent[attempt.StudentID]]
			rank := i + 1
			totalCopy := partitionTotal
			row.DistrictRank = &rank
			row.TotalDistrict = &totalCopy
		}
	}

	return rankings
}
