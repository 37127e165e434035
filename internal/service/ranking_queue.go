package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// RankingQueue decouples ranking recalculation from the request that triggers
// it: submits and force-closes enqueue the exam ID and return immediately,
// and a single worker drains the queue. Failures are logged, never propagated.
type RankingQueue struct {
	jobs chan uint
	done chan struct{}
	svc  RankingService
}

func NewRankingQueue(svc RankingService) *RankingQueue {
	return &RankingQueue{
		jobs: make(chan uint, 64),
		done: make(chan struct{}),
		svc:  svc,
	}
}

// Enqueue submits a recalculation without blocking; when the queue is full
// the job is dropped and logged, since a later grading action will enqueue
// again.
func (q *RankingQueue) Enqueue(examID uint) {
	select {
	case q.jobs <- examID:
	default:
		log.Warn().Uint("examID", examID).Msg("Ranking queue full, dropping recalculation request")
	}
}

func (q *RankingQueue) Start(ctx context.Context) error {
	go q.run()
	return nil
}

func (q *RankingQueue) Stop(ctx context.Context) error {
	close(q.jobs)
	select {
	case <-q.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (q *RankingQueue) run() {
	defer close(q.done)
	for examID := range q.jobs {
		if err := q.svc.CalculateRankingsForExam(examID); err != nil {
			log.Error().Err(err).Uint("examID", examID).Msg("Background ranking recalculation failed")
		}
	}
}
