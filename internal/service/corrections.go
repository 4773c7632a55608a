package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/repository"
)

// frequencyCorrection is a reconciled type/option pairing awaiting persistence.
type frequencyCorrection struct {
	HabitID uuid.UUID
	Type    entity.FrequencyType
	Option  entity.FrequencyOption
}

// CorrectionWorker persists frequency reconciliations in the background. The
// read path returns the corrected value immediately; the write happens here,
// retried and tracked separately, so a slow or failing store never delays a
// tick.
type CorrectionWorker struct {
	habits     repository.HabitRepository
	queue      chan frequencyCorrection
	maxRetries int
	retryDelay time.Duration
}

// NewCorrectionWorker creates a correction worker with the given queue size.
func NewCorrectionWorker(habits repository.HabitRepository, buffer int) *CorrectionWorker {
	if buffer < 1 {
		buffer = 64
	}
	return &CorrectionWorker{
		habits:     habits,
		queue:      make(chan frequencyCorrection, buffer),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// Enqueue schedules a correction for persistence. Never blocks: when the
// queue is full the correction is dropped and logged, and the next tick will
// re-detect and re-enqueue it.
func (w *CorrectionWorker) Enqueue(habitID uuid.UUID, frequencyType entity.FrequencyType, frequencyOption entity.FrequencyOption) {
	c := frequencyCorrection{HabitID: habitID, Type: frequencyType, Option: frequencyOption}
	select {
	case w.queue <- c:
	default:
		log.Printf("[RECONCILE] correction queue full, dropping correction for habit %s", habitID)
	}
}

// Run processes corrections until ctx is cancelled.
func (w *CorrectionWorker) Run(ctx context.Context) {
	log.Println("[RECONCILE] correction worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("[RECONCILE] correction worker stopped")
			return
		case c := <-w.queue:
			w.persist(ctx, c)
		}
	}
}

func (w *CorrectionWorker) persist(ctx context.Context, c frequencyCorrection) {
	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		err = w.habits.UpdateFrequency(ctx, c.HabitID, c.Type, c.Option)
		if err == nil {
			log.Printf("[RECONCILE] corrected habit %s to %s/%s", c.HabitID, c.Type, c.Option)
			return
		}
		if ctx.Err() != nil {
			return
		}
		if attempt < w.maxRetries {
			time.Sleep(w.retryDelay)
		}
	}
	log.Printf("[RECONCILE] failed to persist correction for habit %s after %d attempts: %v", c.HabitID, w.maxRetries, err)
}
