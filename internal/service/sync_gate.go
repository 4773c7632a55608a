package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"habitflow/internal/domain/repository"
	"habitflow/internal/domain/service"
	"habitflow/pkg/calendar"
)

// SyncGate is the per-user idempotency latch around the day-boundary tick.
// It records the last reference-timezone date on which the tick ran and
// no-ops for the rest of that day. It is a local latch, not a cross-device
// lock: concurrent clients may each run their own tick, and the tick itself
// is idempotent to tolerate that.
type SyncGate struct {
	markers repository.MarkerStorage
	engine  service.StreakEngine
	cal     *calendar.Calendar
}

// NewSyncGate creates a new daily sync gate.
func NewSyncGate(markers repository.MarkerStorage, engine service.StreakEngine, cal *calendar.Calendar) *SyncGate {
	return &SyncGate{markers: markers, engine: engine, cal: cal}
}

func (g *SyncGate) markerKey(userID uuid.UUID) string {
	return fmt.Sprintf("habits:last_reset:%s", userID)
}

// SyncNewDay runs the daily tick if it has not run yet today. Returns true
// when the tick was executed. The marker is written after a successful tick:
// a failed tick stays unlatched and is safely re-attempted on the next
// trigger.
func (g *SyncGate) SyncNewDay(ctx context.Context, userID uuid.UUID) (bool, error) {
	today := g.cal.DateKey(g.cal.Today())

	lastReset, err := g.markers.Get(ctx, g.markerKey(userID))
	if err != nil {
		return false, fmt.Errorf("failed to read sync marker: %w", err)
	}
	if lastReset == today {
		return false, nil
	}

	if err := g.engine.RunDailyTick(ctx, userID); err != nil {
		return false, fmt.Errorf("daily tick failed: %w", err)
	}

	if err := g.markers.Set(ctx, g.markerKey(userID), today); err != nil {
		// The tick is idempotent; a lost marker only costs a redundant run.
		log.Printf("[SYNC] failed to persist sync marker for user %s: %v", userID, err)
	}

	return true, nil
}
