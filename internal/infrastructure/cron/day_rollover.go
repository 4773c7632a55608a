package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"habitflow/internal/domain/repository"
	"habitflow/internal/service"
)

// DayRolloverChecker periodically sweeps all habit owners through the daily
// sync gate, so streaks settle even for users whose clients never call sync.
// The gate makes the sweep cheap: users already synced today are no-ops.
type DayRolloverChecker struct {
	habits   repository.HabitRepository
	gate     *service.SyncGate
	cron     *cron.Cron
	interval time.Duration
}

// NewDayRolloverChecker creates a new day rollover checker
func NewDayRolloverChecker(habits repository.HabitRepository, gate *service.SyncGate, checkInterval time.Duration) *DayRolloverChecker {
	return &DayRolloverChecker{
		habits:   habits,
		gate:     gate,
		cron:     cron.New(),
		interval: checkInterval,
	}
}

// Start starts the day rollover checker
func (d *DayRolloverChecker) Start() error {
	cronExpr := fmt.Sprintf("@every %s", d.interval.String())

	log.Printf("Starting day rollover checker with interval: %s", d.interval)

	_, err := d.cron.AddFunc(cronExpr, func() {
		d.sweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	d.cron.Start()
	log.Println("Day rollover checker started successfully")

	return nil
}

// Stop stops the day rollover checker
func (d *DayRolloverChecker) Stop() {
	log.Println("Stopping day rollover checker...")
	ctx := d.cron.Stop()
	<-ctx.Done()
	log.Println("Day rollover checker stopped")
}

// sweep runs every habit owner through the sync gate.
func (d *DayRolloverChecker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	userIDs, err := d.habits.ListUserIDs(ctx)
	if err != nil {
		log.Printf("Error listing habit owners: %v", err)
		return
	}

	ticked := 0
	for _, userID := range userIDs {
		ran, err := d.gate.SyncNewDay(ctx, userID)
		if err != nil {
			log.Printf("Error syncing user %s: %v", userID, err)
			continue
		}
		if ran {
			ticked++
		}
	}

	if ticked > 0 {
		log.Printf("Day rollover sweep ticked %d of %d users", ticked, len(userIDs))
	}
}
