package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/repository"
)

type habitLogRepository struct {
	pool *pgxpool.Pool
}

// NewHabitLogRepository creates a new PostgreSQL habit log repository
func NewHabitLogRepository(pool *pgxpool.Pool) repository.HabitLogRepository {
	return &habitLogRepository{pool: pool}
}

const logColumns = `id, habit_id, date, value, completed, created_at, updated_at`

func scanLog(row pgx.Row) (*entity.HabitLog, error) {
	l := &entity.HabitLog{}
	err := row.Scan(&l.ID, &l.HabitID, &l.Date, &l.Value, &l.Completed, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *habitLogRepository) Create(ctx context.Context, habitLog *entity.HabitLog) error {
	query := `
		INSERT INTO habit_logs (` + logColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		habitLog.ID, habitLog.HabitID, habitLog.Date,
		habitLog.Value, habitLog.Completed,
		habitLog.CreatedAt, habitLog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create habit log: %w", err)
	}

	return nil
}

func (r *habitLogRepository) GetByHabitAndDate(ctx context.Context, habitID uuid.UUID, date string) (*entity.HabitLog, error) {
	query := `SELECT ` + logColumns + ` FROM habit_logs WHERE habit_id = $1 AND date = $2`

	habitLog, err := scanLog(r.pool.QueryRow(ctx, query, habitID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get habit log: %w", err)
	}

	return habitLog, nil
}

func (r *habitLogRepository) Update(ctx context.Context, logID uuid.UUID, value int, completed bool) error {
	query := `
		UPDATE habit_logs SET
			value = $1,
			completed = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, value, completed, time.Now().UTC(), logID)
	if err != nil {
		return fmt.Errorf("failed to update habit log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *habitLogRepository) QueryRange(ctx context.Context, habitID uuid.UUID, fromDate, toDate string, completedOnly bool) ([]*entity.HabitLog, error) {
	query := `SELECT ` + logColumns + ` FROM habit_logs WHERE habit_id = $1 AND date >= $2 AND date <= $3`
	if completedOnly {
		query += ` AND completed = true`
	}
	query += ` ORDER BY date`

	rows, err := r.pool.Query(ctx, query, habitID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit logs: %w", err)
	}
	defer rows.Close()

	var habitLogs []*entity.HabitLog
	for rows.Next() {
		habitLog, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit log: %w", err)
		}
		habitLogs = append(habitLogs, habitLog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habit logs: %w", err)
	}

	return habitLogs, nil
}

func (r *habitLogRepository) CountCompletedInRange(ctx context.Context, habitID uuid.UUID, fromDate, toDate string) (int, error) {
	query := `
		SELECT COUNT(*) FROM habit_logs
		WHERE habit_id = $1 AND date >= $2 AND date <= $3 AND completed = true
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, habitID, fromDate, toDate).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed logs: %w", err)
	}

	return count, nil
}

func (r *habitLogRepository) LatestDateKeyForUser(ctx context.Context, userID uuid.UUID) (string, error) {
	query := `
		SELECT COALESCE(MAX(l.date), '')
		FROM habit_logs l
		JOIN habits h ON h.id = l.habit_id
		WHERE h.user_id = $1
	`

	var latest string
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&latest); err != nil {
		return "", fmt.Errorf("failed to find latest log date: %w", err)
	}

	return latest, nil
}
