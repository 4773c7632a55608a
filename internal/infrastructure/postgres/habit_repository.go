package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/repository"
)

type habitRepository struct {
	pool *pgxpool.Pool
}

// NewHabitRepository creates a new PostgreSQL habit repository
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{pool: pool}
}

const habitColumns = `
	id, user_id, name, icon, unit,
	goal_value, progress_count,
	frequency_type, frequency_option, frequency_detail,
	streak, longest_streak, last_period_key,
	created_at, updated_at
`

func scanHabit(row pgx.Row) (*entity.Habit, error) {
	habit := &entity.Habit{}
	err := row.Scan(
		&habit.ID, &habit.UserID, &habit.Name, &habit.Icon, &habit.Unit,
		&habit.GoalValue, &habit.ProgressCount,
		&habit.FrequencyType, &habit.FrequencyOption, &habit.FrequencyDetail,
		&habit.Streak, &habit.LongestStreak, &habit.LastPeriodKey,
		&habit.CreatedAt, &habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (r *habitRepository) Create(ctx context.Context, habit *entity.Habit) error {
	query := `
		INSERT INTO habits (` + habitColumns + `)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15
		)
	`

	_, err := r.pool.Exec(ctx, query,
		habit.ID, habit.UserID, habit.Name, habit.Icon, habit.Unit,
		habit.GoalValue, habit.ProgressCount,
		habit.FrequencyType, habit.FrequencyOption, habit.FrequencyDetail,
		habit.Streak, habit.LongestStreak, habit.LastPeriodKey,
		habit.CreatedAt, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

func (r *habitRepository) GetByID(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	habit, err := scanHabit(r.pool.QueryRow(ctx, query, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	habit, err := scanHabit(r.pool.QueryRow(ctx, query, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	defer rows.Close()

	var habits []*entity.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

func (r *habitRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM habits WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count habits: %w", err)
	}
	return count, nil
}

func (r *habitRepository) Update(ctx context.Context, habit *entity.Habit) error {
	query := `
		UPDATE habits SET
			name = $1,
			icon = $2,
			unit = $3,
			goal_value = $4,
			progress_count = $5,
			frequency_type = $6,
			frequency_option = $7,
			frequency_detail = $8,
			updated_at = $9
		WHERE id = $10
	`

	result, err := r.pool.Exec(ctx, query,
		habit.Name, habit.Icon, habit.Unit,
		habit.GoalValue, habit.ProgressCount,
		habit.FrequencyType, habit.FrequencyOption, habit.FrequencyDetail,
		time.Now().UTC(), habit.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *habitRepository) UpdateProgress(ctx context.Context, habitID uuid.UUID, progressCount, streak, longestStreak int, lastPeriodKey *string) error {
	query := `
		UPDATE habits SET
			progress_count = $1,
			streak = $2,
			longest_streak = $3,
			last_period_key = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.pool.Exec(ctx, query, progressCount, streak, longestStreak, lastPeriodKey, time.Now().UTC(), habitID)
	if err != nil {
		return fmt.Errorf("failed to update habit progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *habitRepository) UpdateFrequency(ctx context.Context, habitID uuid.UUID, frequencyType entity.FrequencyType, frequencyOption entity.FrequencyOption) error {
	query := `
		UPDATE habits SET
			frequency_type = $1,
			frequency_option = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, frequencyType, frequencyOption, time.Now().UTC(), habitID)
	if err != nil {
		return fmt.Errorf("failed to update habit frequency: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *habitRepository) Delete(ctx context.Context, habitID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM habits WHERE id = $1`, habitID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *habitRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM habits`)
	if err != nil {
		return nil, fmt.Errorf("failed to list habit owners: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user ids: %w", err)
	}

	return userIDs, nil
}
