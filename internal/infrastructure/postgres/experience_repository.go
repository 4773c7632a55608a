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

type experienceRepository struct {
	pool *pgxpool.Pool
}

// NewExperienceRepository creates a new PostgreSQL experience repository
func NewExperienceRepository(pool *pgxpool.Pool) repository.ExperienceRepository {
	return &experienceRepository{pool: pool}
}

func (r *experienceRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.UserExperience, error) {
	query := `SELECT user_id, experience_points, current_level FROM user_experience WHERE user_id = $1`

	profile := &entity.UserExperience{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.ExperiencePoints, &profile.CurrentLevel,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &entity.UserExperience{UserID: userID, ExperiencePoints: 0, CurrentLevel: 1}, nil
		}
		return nil, fmt.Errorf("failed to get xp profile: %w", err)
	}

	return profile, nil
}

func (r *experienceRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, experiencePoints, currentLevel int) error {
	query := `
		INSERT INTO user_experience (user_id, experience_points, current_level, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			experience_points = EXCLUDED.experience_points,
			current_level = EXCLUDED.current_level,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query, userID, experiencePoints, currentLevel, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update xp profile: %w", err)
	}

	return nil
}

func (r *experienceRepository) GetLevels(ctx context.Context) ([]*entity.Level, error) {
	query := `SELECT level_number, name, xp_required FROM levels ORDER BY level_number`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get levels: %w", err)
	}
	defer rows.Close()

	var levels []*entity.Level
	for rows.Next() {
		level := &entity.Level{}
		if err := rows.Scan(&level.Number, &level.Name, &level.XPRequired); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate levels: %w", err)
	}

	return levels, nil
}

func (r *experienceRepository) GetXPActionValue(ctx context.Context, actionKey string) (int, error) {
	query := `SELECT xp_value FROM xp_actions WHERE action_key = $1 AND is_active = true`

	var xpValue int
	err := r.pool.QueryRow(ctx, query, actionKey).Scan(&xpValue)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get xp action: %w", err)
	}

	return xpValue, nil
}
