package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/applytrack/applytrack-api/internal/model"
)

// RewardsRepo persists what the rewards engine computed. The stored rows
// are a read cache and an audit trail; they are never fed back into the
// computation.
type RewardsRepo struct {
	pool *pgxpool.Pool
}

func NewRewardsRepo(pool *pgxpool.Pool) *RewardsRepo {
	return &RewardsRepo{pool: pool}
}

// SaveState writes the derived state for a user. Badge rows are insert-only:
// an earned_at written once is never updated, which keeps earn dates stable
// even if the catalog's thresholds were recomputed from a longer log.
func (r *RewardsRepo) SaveState(ctx context.Context, userID uuid.UUID, state model.RewardsState) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO user_rewards (user_id, points, level, current_streak, longest_streak, applications, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (user_id) DO UPDATE
		SET points = EXCLUDED.points, level = EXCLUDED.level,
		    current_streak = EXCLUDED.current_streak,
		    longest_streak = EXCLUDED.longest_streak,
		    applications = EXCLUDED.applications, computed_at = now()
	`, userID, state.Points, state.Level, state.CurrentStreak, state.LongestStreak, state.Applications)
	if err != nil {
		return fmt.Errorf("saving user rewards: %w", err)
	}

	for _, b := range state.Badges {
		if !b.Earned {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO user_badges (user_id, badge_id, earned_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, badge_id) DO NOTHING
		`, userID, b.ID, b.EarnedAt)
		if err != nil {
			return fmt.Errorf("saving badge %q: %w", b.ID, err)
		}
	}

	for country, count := range state.Countries {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_countries (user_id, country, applications)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, country) DO UPDATE
			SET applications = EXCLUDED.applications
		`, userID, country, count)
		if err != nil {
			return fmt.Errorf("saving country count for %q: %w", country, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing rewards state: %w", err)
	}
	return nil
}

// EarnedBadges returns the persisted earn dates, keyed by badge ID
func (r *RewardsRepo) EarnedBadges(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT badge_id, earned_at FROM user_badges WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing earned badges: %w", err)
	}
	defer rows.Close()

	earned := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("scanning badge row: %w", err)
		}
		earned[id] = at
	}
	return earned, nil
}

