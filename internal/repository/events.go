package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/applytrack/applytrack-api/internal/model"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// Append adds one entry to the user's activity log
func (r *EventRepo) Append(ctx context.Context, e *model.ApplicationEvent) (*model.ApplicationEvent, error) {
	var created model.ApplicationEvent
	err := r.pool.QueryRow(ctx, `
		INSERT INTO application_events (user_id, job_id, outcome, country, job_type, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, job_id, outcome, country, job_type, reason, occurred_at
	`, e.UserID, e.JobID, e.Outcome, e.Country, e.JobType, e.Reason, e.OccurredAt,
	).Scan(
		&created.ID, &created.UserID, &created.JobID, &created.Outcome,
		&created.Country, &created.JobType, &created.Reason, &created.OccurredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("appending event: %w", err)
	}
	return &created, nil
}

// ListByUser returns the full activity log ordered by occurrence. The
// rewards engine expects ascending order but sorts defensively anyway.
func (r *EventRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ApplicationEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, job_id, outcome, country, job_type, reason, occurred_at
		FROM application_events
		WHERE user_id = $1
		ORDER BY occurred_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.ApplicationEvent
	for rows.Next() {
		var e model.ApplicationEvent
		err := rows.Scan(
			&e.ID, &e.UserID, &e.JobID, &e.Outcome,
			&e.Country, &e.JobType, &e.Reason, &e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}

// DeleteForJob removes the most recent event a rollback undoes. Only the
// latest event for the job may be retracted; history stays append-only
// otherwise.
func (r *EventRepo) DeleteForJob(ctx context.Context, userID, jobID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM application_events
		WHERE id = (
			SELECT id FROM application_events
			WHERE user_id = $1 AND job_id = $2
			ORDER BY occurred_at DESC, id DESC
			LIMIT 1
		)
	`, userID, jobID)
	if err != nil {
		return fmt.Errorf("retracting event: %w", err)
	}
	return nil
}
