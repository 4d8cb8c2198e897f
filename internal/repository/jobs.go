package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/applytrack/applytrack-api/internal/model"
)

const jobColumns = `id, user_id, external_id, source, title, company, location,
       country, job_type, category, apply_url, easy_apply, posted_date,
       posted_at, applied, rejected, is_new, feed_order, created_at, updated_at`

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.ID, &j.UserID, &j.ExternalID, &j.Source, &j.Title, &j.Company,
		&j.Location, &j.Country, &j.JobType, &j.Category, &j.ApplyURL,
		&j.EasyApply, &j.PostedDate, &j.PostedAt, &j.Applied, &j.Rejected,
		&j.IsNew, &j.FeedOrder, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// List returns the user's full job collection in feed order. Filtering and
// sorting happen in the engine so the REST layer and the engine can never
// disagree about predicate semantics.
func (r *JobRepo) List(ctx context.Context, userID uuid.UUID) ([]model.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE user_id = $1
		ORDER BY feed_order ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

// FindByID returns a single job
func (r *JobRepo) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding job: %w", err)
	}
	return j, nil
}

// UpsertSnapshot merges a scraped snapshot into the user's collection.
// Unknown external IDs are inserted as new, known ones refresh their
// scraped fields while user bookkeeping (applied/rejected) is kept.
// Returns how many rows were newly inserted.
func (r *JobRepo) UpsertSnapshot(ctx context.Context, userID uuid.UUID, snap model.JobSnapshot) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for i, j := range snap.Jobs {
		var isInsert bool
		err := tx.QueryRow(ctx, `
			INSERT INTO jobs (user_id, external_id, source, title, company, location,
			                  country, job_type, category, apply_url, easy_apply,
			                  posted_date, posted_at, is_new, feed_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, true, $14)
			ON CONFLICT (user_id, external_id) DO UPDATE
			SET title = EXCLUDED.title, company = EXCLUDED.company,
			    location = EXCLUDED.location, country = EXCLUDED.country,
			    job_type = EXCLUDED.job_type, category = EXCLUDED.category,
			    apply_url = EXCLUDED.apply_url, easy_apply = EXCLUDED.easy_apply,
			    posted_date = EXCLUDED.posted_date, posted_at = EXCLUDED.posted_at,
			    is_new = false, feed_order = EXCLUDED.feed_order, updated_at = now()
			RETURNING (xmax = 0)
		`, userID, j.ExternalID, j.Source, j.Title, j.Company, j.Location,
			j.Country, j.JobType, j.Category, j.ApplyURL, j.EasyApply,
			j.PostedDate, j.PostedAt, i,
		).Scan(&isInsert)
		if err != nil {
			return 0, fmt.Errorf("upserting job %q: %w", j.ExternalID, err)
		}
		if isInsert {
			inserted++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing snapshot upsert: %w", err)
	}
	return inserted, nil
}

// SetApplied marks a job applied. Applying clears a previous rejection so
// the two terminal flags can never both be set.
func (r *JobRepo) SetApplied(ctx context.Context, id, userID uuid.UUID) (*model.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `
		UPDATE jobs
		SET applied = true, rejected = false, is_new = false, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+jobColumns+`
	`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("marking job applied: %w", err)
	}
	return j, nil
}

// SetRejected marks a job rejected, clearing a previous apply
func (r *JobRepo) SetRejected(ctx context.Context, id, userID uuid.UUID) (*model.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `
		UPDATE jobs
		SET rejected = true, applied = false, is_new = false, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+jobColumns+`
	`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("marking job rejected: %w", err)
	}
	return j, nil
}

// ClearFlags reverts a job to the untouched state, used to roll back an
// optimistic update the client abandoned
func (r *JobRepo) ClearFlags(ctx context.Context, id, userID uuid.UUID) (*model.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `
		UPDATE jobs
		SET applied = false, rejected = false, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+jobColumns+`
	`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("clearing job flags: %w", err)
	}
	return j, nil
}

// DeleteApplied removes every applied job for the user and reports how
// many rows went away. This is the only client-initiated delete path.
func (r *JobRepo) DeleteApplied(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM jobs WHERE user_id = $1 AND applied = true
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting applied jobs: %w", err)
	}
	return result.RowsAffected(), nil
}
