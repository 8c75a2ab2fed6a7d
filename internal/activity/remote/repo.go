package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitsync/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*Repo)(nil)

// Repo is the postgres backed Store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, userID, day string) (_ *Aggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.String("day", day),
	)

	agg := &Aggregate{}
	err = r.db.QueryRow(ctx, `
		SELECT user_id, day::text, steps, distance_km, calories, last_updated
		FROM activity_daily
		WHERE user_id = $1 AND day = $2::date
	`, userID, day).
		Scan(&agg.UserID, &agg.Day, &agg.Steps, &agg.DistanceKm, &agg.Calories, &agg.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select activity day: %w", err)
	}
	return agg, nil
}

func (r *Repo) ApplyFlush(ctx context.Context, flush Flush) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.applyFlush")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("user", flush.UserID),
		attribute.String("day", flush.Day),
		attribute.String("flush.id", flush.ID),
		attribute.Int64("steps", flush.Totals.Steps),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		INSERT INTO activity_flush (flush_id, user_id, day, steps, distance_km, calories)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		ON CONFLICT (flush_id) DO NOTHING
	`,
		flush.ID, flush.UserID, flush.Day,
		flush.Totals.Steps, flush.Totals.DistanceKm, flush.Totals.Calories,
	)
	if err != nil {
		return false, fmt.Errorf("record flush: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetAttributes(attribute.Bool("duplicate", true))
		return false, nil
	}

	// absent row counts as zero, so set-or-increment is a single statement
	_, err = tx.Exec(ctx, `
		INSERT INTO activity_daily (user_id, day, steps, distance_km, calories, last_updated)
		VALUES ($1, $2::date, $3, $4, $5, now())
		ON CONFLICT (user_id, day) DO UPDATE SET
			steps        = activity_daily.steps + EXCLUDED.steps,
			distance_km  = activity_daily.distance_km + EXCLUDED.distance_km,
			calories     = activity_daily.calories + EXCLUDED.calories,
			last_updated = now()
	`,
		flush.UserID, flush.Day,
		flush.Totals.Steps, flush.Totals.DistanceKm, flush.Totals.Calories,
	)
	if err != nil {
		return false, fmt.Errorf("increment activity day: %w", err)
	}
	return true, nil
}

func (r *Repo) HasFlush(ctx context.Context, flushID string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.hasFlush")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var exists bool
	if err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM activity_flush WHERE flush_id = $1)`, flushID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check flush: %w", err)
	}
	return exists, nil
}

func (r *Repo) EnsureDay(ctx context.Context, userID, day string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.ensureDay")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.String("day", day),
	)

	if _, err = r.db.Exec(ctx, `
		INSERT INTO activity_daily (user_id, day)
		VALUES ($1, $2::date)
		ON CONFLICT (user_id, day) DO NOTHING
	`, userID, day); err != nil {
		return fmt.Errorf("ensure activity day: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, userID, fromDay, toDay string) (_ []Aggregate, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.String("from", fromDay),
		attribute.String("to", toDay),
	)

	rows, err := r.db.Query(ctx, `
		SELECT user_id, day::text, steps, distance_km, calories, last_updated
		FROM activity_daily
		WHERE user_id = $1 AND day BETWEEN $2::date AND $3::date
		ORDER BY day
	`, userID, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("select activity days: %w", err)
	}
	defer rows.Close()

	aggregates := make([]Aggregate, 0, 7)
	for rows.Next() {
		var agg Aggregate
		var lastUpdated time.Time
		if err := rows.Scan(&agg.UserID, &agg.Day, &agg.Steps, &agg.DistanceKm, &agg.Calories, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scan activity day: %w", err)
		}
		agg.LastUpdated = lastUpdated
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity days: %w", err)
	}

	return aggregates, nil
}
