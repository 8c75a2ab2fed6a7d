package objectives

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fitsync/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the objectives of userID, oldest first.
func (r *Repo) List(ctx context.Context, userID string) (_ []Objective, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.objectives.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user", userID))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, value, created_at
		FROM objective
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select objectives: %w", err)
	}
	defer rows.Close()

	list := make([]Objective, 0)
	for rows.Next() {
		var o Objective
		var objType string
		if err := rows.Scan(&o.ID, &o.UserID, &objType, &o.Value, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan objective: %w", err)
		}
		o.Type = Type(objType)
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objectives: %w", err)
	}
	return list, nil
}

// TestApi is an in-memory objectives source for tests and the development setup.
type TestApi struct {
	mutex      sync.Mutex
	objectives []Objective
	err        error
}

func NewTestApi() *TestApi {
	return &TestApi{}
}

func (api *TestApi) Add(userID string, objType Type, value float64) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	api.objectives = append(api.objectives, Objective{
		ID:        len(api.objectives) + 1,
		UserID:    userID,
		Type:      objType,
		Value:     value,
		CreatedAt: time.Now(),
	})
}

func (api *TestApi) SetErr(err error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	api.err = err
}

func (api *TestApi) List(_ context.Context, userID string) ([]Objective, error) {
	api.mutex.Lock()
	defer api.mutex.Unlock()
	if api.err != nil {
		return nil, api.err
	}
	list := make([]Objective, 0)
	for _, o := range api.objectives {
		if o.UserID == userID {
			list = append(list, o)
		}
	}
	return list, nil
}
