// Package api exposes the reconciled activity of the signed-in user over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fitsync/internal/activity"
	"github.com/2beens/fitsync/internal/activity/history"
	"github.com/2beens/fitsync/internal/activity/scheduler"
	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/objectives"
	"github.com/2beens/fitsync/internal/telemetry/tracing"
	"github.com/2beens/fitsync/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=api_test

type snapshotLoader interface {
	LoadActivityData(ctx context.Context, userID string) activity.Snapshot
}

type syncChecker interface {
	CheckAndSync(ctx context.Context, userID string) (bool, error)
}

type weekHistory interface {
	Week(ctx context.Context, userID string, date time.Time) (*history.Week, error)
}

type objectivesLister interface {
	List(ctx context.Context, userID string) ([]objectives.Objective, error)
}

type TodayResponse struct {
	Activity activity.Snapshot   `json:"activity"`
	Progress objectives.Progress `json:"progress"`
}

type SyncResponse struct {
	Synced bool `json:"synced"`
}

type Handler struct {
	snapshots  snapshotLoader
	syncer     syncChecker
	history    weekHistory
	objectives objectivesLister
	now        activity.Clock
}

func NewHandler(
	snapshots snapshotLoader,
	syncer syncChecker,
	history weekHistory,
	objectivesLister objectivesLister,
	clock activity.Clock,
) *Handler {
	if clock == nil {
		clock = activity.SystemClock
	}
	return &Handler{
		snapshots:  snapshots,
		syncer:     syncer,
		history:    history,
		objectives: objectivesLister,
		now:        clock,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	activityRouter := router.PathPrefix("/activity").Subrouter()
	activityRouter.HandleFunc("/today", handler.HandleToday).Methods("GET").Name("activity-today")
	activityRouter.HandleFunc("/sync", handler.HandleSync).Methods("POST").Name("activity-sync")
	activityRouter.HandleFunc("/week", handler.HandleWeek).Methods("GET").Name("activity-week")
}

// HandleToday returns the reconciled snapshot and the progress towards the
// user's objectives. Failing to read the objectives is not fatal; progress is
// then computed against no goals.
func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.today")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID))

	snapshot := handler.snapshots.LoadActivityData(ctx, userID)

	var goals objectives.Objectives
	list, err := handler.objectives.List(ctx, userID)
	if err != nil {
		log.Errorf("activity today, list objectives of %s: %s", userID, err)
		span.RecordError(err)
	} else {
		goals = objectives.FromList(list)
	}

	pkg.WriteJSON(w, TodayResponse{
		Activity: snapshot,
		Progress: objectives.NewProgress(goals, snapshot),
	}, http.StatusOK)
}

func (handler *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.sync")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID))

	synced, err := handler.syncer.CheckAndSync(ctx, userID)
	if errors.Is(err, scheduler.ErrFlushInFlight) {
		http.Error(w, "sync already in progress", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("activity sync for %s: %s", userID, err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, "sync failed", http.StatusBadGateway)
		return
	}

	pkg.WriteJSON(w, SyncResponse{Synced: synced}, http.StatusOK)
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.week")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID))

	date := handler.now()
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := activity.ParseDay(dateParam)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	week, err := handler.history.Week(ctx, userID, date)
	if err != nil {
		log.Errorf("activity week for %s: %s", userID, err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, "failed to get week activity", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, week, http.StatusOK)
}
