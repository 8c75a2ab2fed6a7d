package sensor

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/middleware"
	"github.com/2beens/fitsync/internal/telemetry/metrics"
	"github.com/2beens/fitsync/internal/telemetry/tracing"
	"github.com/2beens/fitsync/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type activeSession interface {
	ActiveUser() (string, bool)
}

type readingsPublisher interface {
	Publish(r Reading)
}

type StepsRequest struct {
	CumulativeSteps *int64 `json:"cumulativeSteps"`
}

type Handler struct {
	session   activeSession
	publisher readingsPublisher
	now       func() time.Time
}

func NewHandler(session activeSession, publisher readingsPublisher) *Handler {
	return &Handler{
		session:   session,
		publisher: publisher,
		now:       time.Now,
	}
}

func (handler *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) {
	sensorRouter := router.PathPrefix("/sensor").Subrouter()
	sensorRouter.HandleFunc("/steps", handler.HandleSteps).Methods("POST").Name("sensor-steps")
	if rateLimiter != nil {
		sensorRouter.Use(middleware.RateLimit(rateLimiter, "sensor-steps", allowedPerMin, metricsManager))
	}
}

// HandleSteps accepts a cumulative step count from the device sensor and hands
// it to the recorder of the active session.
func (handler *Handler) HandleSteps(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sensor.steps")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID))

	var req StepsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("sensor steps, unmarshal json: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CumulativeSteps == nil {
		http.Error(w, "error, cumulativeSteps missing", http.StatusBadRequest)
		return
	}
	if *req.CumulativeSteps < 0 {
		http.Error(w, ErrNegativeReading.Error(), http.StatusBadRequest)
		return
	}

	activeUserID, active := handler.session.ActiveUser()
	if !active || activeUserID != userID {
		http.Error(w, "no active session for user", http.StatusConflict)
		return
	}

	handler.publisher.Publish(Reading{
		UserID:          userID,
		CumulativeSteps: *req.CumulativeSteps,
		At:              handler.now(),
	})
	span.SetAttributes(attribute.Int64("cumulative", *req.CumulativeSteps))

	pkg.WriteResponse(w, pkg.ContentType.Text, "accepted", http.StatusAccepted)
}
