package objectives

import (
	"context"
	"net/http"

	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/telemetry/tracing"
	"github.com/2beens/fitsync/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type objectivesRepo interface {
	List(ctx context.Context, userID string) ([]Objective, error)
}

type ListResponse struct {
	Objectives []Objective `json:"objectives"`
	Goals      Objectives  `json:"goals"`
}

type Handler struct {
	repo objectivesRepo
}

func NewHandler(repo objectivesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/objectives", handler.HandleList).Methods("GET").Name("objectives")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.objectives.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID))

	list, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("list objectives of %s: %s", userID, err)
		http.Error(w, "failed to list objectives", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{
		Objectives: list,
		Goals:      FromList(list),
	}, http.StatusOK)
}
