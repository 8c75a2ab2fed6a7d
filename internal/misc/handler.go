package misc

import (
	"net/http"

	"github.com/2beens/fitsync/internal/telemetry/tracing"
	"github.com/2beens/fitsync/pkg"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
)

type schedulerStatus interface {
	Status() string
}

type activeSession interface {
	ActiveUser() (string, bool)
}

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Scheduler     string `json:"scheduler"`
	SessionActive bool   `json:"sessionActive"`
}

type Handler struct {
	versionInfo string
	scheduler   schedulerStatus
	session     activeSession
}

func NewHandler(
	versionInfo string,
	scheduler schedulerStatus,
	session activeSession,
) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		scheduler:   scheduler,
		session:     session,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	_, sessionActive := handler.session.ActiveUser()
	resp := HealthResponse{
		Status:        "ok",
		Version:       handler.versionInfo,
		Scheduler:     handler.scheduler.Status(),
		SessionActive: sessionActive,
	}
	span.SetAttributes(attribute.String("scheduler", resp.Scheduler))

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
