package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/telemetry/tracing"
	"github.com/2beens/fitsync/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type sessionLifecycle interface {
	Login(ctx context.Context, userID string) error
	Logout(ctx context.Context, userID string) error
}

type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
	// Flushed is false when the cached activity could not be flushed; it stays
	// on the device and is flushed on the next login of the user.
	Flushed bool `json:"flushed"`
}

type Handler struct {
	sessions sessionLifecycle
}

func NewHandler(sessions sessionLifecycle) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	sessionRouter := router.PathPrefix("/session").Subrouter()
	sessionRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST").Name("session-login")
	sessionRouter.HandleFunc("/logout", handler.HandleLogout).Methods("POST").Name("session-logout")
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.login")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID))

	err := handler.sessions.Login(ctx, userID)
	switch {
	case errors.Is(err, ErrSessionActive):
		http.Error(w, "another user is logged in on this device", http.StatusConflict)
		return
	case err != nil:
		log.Errorf("login of %s: %s", userID, err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-in")
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.logout")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID))

	err := handler.sessions.Logout(ctx, userID)
	if errors.Is(err, ErrNoActiveSession) {
		http.Error(w, "no active session", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("logout of %s, activity not flushed: %s", userID, err)
		span.RecordError(err)
	}

	pkg.WriteJSON(w, LogoutResponse{LoggedOut: true, Flushed: err == nil}, http.StatusOK)
}
