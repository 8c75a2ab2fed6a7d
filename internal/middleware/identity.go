package middleware

import (
	"net/http"

	"github.com/2beens/fitsync/internal/auth"
	"github.com/2beens/fitsync/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type userIDVerifier interface {
	UserID(token string) (string, error)
}

type IdentityMiddlewareHandler struct {
	verifier     userIDVerifier
	allowedPaths map[string]bool
}

func NewIdentityMiddlewareHandler(verifier userIDVerifier) *IdentityMiddlewareHandler {
	return &IdentityMiddlewareHandler{
		verifier: verifier,
		allowedPaths: map[string]bool{
			"/health":  true,
			"/version": true,
		},
	}
}

// Identity resolves the user from the bearer token and stores the user ID in
// the request context.
func (h *IdentityMiddlewareHandler) Identity() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.identity")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := auth.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				log.Tracef("[missing token] [identity middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-token")
				return
			}

			userID, err := h.verifier.UserID(token)
			if err != nil {
				log.Debugf("[invalid token] [identity middleware] unauthorized => %s: %s", r.URL.Path, err)
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-token")
				span.RecordError(err)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(ctx, userID)))
		})
	}
}
