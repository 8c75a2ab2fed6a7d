package objectives

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/fitsync/internal/auth"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_HandleList(t *testing.T) {
	api := NewTestApi()
	api.Add("u1", TypeSteps, 8000)
	api.Add("u1", TypeDistance, 5)
	api.Add("u2", TypeSteps, 1000)

	router := mux.NewRouter()
	NewHandler(api).SetupRoutes(router)

	serve := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/objectives", nil)
		if userID != "" {
			req = req.WithContext(auth.WithUserID(req.Context(), userID))
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := serve("u1")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Objectives, 2)
	assert.Equal(t, Objectives{Steps: 8000, DistanceKm: 5}, resp.Goals)

	assert.Equal(t, http.StatusUnauthorized, serve("").Code)

	api.SetErr(errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, serve("u1").Code)
}
