//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/fitsync/internal/activity"
	"github.com/2beens/fitsync/internal/activity/api"
	"github.com/2beens/fitsync/internal/activity/history"
	"github.com/2beens/fitsync/internal/activity/remote"
	"github.com/2beens/fitsync/internal/activity/session"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) today(ctx context.Context, userID string) api.TodayResponse {
	status, body := s.doRequest(ctx, http.MethodGet, "/activity/today", userID, "")
	require.Equal(s.T(), http.StatusOK, status, string(body))
	var resp api.TodayResponse
	require.NoError(s.T(), json.Unmarshal(body, &resp))
	return resp
}

func (s *IntegrationTestSuite) remoteSteps(ctx context.Context, userID string) int64 {
	var steps int64
	err := s.DB.QueryRow(ctx,
		`SELECT steps FROM activity_daily WHERE user_id = $1 AND day = $2::date`,
		userID, activity.Day(time.Now()),
	).Scan(&steps)
	require.NoError(s.T(), err)
	return steps
}

func (s *IntegrationTestSuite) TestActivityLifecycle() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	userID := gofakeit.UUID()

	_, err := s.DB.Exec(ctx,
		`INSERT INTO objective (user_id, type, value, created_at) VALUES ($1, 'steps', 6000, now())`,
		userID,
	)
	require.NoError(t, err)

	status, body := s.doRequest(ctx, http.MethodPost, "/session/login", userID, "")
	require.Equal(t, http.StatusOK, status, string(body))
	// day row created with zeros on first login
	assert.Equal(t, int64(0), s.remoteSteps(ctx, userID))

	status, _ = s.doRequest(ctx, http.MethodPost, "/sensor/steps", userID, `{"cumulativeSteps":1200}`)
	require.Equal(t, http.StatusAccepted, status)
	require.Eventually(t, func() bool {
		return s.today(ctx, userID).Activity.Steps == 1200
	}, 5*time.Second, 20*time.Millisecond)

	resp := s.today(ctx, userID)
	assert.InDelta(t, 0.9144, resp.Activity.DistanceKm, 1e-9)
	assert.Equal(t, int64(48), resp.Activity.Calories)
	assert.Equal(t, float64(20), resp.Progress.StepsPercent)

	status, _ = s.doRequest(ctx, http.MethodPost, "/sensor/steps", userID, `{"cumulativeSteps":1800}`)
	require.Equal(t, http.StatusAccepted, status)
	require.Eventually(t, func() bool {
		return s.today(ctx, userID).Activity.Steps == 1800
	}, 5*time.Second, 20*time.Millisecond)

	status, body = s.doRequest(ctx, http.MethodPost, "/session/logout", userID, "")
	require.Equal(t, http.StatusOK, status)
	var logoutResp session.LogoutResponse
	require.NoError(t, json.Unmarshal(body, &logoutResp))
	assert.True(t, logoutResp.Flushed)

	assert.Equal(t, int64(1800), s.remoteSteps(ctx, userID))
	// snapshot unchanged by the flush
	assert.Equal(t, int64(1800), s.today(ctx, userID).Activity.Steps)

	status, body = s.doRequest(ctx, http.MethodGet, "/activity/week", userID, "")
	require.Equal(t, http.StatusOK, status)
	var week history.Week
	require.NoError(t, json.Unmarshal(body, &week))
	assert.Len(t, week.Days, 7)
	assert.Equal(t, int64(1800), week.Total.Steps)
}

func (s *IntegrationTestSuite) TestFlushesFromAnotherDeviceCommute() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	userID := gofakeit.UUID()

	status, _ := s.doRequest(ctx, http.MethodPost, "/session/login", userID, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = s.doRequest(ctx, http.MethodPost, "/sensor/steps", userID, `{"cumulativeSteps":300}`)
	require.Equal(t, http.StatusAccepted, status)
	require.Eventually(t, func() bool {
		return s.today(ctx, userID).Activity.Steps == 300
	}, 5*time.Second, 20*time.Millisecond)

	// the same user walked with another device meanwhile
	otherDevice := remote.NewRepo(s.DB)
	applied, err := otherDevice.ApplyFlush(ctx, remote.Flush{
		ID:     gofakeit.UUID(),
		UserID: userID,
		Day:    activity.Day(time.Now()),
		Totals: activity.FromSteps(200),
	})
	require.NoError(t, err)
	require.True(t, applied)

	assert.Equal(t, int64(500), s.today(ctx, userID).Activity.Steps)

	status, _ = s.doRequest(ctx, http.MethodPost, "/session/logout", userID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(500), s.remoteSteps(ctx, userID))
}

func (s *IntegrationTestSuite) TestUnauthorized() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, path := range []string{"/activity/today", "/objectives", "/activity/week"} {
		status, _ := s.doRequest(ctx, http.MethodGet, path, "", "")
		assert.Equal(s.T(), http.StatusUnauthorized, status, fmt.Sprintf("path: %s", path))
	}
}
