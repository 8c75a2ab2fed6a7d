//go:build integration_test || all_tests

package test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) ping() error {
	resp, err := http.Get(serverEndpoint + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health status: %d", resp.StatusCode)
	}
	return nil
}

// doRequest sends a request on behalf of userID and returns the status code and body.
func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path, userID, body string) (int, []byte) {
	t := s.T()

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := s.verifier.Sign(userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}
