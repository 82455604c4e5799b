package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/fadhilmaulana/glowcoach/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestGoalLifecycle covers create, status transitions and delete
func TestGoalLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = infra.Terminate(ctx, t)
	})

	err = setup.RunMigration(infra.PgURL, t)
	require.NoError(t, err)

	app, db, _, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)

	t.Cleanup(func() {
		setup.TruncateAllTables(t, db, ctx)
	})

	token := setup.SignupUser(t, app, infra.MailhogURL, "goals@example.com", "Goal Tester")

	t.Log("=== Creating Goal ===")
	createBody := []byte(`{"title":"Clear forehead breakouts","description":"Stick to the BHA routine","targetDate":"2026-11-30"}`)
	req := setup.CreateAuthRequest(http.MethodPost, "/api/goals/", createBody, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	created := setup.ParseJSONResponse(t, resp)
	goalId, ok := created["id"].(string)
	require.True(t, ok)
	require.Equal(t, "active", created["status"])
	require.Nil(t, created["completedAt"])

	t.Log("=== Completing Goal ===")
	statusBody := []byte(`{"status":"completed"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	completed := setup.ParseJSONResponse(t, resp)
	require.Equal(t, "completed", completed["status"])
	require.NotNil(t, completed["completedAt"], "completing stamps completedAt")

	t.Log("=== Re-activating Clears The Stamp ===")
	statusBody = []byte(`{"status":"active"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	reactivated := setup.ParseJSONResponse(t, resp)
	require.Equal(t, "active", reactivated["status"])
	require.Nil(t, reactivated["completedAt"], "leaving completed clears completedAt")

	t.Log("=== Invalid Status Rejected ===")
	statusBody = []byte(`{"status":"paused"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	t.Log("=== Terminal States Only Leave Via Re-activation ===")
	statusBody = []byte(`{"status":"abandoned"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	statusBody = []byte(`{"status":"completed"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode, "abandoned goal cannot jump straight to completed")

	statusBody = []byte(`{"status":"active"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	statusBody = []byte(`{"status":"completed"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	statusBody = []byte(`{"status":"abandoned"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode, "completed goal cannot be abandoned without re-activation")

	statusBody = []byte(`{"status":"active"}`)
	req = setup.CreateAuthRequest(http.MethodPatch, "/api/goals/"+goalId+"/status", statusBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	t.Log("=== Filtering By Status ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/goals/?status=active", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/goals/?status=bogus", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	t.Log("=== Deleting Goal ===")
	req = setup.CreateAuthRequest(http.MethodDelete, "/api/goals/"+goalId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/goals/"+goalId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)
}
