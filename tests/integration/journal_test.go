package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/fadhilmaulana/glowcoach/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestJournalEntryLifecycle covers create, list, get, update and delete
func TestJournalEntryLifecycle(t *testing.T) {
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

	token := setup.SignupUser(t, app, infra.MailhogURL, "journal@example.com", "Journal Tester")

	t.Log("=== Creating Journal Entry ===")
	createBody := []byte(`{"title":"Morning routine","body":{"steps":["cleanser","moisturizer","spf"]},"mood":"calm","entryDate":"2026-08-29"}`)
	req := setup.CreateAuthRequest(http.MethodPost, "/api/journal/", createBody, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	created := setup.ParseJSONResponse(t, resp)
	entryId, ok := created["id"].(string)
	require.True(t, ok, "create response should contain id")
	require.Equal(t, "Morning routine", created["title"])
	require.Equal(t, "calm", created["mood"])

	t.Log("=== Listing Journal Entries ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/journal/", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	t.Log("=== Fetching Journal Entry ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/journal/"+entryId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	fetched := setup.ParseJSONResponse(t, resp)
	body, ok := fetched["body"].(map[string]interface{})
	require.True(t, ok, "body should round-trip as a JSON object")
	require.Contains(t, body, "steps")

	t.Log("=== Updating Journal Entry ===")
	updateBody := []byte(`{"title":"Evening routine","body":{"steps":["cleanser","retinol"]},"mood":"tired"}`)
	req = setup.CreateAuthRequest(http.MethodPut, "/api/journal/"+entryId, updateBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	updated := setup.ParseJSONResponse(t, resp)
	require.Equal(t, "Evening routine", updated["title"])
	require.Equal(t, "tired", updated["mood"])

	t.Log("=== Validation: Empty Title Rejected ===")
	badBody := []byte(`{"title":"","body":{}}`)
	req = setup.CreateAuthRequest(http.MethodPost, "/api/journal/", badBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	errResp := setup.ParseErrorResponse(t, setup.ParseJSONResponse(t, resp))
	require.Equal(t, "title", errResp.Param)

	t.Log("=== Another User Cannot Read The Entry ===")
	otherToken := setup.SignupUser(t, app, infra.MailhogURL, "journal2@example.com", "Other Tester")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/journal/"+entryId, nil, otherToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)

	t.Log("=== Deleting Journal Entry ===")
	req = setup.CreateAuthRequest(http.MethodDelete, "/api/journal/"+entryId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/journal/"+entryId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)
}
