package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/fadhilmaulana/glowcoach/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// TestHealthCheck tests the health check endpoint
func TestHealthCheck(t *testing.T) {
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

	app, _, _, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)

	req := setup.CreateJSONRequest(http.MethodGet, "/api/health", nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
}

// TestCompleteSignupFlow tests the entire signup flow including code verification
func TestCompleteSignupFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("=== Starting Test Infrastructure ===")
	infra, err := setup.StartInfra(ctx, t)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = infra.Terminate(ctx, t)
	})

	t.Log("=== Running Database Migrations ===")
	err = setup.RunMigration(infra.PgURL, t)
	require.NoError(t, err)

	t.Log("=== Setting Up Test Application ===")
	app, db, _, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)

	t.Cleanup(func() {
		setup.TruncateAllTables(t, db, ctx)
	})

	testEmail := "completesignup@example.com"

	t.Log("=== Testing Complete Signup Flow ===")
	accessToken := setup.SignupUser(t, app, infra.MailhogURL, testEmail, "Signup Tester")

	// Token should open protected routes
	req := setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, accessToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	result := setup.ParseJSONResponse(t, resp)
	require.Equal(t, testEmail, result["email"])
	require.Equal(t, "Signup Tester", result["fullname"])
	require.Equal(t, "UTC", result["timezone"])
	require.Nil(t, result["skinType"])

	// Signing up again with the same email must fail at start
	startBody := []byte(fmt.Sprintf(`{"email":%q,"fullname":"Another Name"}`, testEmail))
	req = setup.CreateJSONRequest(http.MethodPost, "/api/auth/signup/start", startBody)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	errResp := setup.ParseErrorResponse(t, setup.ParseJSONResponse(t, resp))
	require.Equal(t, "VALIDATION_ERROR", errResp.Code)
	require.Equal(t, "email", errResp.Param)
}

// TestCompleteLoginFlow tests login with a verification code for an existing user
func TestCompleteLoginFlow(t *testing.T) {
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

	testEmail := "loginflow@example.com"
	_ = setup.SignupUser(t, app, infra.MailhogURL, testEmail, "Login Tester")

	t.Log("=== Testing Login Start ===")
	setup.ClearMailhog(t, infra.MailhogURL)

	startBody := []byte(fmt.Sprintf(`{"email":%q}`, testEmail))
	req := setup.CreateJSONRequest(http.MethodPost, "/api/auth/login/start", startBody)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	startResult := setup.ParseJSONResponse(t, resp)
	sessionId, ok := startResult["sessionId"].(string)
	require.True(t, ok, "login start response should contain sessionId")

	code := setup.GetCodeFromMailhog(t, infra.MailhogURL, testEmail)

	t.Log("=== Testing Login Verify ===")
	verifyBody := []byte(fmt.Sprintf(`{"sessionId":%q,"code":%q}`, sessionId, code))
	req = setup.CreateJSONRequest(http.MethodPost, "/api/auth/login/verify", verifyBody)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	verifyResult := setup.ParseJSONResponse(t, resp)
	accessToken, ok := verifyResult["accessToken"].(string)
	require.True(t, ok)
	require.NotEmpty(t, accessToken)

	t.Log("=== Testing Wrong Code Rejection ===")
	req = setup.CreateJSONRequest(http.MethodPost, "/api/auth/login/start", startBody)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	startResult = setup.ParseJSONResponse(t, resp)
	sessionId, _ = startResult["sessionId"].(string)

	verifyBody = []byte(fmt.Sprintf(`{"sessionId":%q,"code":"000000"}`, sessionId))
	req = setup.CreateJSONRequest(http.MethodPost, "/api/auth/login/verify", verifyBody)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	t.Log("=== Testing Login With Unknown Email ===")
	startBody = []byte(`{"email":"nobody@example.com"}`)
	req = setup.CreateJSONRequest(http.MethodPost, "/api/auth/login/start", startBody)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)
}

// TestLogoutRevokesToken verifies a logged-out token no longer opens protected routes
func TestLogoutRevokesToken(t *testing.T) {
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

	accessToken := setup.SignupUser(t, app, infra.MailhogURL, "logout@example.com", "Logout Tester")

	req := setup.CreateAuthRequest(http.MethodPost, "/api/users/logout", nil, accessToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/users/me", nil, accessToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)

	// No token at all is rejected too
	req = setup.CreateJSONRequest(http.MethodGet, "/api/users/me", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.NotEqual(t, 200, resp.StatusCode)
}

// TestAuthRateLimit verifies the stricter limiter on the auth endpoints
func TestAuthRateLimit(t *testing.T) {
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

	body := []byte(`{"email":"nobody@example.com"}`)

	for i := 0; i < 10; i++ {
		req := setup.CreateJSONRequest(http.MethodPost, "/api/auth/login/start", body)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.NotEqual(t, 429, resp.StatusCode, "attempt %d should still pass the limiter", i+1)
	}

	req := setup.CreateJSONRequest(http.MethodPost, "/api/auth/login/start", body)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 429, resp.StatusCode, "attempt 11 must be throttled")
}
