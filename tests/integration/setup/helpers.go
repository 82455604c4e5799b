package setup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TruncateAllTables truncates all tables in correct order (children first, then parents)
func TruncateAllTables(t *testing.T, db *pgxpool.Pool, ctx context.Context) {
	t.Log("Truncating all database tables...")

	tables := []string{
		"goals",
		"journal_entries",
		"photos",
		"user_avatar_images",
		"users",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}

	t.Log("All database tables truncated successfully")
}

// CreateJSONRequest creates a test request with JSON body
func CreateJSONRequest(method, url string, jsonBody []byte) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthRequest creates a test request with JSON body and Authorization header
func CreateAuthRequest(method, url string, jsonBody []byte, token string) *http.Request {
	req := CreateJSONRequest(method, url, jsonBody)
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	return req
}

// ParseJSONResponse helper to parse JSON response body
func ParseJSONResponse(t *testing.T, resp *http.Response) map[string]interface{} {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NotEmpty(t, body, "response body should not be empty")

	var result map[string]interface{}
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "failed to parse JSON response")

	return result
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// ParseErrorResponse parses error response into ErrorResponse struct
func ParseErrorResponse(t *testing.T, result map[string]interface{}) ErrorResponse {
	require.Contains(t, result, "error", "response should contain error field")

	errObj, ok := result["error"].(map[string]interface{})
	require.True(t, ok, "error field should be an object")

	errResp := ErrorResponse{}

	if code, ok := errObj["code"].(string); ok {
		errResp.Code = code
	}
	if message, ok := errObj["message"].(string); ok {
		errResp.Message = message
	}
	if param, ok := errObj["param"].(string); ok {
		errResp.Param = param
	}

	return errResp
}

// ClearMailhog deletes all stored messages so the next code lookup cannot
// match a stale email
func ClearMailhog(t *testing.T, mailhogURL string) {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/messages", mailhogURL), nil)
	require.NoError(t, err, "failed to build mailhog delete request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "failed to clear mailhog messages")
	_ = resp.Body.Close()
}

// GetCodeFromMailhog polls the MailHog API for the verification code sent
// to the given address
func GetCodeFromMailhog(t *testing.T, mailhogURL, email string) string {
	t.Logf("Fetching verification code from MailHog for email: %s", email)

	apiURL := fmt.Sprintf("%s/api/v1/messages", mailhogURL)
	codePattern := regexp.MustCompile(`(\d{6})`)

	maxAttempts := 10

	for i := 0; i < maxAttempts; i++ {
		// #nosec G107 -- apiURL is a trusted localhost test server (MailHog)
		resp, err := http.Get(apiURL)
		require.NoError(t, err, "failed to fetch messages from MailHog")

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.NoError(t, err, "failed to read MailHog response")

		var rawMessages []map[string]interface{}
		err = json.Unmarshal(body, &rawMessages)
		require.NoError(t, err, "failed to parse MailHog JSON response")

		for _, rawMsg := range rawMessages {
			content, ok := rawMsg["Content"].(map[string]interface{})
			if !ok {
				continue
			}

			// Only look at messages addressed to this recipient
			recipientMatch := false
			if headers, ok := content["Headers"].(map[string]interface{}); ok {
				if toList, ok := headers["To"].([]interface{}); ok {
					for _, to := range toList {
						if toStr, ok := to.(string); ok && toStr == email {
							recipientMatch = true
						}
					}
				}
			}
			if !recipientMatch {
				continue
			}

			emailBody, ok := content["Body"].(string)
			if !ok || emailBody == "" {
				continue
			}

			matches := codePattern.FindStringSubmatch(emailBody)
			if len(matches) > 1 {
				t.Logf("Verification code extracted: %s", matches[1])
				return matches[1]
			}
		}

		if i < maxAttempts-1 {
			time.Sleep(500 * time.Millisecond)
		}
	}

	require.Fail(t, "verification code not found in mailhog", "email: %s", email)
	return ""
}

// SignupUser runs the full passwordless signup flow and returns the access token
func SignupUser(t *testing.T, app *fiber.App, mailhogURL, email, fullname string) string {
	ClearMailhog(t, mailhogURL)

	startBody := []byte(fmt.Sprintf(`{"email":%q,"fullname":%q}`, email, fullname))
	req := CreateJSONRequest(http.MethodPost, "/api/auth/signup/start", startBody)

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "signup start request should succeed")
	require.Equal(t, 200, resp.StatusCode, "signup start should return 200")

	startResult := ParseJSONResponse(t, resp)
	sessionId, ok := startResult["sessionId"].(string)
	require.True(t, ok, "signup start response should contain sessionId")

	code := GetCodeFromMailhog(t, mailhogURL, email)

	verifyBody := []byte(fmt.Sprintf(`{"sessionId":%q,"code":%q}`, sessionId, code))
	req = CreateJSONRequest(http.MethodPost, "/api/auth/signup/verify", verifyBody)

	resp, err = app.Test(req, -1)
	require.NoError(t, err, "signup verify request should succeed")
	require.Equal(t, 200, resp.StatusCode, "signup verify should return 200")

	verifyResult := ParseJSONResponse(t, resp)
	accessToken, ok := verifyResult["accessToken"].(string)
	require.True(t, ok, "signup verify response should contain accessToken")
	require.NotEmpty(t, accessToken, "accessToken should not be empty")

	return accessToken
}

// GenerateRandomString generates a random string of specified length
// Uses lowercase letters and numbers for test data generation
func GenerateRandomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		// #nosec G404 -- Weak randomness is acceptable for non-security test data
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
