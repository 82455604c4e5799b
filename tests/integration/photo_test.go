package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/fadhilmaulana/glowcoach/tests/integration/setup"
	"github.com/stretchr/testify/require"
)

// uploadToPresignedURL PUTs raw bytes to the presigned url the way a browser would
func uploadToPresignedURL(t *testing.T, uploadUrl string, data []byte) {
	req, err := http.NewRequest(http.MethodPut, uploadUrl, bytes.NewReader(data))
	require.NoError(t, err, "failed to build presigned PUT request")
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "presigned PUT should succeed")
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, 200, resp.StatusCode, "object storage should accept the upload")
}

// TestPhotoUploadFlow runs the full presign, upload, confirm, list, quota cycle
func TestPhotoUploadFlow(t *testing.T) {
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

	err = setup.RunMigration(infra.PgURL, t)
	require.NoError(t, err)

	app, db, _, _ := setup.SetupTestApp(t, infra.PgURL, infra.RedisURL, infra.MinioURL, infra.MailhogSMTP)

	t.Cleanup(func() {
		setup.TruncateAllTables(t, db, ctx)
	})

	token := setup.SignupUser(t, app, infra.MailhogURL, "photoflow@example.com", "Photo Tester")

	imageData := []byte("fake-jpeg-bytes-for-progress-photo")

	t.Log("=== Requesting Presigned Upload ===")
	reqBody := []byte(fmt.Sprintf(`{"mime":"image/jpeg","extension":"jpg","bytes":%d}`, len(imageData)))
	req := setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", reqBody, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	presignResult := setup.ParseJSONResponse(t, resp)
	photoId := presignResult["photoId"].(string)
	uploadUrl := presignResult["uploadUrl"].(string)
	objectKey := presignResult["objectKey"].(string)
	require.NotEmpty(t, photoId)
	require.Contains(t, objectKey, photoId, "object key should embed the photo id")
	require.Greater(t, presignResult["expiresIn"].(float64), float64(0))

	t.Log("=== Uploading Bytes To Presigned URL ===")
	uploadToPresignedURL(t, uploadUrl, imageData)

	t.Log("=== Confirming Upload ===")
	confirmBody := []byte(fmt.Sprintf(`{"photoId":%q,"bytes":%d,"width":1080,"height":1440,"weekNumber":3,"originalName":"selfie.jpg"}`, photoId, len(imageData)))
	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	confirmResult := setup.ParseJSONResponse(t, resp)
	require.Equal(t, photoId, confirmResult["id"])
	require.Equal(t, "uploaded", confirmResult["status"])
	require.Equal(t, float64(len(imageData)), confirmResult["bytes"], "size should come from object storage, not the client")
	require.Equal(t, float64(3), confirmResult["weekNumber"])
	require.Equal(t, "selfie.jpg", confirmResult["originalName"])
	require.NotEmpty(t, confirmResult["label"], "confirm response should carry a display label")
	require.NotEmpty(t, confirmResult["url"])

	t.Log("=== Confirming Again (Idempotent) ===")
	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	repeatResult := setup.ParseJSONResponse(t, resp)
	require.Equal(t, photoId, repeatResult["id"], "re-confirm should return the same photo")

	t.Log("=== Fetching Photo By Id ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/"+photoId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	t.Log("=== Listing Photos ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	t.Log("=== Checking Monthly Quota ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/quota", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	quotaResult := setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(1), quotaResult["uploaded"], "re-confirm must not double count")
	require.Equal(t, float64(2), quotaResult["limit"])
	require.Equal(t, float64(1), quotaResult["remaining"])
	require.NotEmpty(t, quotaResult["monthName"])

	t.Log("=== Updating Feedback ===")
	feedbackBody := []byte(`{"feedback":"Texture looks smoother around the cheeks this week."}`)
	req = setup.CreateAuthRequest(http.MethodPut, "/api/photos/"+photoId+"/feedback", feedbackBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/"+photoId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	photoResult := setup.ParseJSONResponse(t, resp)
	require.Equal(t, "Texture looks smoother around the cheeks this week.", photoResult["feedback"])

	t.Log("=== Deleting Photo ===")
	req = setup.CreateAuthRequest(http.MethodDelete, "/api/photos/"+photoId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/"+photoId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)

	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/quota", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	quotaResult = setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(0), quotaResult["uploaded"], "deleting frees the quota slot")
}

// TestPhotoMonthlyQuotaEnforced verifies the third upload in a month is rejected
func TestPhotoMonthlyQuotaEnforced(t *testing.T) {
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

	token := setup.SignupUser(t, app, infra.MailhogURL, "quota@example.com", "Quota Tester")

	imageData := []byte("fake-jpeg-bytes")

	for i := 0; i < 2; i++ {
		t.Logf("=== Uploading Photo %d ===", i+1)
		reqBody := []byte(fmt.Sprintf(`{"mime":"image/jpeg","extension":"jpg","bytes":%d}`, len(imageData)))
		req := setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", reqBody, token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		presignResult := setup.ParseJSONResponse(t, resp)
		photoId := presignResult["photoId"].(string)
		uploadUrl := presignResult["uploadUrl"].(string)

		uploadToPresignedURL(t, uploadUrl, imageData)

		confirmBody := []byte(fmt.Sprintf(`{"photoId":%q,"bytes":%d}`, photoId, len(imageData)))
		req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, token)
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
	}

	t.Log("=== Third Presign Must Be Rejected ===")
	reqBody := []byte(fmt.Sprintf(`{"mime":"image/jpeg","extension":"jpg","bytes":%d}`, len(imageData)))
	req := setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", reqBody, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	errResp := setup.ParseErrorResponse(t, setup.ParseJSONResponse(t, resp))
	require.Equal(t, "VALIDATION_ERROR", errResp.Code)
	require.Contains(t, errResp.Message, "limit")
	require.Empty(t, errResp.Param, "quota exhaustion is not a field error")

	t.Log("=== Quota Shows Zero Remaining ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/quota", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	quotaResult := setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(2), quotaResult["uploaded"])
	require.Equal(t, float64(0), quotaResult["remaining"])
}

// TestPhotoConfirmValidation covers confirm calls that must not create rows
func TestPhotoConfirmValidation(t *testing.T) {
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

	token := setup.SignupUser(t, app, infra.MailhogURL, "confirmvalidation@example.com", "Confirm Tester")

	t.Log("=== Confirm Without Prior Presign ===")
	confirmBody := []byte(`{"photoId":"6fa459ea-ee8a-3ca4-894e-db77e160355e","bytes":10}`)
	req := setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)

	t.Log("=== Confirm Before Object Is Uploaded ===")
	reqBody := []byte(`{"mime":"image/jpeg","extension":"jpg","bytes":10}`)
	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", reqBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	presignResult := setup.ParseJSONResponse(t, resp)
	photoId := presignResult["photoId"].(string)

	confirmBody = []byte(fmt.Sprintf(`{"photoId":%q,"bytes":10}`, photoId))
	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	t.Log("=== Another User Cannot Confirm The Reservation ===")
	otherToken := setup.SignupUser(t, app, infra.MailhogURL, "intruder@example.com", "Intruder")

	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, otherToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode)

	t.Log("=== Presign Rejects Bad Payloads ===")
	badPayloads := []string{
		`{"mime":"application/pdf","extension":"pdf","bytes":10}`,
		`{"mime":"image/jpeg","extension":"exe","bytes":10}`,
		`{"mime":"image/jpeg","extension":"jpg","bytes":0}`,
		`{"mime":"image/jpeg","extension":"jpg","bytes":999999999}`,
	}

	for _, payload := range badPayloads {
		req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", []byte(payload), token)
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, 400, resp.StatusCode, "payload should be rejected: %s", payload)
	}

	t.Log("=== Declared Size Cannot Hide An Oversized Object ===")
	reqBody = []byte(`{"mime":"image/jpeg","extension":"jpg","bytes":10}`)
	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", reqBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	presignResult = setup.ParseJSONResponse(t, resp)
	oversizedId := presignResult["photoId"].(string)
	uploadUrl := presignResult["uploadUrl"].(string)

	uploadToPresignedURL(t, uploadUrl, bytes.Repeat([]byte("x"), 10*1024*1024+1))

	confirmBody = []byte(fmt.Sprintf(`{"photoId":%q,"bytes":10}`, oversizedId))
	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode, "stored size is checked, not the declared one")

	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/"+oversizedId, nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 404, resp.StatusCode, "rejected confirm must not persist a row")
}

// TestPhotoConcurrentConfirmsRespectQuota races two confirms for the last
// remaining slot; the per-user lock must let exactly one through
func TestPhotoConcurrentConfirmsRespectQuota(t *testing.T) {
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

	token := setup.SignupUser(t, app, infra.MailhogURL, "racer@example.com", "Race Tester")

	imageData := []byte("fake-jpeg-bytes")

	t.Log("=== Taking The First Slot ===")
	reqBody := []byte(fmt.Sprintf(`{"mime":"image/jpeg","extension":"jpg","bytes":%d}`, len(imageData)))
	req := setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", reqBody, token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	presignResult := setup.ParseJSONResponse(t, resp)
	uploadToPresignedURL(t, presignResult["uploadUrl"].(string), imageData)

	confirmBody := []byte(fmt.Sprintf(`{"photoId":%q,"bytes":%d}`, presignResult["photoId"].(string), len(imageData)))
	req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", confirmBody, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	t.Log("=== Two Presigns Compete For The Last Slot ===")
	photoIds := make([]string, 2)
	for i := range photoIds {
		req = setup.CreateAuthRequest(http.MethodPost, "/api/photos/presign", reqBody, token)
		resp, err = app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		presignResult = setup.ParseJSONResponse(t, resp)
		photoIds[i] = presignResult["photoId"].(string)
		uploadToPresignedURL(t, presignResult["uploadUrl"].(string), imageData)
	}

	t.Log("=== Confirming Both At Once ===")
	statuses := make([]int, 2)
	confirmErrs := make([]error, 2)

	var wg sync.WaitGroup
	for i, photoId := range photoIds {
		wg.Add(1)
		go func(i int, photoId string) {
			defer wg.Done()

			body := []byte(fmt.Sprintf(`{"photoId":%q,"bytes":%d}`, photoId, len(imageData)))
			confirmReq := setup.CreateAuthRequest(http.MethodPost, "/api/photos/confirm", body, token)
			confirmResp, confirmErr := app.Test(confirmReq, -1)
			if confirmErr != nil {
				confirmErrs[i] = confirmErr
				return
			}
			statuses[i] = confirmResp.StatusCode
		}(i, photoId)
	}
	wg.Wait()

	require.NoError(t, confirmErrs[0])
	require.NoError(t, confirmErrs[1])
	require.ElementsMatch(t, []int{200, 400}, statuses, "only one confirm may take the last slot")

	t.Log("=== Quota Holds At The Limit ===")
	req = setup.CreateAuthRequest(http.MethodGet, "/api/photos/quota", nil, token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	quotaResult := setup.ParseJSONResponse(t, resp)
	require.Equal(t, float64(2), quotaResult["uploaded"])
	require.Equal(t, float64(0), quotaResult["remaining"])
}
