package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/fadhilmaulana/glowcoach/internal/observability"
	"github.com/fadhilmaulana/glowcoach/internal/repository"
	"github.com/fadhilmaulana/glowcoach/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type PhotoUsecase struct {
	PhotoRepository *repository.PhotoRepository
	DB              *pgxpool.Pool
	Log             *zap.Logger
	Config          *koanf.Koanf
}

func NewPhotoUsecase(photoRepository *repository.PhotoRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *PhotoUsecase {
	return &PhotoUsecase{
		PhotoRepository: photoRepository,
		DB:              db,
		Log:             zap,
		Config:          koanf,
	}
}

func (usecase *PhotoUsecase) monthlyLimit() int {
	limit := usecase.Config.Int("PHOTO_MONTHLY_LIMIT")
	if limit <= 0 {
		limit = constant.DEFAULT_PHOTO_MONTHLY_LIMIT
	}

	return limit
}

func (usecase *PhotoUsecase) toPhotoResponse(photo model.Photo) model.PhotoResponse {
	MINIO_URL := usecase.Config.String("MINIO_URL")
	MINIO_HTTP := usecase.Config.String("MINIO_HTTP")

	return model.PhotoResponse{
		Id:           photo.Id,
		Url:          fmt.Sprintf("%s%s/%s/%s", MINIO_HTTP, MINIO_URL, photo.Bucket, photo.ObjectKey),
		Size:         photo.Size,
		MimeType:     photo.MimeType,
		Width:        photo.Width,
		Height:       photo.Height,
		WeekNumber:   photo.WeekNumber,
		Feedback:     photo.Feedback,
		Status:       photo.Status,
		OriginalName: photo.OriginalName,
		Label:        util.FormatPhotoLabel(photo.UploadedAt),
		UploadedAt:   photo.UploadedAt,
	}
}

// RequestUpload issues a presigned PUT url and a photo id. The id is the
// only join key the client hands back at confirm time; until then the
// upload exists solely as a redis reservation with the same TTL as the url.
func (usecase *PhotoUsecase) RequestUpload(ctx *fiber.Ctx, userId uuid.UUID, payload model.PhotoPresignRequest) (model.PhotoPresignResponse, error) {
	ctxContext := ctx.Context()

	response := model.PhotoPresignResponse{}

	if !util.AllowedImageTypes[payload.Mime] {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Mime type is not a supported image type",
			Param:   "mime",
		}
	}

	extension := strings.ToLower(strings.TrimPrefix(payload.Extension, "."))
	if !util.AllowedImageExtensions["."+extension] {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Extension is not a supported image extension",
			Param:   "extension",
		}
	}

	if payload.Bytes <= 0 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Bytes is required to be greater than zero",
			Param:   "bytes",
		}
	} else if payload.Bytes > constant.MAX_FILE_SIZE {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Image size exceeded %dMB limit", constant.MAX_FILE_SIZE/(1024*1024)),
			Param:   "bytes",
		}
	}

	// Advisory check against committed rows. The authoritative check runs
	// inside the confirm transaction; this one just fails fast.
	now := time.Now().UTC()
	uploaded, err := usecase.PhotoRepository.CountMonthlyUploads(ctxContext, userId, util.MonthStart(now), now)
	if err != nil {
		return response, err
	}

	limit := usecase.monthlyLimit()
	if uploaded >= limit {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Monthly photo limit of %d reached", limit),
		}
	}

	photoId := uuid.New()
	objectKey := fmt.Sprintf("progress/%s/%s.%s", userId, photoId, extension)
	bucketName := usecase.Config.String("MINIO_BUCKET_NAME")

	uploadUrl, err := usecase.PhotoRepository.PresignUpload(ctxContext, bucketName, objectKey, constant.PRESIGN_EXPIRY)
	if err != nil {
		return response, err
	}

	err = usecase.PhotoRepository.SetPresignReservation(ctxContext, photoId, model.PhotoReservation{
		UserId:    userId,
		ObjectKey: objectKey,
		Mime:      payload.Mime,
		Bytes:     payload.Bytes,
	}, constant.PRESIGN_EXPIRY)
	if err != nil {
		return response, err
	}

	response.PhotoId = photoId
	response.UploadUrl = uploadUrl
	response.ObjectKey = objectKey
	response.ExpiresIn = int(constant.PRESIGN_EXPIRY.Seconds())

	return response, nil
}

// ConfirmUpload promotes a reservation into a photo row. Re-confirming an
// already confirmed photo returns the stored row unchanged.
func (usecase *PhotoUsecase) ConfirmUpload(ctx *fiber.Ctx, userId uuid.UUID, payload model.PhotoConfirmRequest) (model.PhotoResponse, error) {
	ctxContext := ctx.Context()

	response := model.PhotoResponse{}

	photoId, err := uuid.Parse(payload.PhotoId)
	if err != nil {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid photo id",
			Param:   "photoId",
		}
	}

	existing, err := usecase.PhotoRepository.GetPhoto(ctxContext, photoId, userId)
	if err == nil {
		return usecase.toPhotoResponse(existing), nil
	}

	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		return response, err
	}

	reservation, err := usecase.PhotoRepository.GetPresignReservation(ctxContext, photoId)
	if err != nil {
		return response, err
	}

	if len(reservation) == 0 {
		return response, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Upload reservation is expired or not exists",
			Param:   "photoId",
		}
	}

	if reservation["user_id"] != userId.String() {
		return response, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Upload reservation is expired or not exists",
			Param:   "photoId",
		}
	}

	objectKey := reservation["object_key"]
	bucketName := usecase.Config.String("MINIO_BUCKET_NAME")

	found, objectSize, err := usecase.PhotoRepository.StatUploadedObject(ctxContext, bucketName, objectKey)
	if err != nil {
		return response, err
	}

	if !found {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Object has not been uploaded to storage yet",
			Param:   "photoId",
		}
	}

	// the declared size at presign is not trusted; the stored object is
	if objectSize > constant.MAX_FILE_SIZE {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Uploaded object exceeds the maximum allowed size",
			Param:   "bytes",
		}
	}

	now := time.Now().UTC()

	var originalName *string
	if payload.OriginalName != "" {
		originalName = &payload.OriginalName
	}

	photo := model.Photo{
		Id:             photoId,
		UserId:         userId,
		Bucket:         bucketName,
		ObjectKey:      objectKey,
		Size:           objectSize,
		MimeType:       reservation["mime"],
		Width:          payload.Width,
		Height:         payload.Height,
		WeekNumber:     payload.WeekNumber,
		Feedback:       nil,
		Status:         model.PhotoStatusUploaded,
		OriginalName:   originalName,
		UploadedAt:     now,
		CreateDatetime: now,
		UpdateDatetime: now,
	}

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return response, err
	}

	defer tx.Rollback(ctxContext)

	// Authoritative quota check. The advisory lock serializes confirms for
	// the same user, so the loser sees the winner's committed row.
	err = usecase.PhotoRepository.LockUserUploads(ctxContext, tx, userId)
	if err != nil {
		return response, err
	}

	uploaded, err := usecase.PhotoRepository.CountMonthlyUploadsTx(ctxContext, tx, userId, util.MonthStart(now), now)
	if err != nil {
		return response, err
	}

	limit := usecase.monthlyLimit()
	if uploaded >= limit {
		err = usecase.PhotoRepository.DeletePresignReservation(ctxContext, photoId)
		if err != nil {
			observability.WithContext(ctxContext, usecase.Log).Warn("failed to delete presign reservation", zap.String("photoId", photoId.String()), zap.Error(err))
		}

		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Monthly photo limit of %d reached", limit),
		}
	}

	err = usecase.PhotoRepository.CreatePhoto(ctxContext, tx, photo)
	if err != nil {
		return response, err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return response, err
	}

	err = usecase.PhotoRepository.DeletePresignReservation(ctxContext, photoId)
	if err != nil {
		observability.WithContext(ctxContext, usecase.Log).Warn("failed to delete presign reservation", zap.String("photoId", photoId.String()), zap.Error(err))
	}

	return usecase.toPhotoResponse(photo), nil
}

func (usecase *PhotoUsecase) GetPhoto(ctx *fiber.Ctx, userId uuid.UUID, photoId uuid.UUID) (model.PhotoResponse, error) {
	photo, err := usecase.PhotoRepository.GetPhoto(ctx.Context(), photoId, userId)
	if err != nil {
		return model.PhotoResponse{}, err
	}

	return usecase.toPhotoResponse(photo), nil
}

func (usecase *PhotoUsecase) ListPhotos(ctx *fiber.Ctx, userId uuid.UUID, weekNumber *int, limit int, offset int) ([]model.PhotoResponse, error) {
	if limit <= 0 {
		limit = constant.DEFAULT_PAGE_LIMIT
	} else if limit > constant.MAX_PAGE_LIMIT {
		limit = constant.MAX_PAGE_LIMIT
	}

	if offset < 0 {
		offset = 0
	}

	photos, err := usecase.PhotoRepository.ListPhotos(ctx.Context(), userId, weekNumber, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]model.PhotoResponse, 0, len(photos))
	for _, photo := range photos {
		responses = append(responses, usecase.toPhotoResponse(photo))
	}

	return responses, nil
}

func (usecase *PhotoUsecase) GetMonthlyQuota(ctx *fiber.Ctx, userId uuid.UUID) (model.MonthlyQuotaResponse, error) {
	now := time.Now().UTC()

	uploaded, err := usecase.PhotoRepository.CountMonthlyUploads(ctx.Context(), userId, util.MonthStart(now), now)
	if err != nil {
		return model.MonthlyQuotaResponse{}, err
	}

	limit := usecase.monthlyLimit()

	return model.MonthlyQuotaResponse{
		Uploaded:  uploaded,
		Limit:     limit,
		Remaining: util.RemainingQuota(uploaded, limit),
		MonthName: now.Format("January 2006"),
	}, nil
}

func (usecase *PhotoUsecase) UpdateFeedback(ctx *fiber.Ctx, userId uuid.UUID, photoId uuid.UUID, payload model.PhotoFeedbackRequest) error {
	if len(payload.Feedback) > 2000 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Feedback must be at most 2000 characters",
			Param:   "feedback",
		}
	}

	var feedback *string
	if payload.Feedback != "" {
		feedback = &payload.Feedback
	}

	now := time.Now().UTC()

	err := usecase.PhotoRepository.UpdateFeedback(ctx.Context(), photoId, userId, feedback, now)
	if err != nil {
		return err
	}

	return nil
}

// DeletePhoto removes the row first, then the object. An object orphaned
// by a failed RemoveObject is acceptable; a dangling row pointing at a
// deleted object is not.
func (usecase *PhotoUsecase) DeletePhoto(ctx *fiber.Ctx, userId uuid.UUID, photoId uuid.UUID) error {
	ctxContext := ctx.Context()

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return err
	}

	defer tx.Rollback(ctxContext)

	objectKey, err := usecase.PhotoRepository.GetPhotoObjectKey(ctxContext, tx, photoId, userId)
	if err != nil {
		return err
	}

	err = usecase.PhotoRepository.DeletePhoto(ctxContext, tx, photoId, userId)
	if err != nil {
		return err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return err
	}

	bucketName := usecase.Config.String("MINIO_BUCKET_NAME")
	err = usecase.PhotoRepository.RemovePhotoObject(ctxContext, bucketName, objectKey)
	if err != nil {
		observability.WithContext(ctxContext, usecase.Log).Warn("failed to remove photo object", zap.String("objectKey", objectKey), zap.Error(err))
	}

	return nil
}
