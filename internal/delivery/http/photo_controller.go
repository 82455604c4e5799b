package http

import (
	"errors"
	"strconv"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/middleware"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/fadhilmaulana/glowcoach/internal/usecase"
	"github.com/fadhilmaulana/glowcoach/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type PhotoController struct {
	PhotoUsecase *usecase.PhotoUsecase
	Log          *zap.Logger
	Config       *koanf.Koanf
}

func NewPhotoController(photoUsecase *usecase.PhotoUsecase, zap *zap.Logger, koanf *koanf.Koanf) *PhotoController {
	return &PhotoController{
		PhotoUsecase: photoUsecase,
		Log:          zap,
		Config:       koanf,
	}
}

func parsePhotoId(ctx *fiber.Ctx) (uuid.UUID, error) {
	photoId, err := uuid.Parse(ctx.Params("photoId"))
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid photo id",
			Param:   "photoId",
		}
	}

	return photoId, nil
}

// sendPhotoError maps a validation error to 404 when it carries the
// not-found code, 400 otherwise.
func sendPhotoError(ctx *fiber.Ctx, err error, validationErr *model.ValidationError) error {
	if validationErr.Code == constant.ERR_NOT_FOUND_ERROR {
		return util.SendErrorResponseNotFound(ctx, err)
	}

	return util.SendErrorResponse(ctx, err)
}

func (controller PhotoController) RequestUpload(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.PhotoPresignRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.PhotoUsecase.RequestUpload(ctx, userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller PhotoController) ConfirmUpload(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.PhotoConfirmRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.PhotoUsecase.ConfirmUpload(ctx, userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return sendPhotoError(ctx, err, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	middleware.GetLoggerFromContext(ctx).Info("photo upload confirmed", zap.String("photoId", response.Id.String()))

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller PhotoController) ListPhotos(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var weekNumber *int
	if raw := ctx.Query("weekNumber"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return util.SendErrorResponse(ctx, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Week number must be an integer",
				Param:   "weekNumber",
			})
		}
		weekNumber = &parsed
	}

	limit := ctx.QueryInt("limit", constant.DEFAULT_PAGE_LIMIT)
	offset := ctx.QueryInt("offset", 0)

	var validationErr *model.ValidationError

	response, err := controller.PhotoUsecase.ListPhotos(ctx, userId, weekNumber, limit, offset)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller PhotoController) GetPhoto(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	photoId, err := parsePhotoId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var validationErr *model.ValidationError

	response, err := controller.PhotoUsecase.GetPhoto(ctx, userId, photoId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return sendPhotoError(ctx, err, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller PhotoController) GetMonthlyQuota(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	response, err := controller.PhotoUsecase.GetMonthlyQuota(ctx, userId)
	if err != nil {
		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller PhotoController) UpdateFeedback(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	photoId, err := parsePhotoId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var payload model.PhotoFeedbackRequest
	err = util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	err = controller.PhotoUsecase.UpdateFeedback(ctx, userId, photoId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return sendPhotoError(ctx, err, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller PhotoController) DeletePhoto(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	photoId, err := parsePhotoId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var validationErr *model.ValidationError

	err = controller.PhotoUsecase.DeletePhoto(ctx, userId, photoId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return sendPhotoError(ctx, err, validationErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
