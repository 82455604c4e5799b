package http

import (
	"errors"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/fadhilmaulana/glowcoach/internal/usecase"
	"github.com/fadhilmaulana/glowcoach/internal/util"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type JournalController struct {
	JournalUsecase *usecase.JournalUsecase
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewJournalController(journalUsecase *usecase.JournalUsecase, zap *zap.Logger, koanf *koanf.Koanf) *JournalController {
	return &JournalController{
		JournalUsecase: journalUsecase,
		Log:            zap,
		Config:         koanf,
	}
}

func parseEntryId(ctx *fiber.Ctx) (uuid.UUID, error) {
	entryId, err := uuid.Parse(ctx.Params("entryId"))
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid entry id",
			Param:   "entryId",
		}
	}

	return entryId, nil
}

func (controller JournalController) CreateEntry(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.JournalEntryCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.JournalUsecase.CreateEntry(ctx, userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller JournalController) ListEntries(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	limit := ctx.QueryInt("limit", constant.DEFAULT_PAGE_LIMIT)
	offset := ctx.QueryInt("offset", 0)

	response, err := controller.JournalUsecase.ListEntries(ctx, userId, limit, offset)
	if err != nil {
		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller JournalController) GetEntry(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	entryId, err := parseEntryId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var validationErr *model.ValidationError

	response, err := controller.JournalUsecase.GetEntry(ctx, userId, entryId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller JournalController) UpdateEntry(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	entryId, err := parseEntryId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var payload model.JournalEntryUpdateRequest
	err = util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.JournalUsecase.UpdateEntry(ctx, userId, entryId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			if validationErr.Code == constant.ERR_NOT_FOUND_ERROR {
				return util.SendErrorResponseNotFound(ctx, err)
			}
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller JournalController) DeleteEntry(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	entryId, err := parseEntryId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var validationErr *model.ValidationError

	err = controller.JournalUsecase.DeleteEntry(ctx, userId, entryId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
