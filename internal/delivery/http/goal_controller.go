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

type GoalController struct {
	GoalUsecase *usecase.GoalUsecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func NewGoalController(goalUsecase *usecase.GoalUsecase, zap *zap.Logger, koanf *koanf.Koanf) *GoalController {
	return &GoalController{
		GoalUsecase: goalUsecase,
		Log:         zap,
		Config:      koanf,
	}
}

func parseGoalId(ctx *fiber.Ctx) (uuid.UUID, error) {
	goalId, err := uuid.Parse(ctx.Params("goalId"))
	if err != nil {
		return uuid.Nil, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid goal id",
			Param:   "goalId",
		}
	}

	return goalId, nil
}

func (controller GoalController) CreateGoal(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.GoalCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.GoalUsecase.CreateGoal(ctx, userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller GoalController) ListGoals(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError

	response, err := controller.GoalUsecase.ListGoals(ctx, userId, ctx.Query("status"))
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller GoalController) GetGoal(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	goalId, err := parseGoalId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var validationErr *model.ValidationError

	response, err := controller.GoalUsecase.GetGoal(ctx, userId, goalId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller GoalController) UpdateGoalStatus(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	goalId, err := parseGoalId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var payload model.GoalStatusUpdateRequest
	err = util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.GoalUsecase.UpdateGoalStatus(ctx, userId, goalId, payload)
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

func (controller GoalController) DeleteGoal(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	goalId, err := parseGoalId(ctx)
	if err != nil {
		return util.SendErrorResponse(ctx, err)
	}

	var validationErr *model.ValidationError

	err = controller.GoalUsecase.DeleteGoal(ctx, userId, goalId)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponseNotFound(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
