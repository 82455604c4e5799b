package usecase

import (
	"fmt"
	"time"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/fadhilmaulana/glowcoach/internal/repository"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type GoalUsecase struct {
	GoalRepository *repository.GoalRepository
	DB             *pgxpool.Pool
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewGoalUsecase(goalRepository *repository.GoalRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *GoalUsecase {
	return &GoalUsecase{
		GoalRepository: goalRepository,
		DB:             db,
		Log:            zap,
		Config:         koanf,
	}
}

func toGoalResponse(goal model.Goal) model.GoalResponse {
	return model.GoalResponse{
		Id:             goal.Id,
		Title:          goal.Title,
		Description:    goal.Description,
		TargetDate:     goal.TargetDate,
		Status:         goal.Status,
		CompletedAt:    goal.CompletedAt,
		CreateDatetime: goal.CreateDatetime,
		UpdateDatetime: goal.UpdateDatetime,
	}
}

func (usecase *GoalUsecase) CreateGoal(ctx *fiber.Ctx, userId uuid.UUID, payload model.GoalCreateRequest) (model.GoalResponse, error) {
	response := model.GoalResponse{}

	if payload.Title == "" {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Title is required to not be empty",
			Param:   "title",
		}
	} else if len(payload.Title) > 120 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Title must be at most 120 characters",
			Param:   "title",
		}
	}

	if len(payload.Description) > 2000 {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Description must be at most 2000 characters",
			Param:   "description",
		}
	}

	var targetDate *time.Time
	if payload.TargetDate != "" {
		parsed, err := time.Parse("2006-01-02", payload.TargetDate)
		if err != nil {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Target date must be in YYYY-MM-DD format",
				Param:   "targetDate",
			}
		}
		targetDate = &parsed
	}

	var description *string
	if payload.Description != "" {
		description = &payload.Description
	}

	now := time.Now().UTC()

	goal := model.Goal{
		Id:             uuid.New(),
		UserId:         userId,
		Title:          payload.Title,
		Description:    description,
		TargetDate:     targetDate,
		Status:         model.GoalStatusActive,
		CompletedAt:    nil,
		CreateDatetime: now,
		UpdateDatetime: now,
	}

	err := usecase.GoalRepository.CreateGoal(ctx.Context(), goal)
	if err != nil {
		return response, err
	}

	return toGoalResponse(goal), nil
}

func (usecase *GoalUsecase) ListGoals(ctx *fiber.Ctx, userId uuid.UUID, status string) ([]model.GoalResponse, error) {
	var statusFilter *string
	if status != "" {
		if !model.GoalStatuses[status] {
			return nil, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Status must be one of: active, completed, abandoned",
				Param:   "status",
			}
		}
		statusFilter = &status
	}

	goals, err := usecase.GoalRepository.ListGoals(ctx.Context(), userId, statusFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]model.GoalResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, toGoalResponse(goal))
	}

	return responses, nil
}

func (usecase *GoalUsecase) GetGoal(ctx *fiber.Ctx, userId uuid.UUID, goalId uuid.UUID) (model.GoalResponse, error) {
	goal, err := usecase.GoalRepository.GetGoal(ctx.Context(), goalId, userId)
	if err != nil {
		return model.GoalResponse{}, err
	}

	return toGoalResponse(goal), nil
}

// UpdateGoalStatus moves a goal between active, completed and abandoned.
// Entering completed stamps completed_at; leaving it clears the stamp.
func (usecase *GoalUsecase) UpdateGoalStatus(ctx *fiber.Ctx, userId uuid.UUID, goalId uuid.UUID, payload model.GoalStatusUpdateRequest) (model.GoalResponse, error) {
	response := model.GoalResponse{}

	if !model.GoalStatuses[payload.Status] {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Status must be one of: active, completed, abandoned",
			Param:   "status",
		}
	}

	goal, err := usecase.GoalRepository.GetGoal(ctx.Context(), goalId, userId)
	if err != nil {
		return response, err
	}

	// completed and abandoned are terminal; the only way out is re-activation
	if goal.Status != model.GoalStatusActive && payload.Status != model.GoalStatusActive && payload.Status != goal.Status {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: fmt.Sprintf("Goal cannot move from %s to %s", goal.Status, payload.Status),
			Param:   "status",
		}
	}

	now := time.Now().UTC()

	var completedAt *time.Time
	if payload.Status == model.GoalStatusCompleted {
		completedAt = &now
		if goal.Status == model.GoalStatusCompleted {
			completedAt = goal.CompletedAt
		}
	}

	err = usecase.GoalRepository.UpdateGoalStatus(ctx.Context(), goalId, userId, payload.Status, completedAt, now)
	if err != nil {
		return response, err
	}

	goal.Status = payload.Status
	goal.CompletedAt = completedAt
	goal.UpdateDatetime = now

	return toGoalResponse(goal), nil
}

func (usecase *GoalUsecase) DeleteGoal(ctx *fiber.Ctx, userId uuid.UUID, goalId uuid.UUID) error {
	err := usecase.GoalRepository.DeleteGoal(ctx.Context(), goalId, userId)
	if err != nil {
		return err
	}

	return nil
}
