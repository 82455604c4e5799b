package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type GoalRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewGoalRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *GoalRepository {
	return &GoalRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *GoalRepository) CreateGoal(ctx context.Context, goal model.Goal) error {
	query := "INSERT INTO goals (id, user_id, title, description, target_date, status, completed_at, create_datetime, update_datetime) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)"

	_, err := repository.DB.Exec(ctx, query, goal.Id, goal.UserId, goal.Title, goal.Description, goal.TargetDate, goal.Status, goal.CompletedAt, goal.CreateDatetime, goal.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *GoalRepository) ListGoals(ctx context.Context, userId uuid.UUID, status *string) ([]model.Goal, error) {
	query := `SELECT id, user_id, title, description, target_date, status, completed_at, create_datetime, update_datetime
			FROM goals
			WHERE user_id=$1`

	args := []interface{}{userId}
	if status != nil {
		query += " AND status=$2"
		args = append(args, *status)
	}

	query += " ORDER BY create_datetime DESC"

	rows, err := repository.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		goal := model.Goal{}
		err = rows.Scan(&goal.Id, &goal.UserId, &goal.Title, &goal.Description, &goal.TargetDate, &goal.Status, &goal.CompletedAt, &goal.CreateDatetime, &goal.UpdateDatetime)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}

func (repository *GoalRepository) GetGoal(ctx context.Context, goalId uuid.UUID, userId uuid.UUID) (model.Goal, error) {
	query := `SELECT id, user_id, title, description, target_date, status, completed_at, create_datetime, update_datetime
			FROM goals
			WHERE id=$1 AND user_id=$2
			LIMIT 1`

	goal := model.Goal{}
	err := repository.DB.QueryRow(ctx, query, goalId, userId).Scan(&goal.Id, &goal.UserId, &goal.Title, &goal.Description, &goal.TargetDate, &goal.Status, &goal.CompletedAt, &goal.CreateDatetime, &goal.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Goal not found",
				Param:   "goalId",
			}
		}
		return goal, err
	}

	return goal, nil
}

func (repository *GoalRepository) UpdateGoalStatus(ctx context.Context, goalId uuid.UUID, userId uuid.UUID, status string, completedAt *time.Time, updateDatetime time.Time) error {
	query := "UPDATE goals SET status=$1, completed_at=$2, update_datetime=$3 WHERE id=$4 AND user_id=$5"

	tag, err := repository.DB.Exec(ctx, query, status, completedAt, updateDatetime, goalId, userId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Goal not found",
			Param:   "goalId",
		}
	}

	return nil
}

func (repository *GoalRepository) DeleteGoal(ctx context.Context, goalId uuid.UUID, userId uuid.UUID) error {
	query := "DELETE FROM goals WHERE id=$1 AND user_id=$2"

	tag, err := repository.DB.Exec(ctx, query, goalId, userId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Goal not found",
			Param:   "goalId",
		}
	}

	return nil
}
