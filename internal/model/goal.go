package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusAbandoned = "abandoned"
)

var GoalStatuses = map[string]bool{
	GoalStatusActive:    true,
	GoalStatusCompleted: true,
	GoalStatusAbandoned: true,
}

type GoalCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetDate  string `json:"targetDate"`
}

type GoalStatusUpdateRequest struct {
	Status string `json:"status"`
}

type Goal struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Title          string
	Description    *string
	TargetDate     *time.Time
	Status         string
	CompletedAt    *time.Time
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type GoalResponse struct {
	Id             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	TargetDate     *time.Time `json:"targetDate"`
	Status         string     `json:"status"`
	CompletedAt    *time.Time `json:"completedAt"`
	CreateDatetime time.Time  `json:"createDatetime"`
	UpdateDatetime time.Time  `json:"updateDatetime"`
}
