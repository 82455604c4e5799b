package model

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

type JournalEntryCreateRequest struct {
	Title     string                 `json:"title"`
	Body      sonic.NoCopyRawMessage `json:"body"`
	Mood      string                 `json:"mood"`
	EntryDate string                 `json:"entryDate"`
}

type JournalEntryUpdateRequest struct {
	Title string                 `json:"title"`
	Body  sonic.NoCopyRawMessage `json:"body"`
	Mood  string                 `json:"mood"`
}

type JournalEntry struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Title          string
	Body           sonic.NoCopyRawMessage
	Mood           *string
	EntryDate      time.Time
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type JournalEntryResponse struct {
	Id             uuid.UUID              `json:"id"`
	Title          string                 `json:"title"`
	Body           sonic.NoCopyRawMessage `json:"body"`
	Mood           *string                `json:"mood"`
	EntryDate      time.Time              `json:"entryDate"`
	CreateDatetime time.Time              `json:"createDatetime"`
	UpdateDatetime time.Time              `json:"updateDatetime"`
}
