package usecase

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/fadhilmaulana/glowcoach/internal/repository"
	"github.com/google/uuid"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type JournalUsecase struct {
	JournalRepository *repository.JournalRepository
	DB                *pgxpool.Pool
	Log               *zap.Logger
	Config            *koanf.Koanf
}

func NewJournalUsecase(journalRepository *repository.JournalRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *JournalUsecase {
	return &JournalUsecase{
		JournalRepository: journalRepository,
		DB:                db,
		Log:               zap,
		Config:            koanf,
	}
}

func validateJournalFields(title string, body sonic.NoCopyRawMessage, mood string) error {
	if title == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Title is required to not be empty",
			Param:   "title",
		}
	} else if len(title) > 120 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Title must be at most 120 characters",
			Param:   "title",
		}
	}

	if len(body) > 0 && !sonic.Valid(body) {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Body is not valid json",
			Param:   "body",
		}
	}

	if len(mood) > 30 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Mood must be at most 30 characters",
			Param:   "mood",
		}
	}

	return nil
}

func toJournalResponse(entry model.JournalEntry) model.JournalEntryResponse {
	return model.JournalEntryResponse{
		Id:             entry.Id,
		Title:          entry.Title,
		Body:           entry.Body,
		Mood:           entry.Mood,
		EntryDate:      entry.EntryDate,
		CreateDatetime: entry.CreateDatetime,
		UpdateDatetime: entry.UpdateDatetime,
	}
}

func (usecase *JournalUsecase) CreateEntry(ctx *fiber.Ctx, userId uuid.UUID, payload model.JournalEntryCreateRequest) (model.JournalEntryResponse, error) {
	response := model.JournalEntryResponse{}

	err := validateJournalFields(payload.Title, payload.Body, payload.Mood)
	if err != nil {
		return response, err
	}

	now := time.Now().UTC()

	entryDate := now
	if payload.EntryDate != "" {
		entryDate, err = time.Parse("2006-01-02", payload.EntryDate)
		if err != nil {
			return response, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "Entry date must be in YYYY-MM-DD format",
				Param:   "entryDate",
			}
		}
	}

	body := payload.Body
	if len(body) == 0 {
		body = sonic.NoCopyRawMessage("{}")
	}

	var mood *string
	if payload.Mood != "" {
		mood = &payload.Mood
	}

	entry := model.JournalEntry{
		Id:             uuid.New(),
		UserId:         userId,
		Title:          payload.Title,
		Body:           body,
		Mood:           mood,
		EntryDate:      entryDate,
		CreateDatetime: now,
		UpdateDatetime: now,
	}

	err = usecase.JournalRepository.CreateEntry(ctx.Context(), entry)
	if err != nil {
		return response, err
	}

	return toJournalResponse(entry), nil
}

func (usecase *JournalUsecase) ListEntries(ctx *fiber.Ctx, userId uuid.UUID, limit int, offset int) ([]model.JournalEntryResponse, error) {
	if limit <= 0 {
		limit = constant.DEFAULT_PAGE_LIMIT
	} else if limit > constant.MAX_PAGE_LIMIT {
		limit = constant.MAX_PAGE_LIMIT
	}

	if offset < 0 {
		offset = 0
	}

	entries, err := usecase.JournalRepository.ListEntries(ctx.Context(), userId, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]model.JournalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toJournalResponse(entry))
	}

	return responses, nil
}

func (usecase *JournalUsecase) GetEntry(ctx *fiber.Ctx, userId uuid.UUID, entryId uuid.UUID) (model.JournalEntryResponse, error) {
	entry, err := usecase.JournalRepository.GetEntry(ctx.Context(), entryId, userId)
	if err != nil {
		return model.JournalEntryResponse{}, err
	}

	return toJournalResponse(entry), nil
}

func (usecase *JournalUsecase) UpdateEntry(ctx *fiber.Ctx, userId uuid.UUID, entryId uuid.UUID, payload model.JournalEntryUpdateRequest) (model.JournalEntryResponse, error) {
	response := model.JournalEntryResponse{}

	err := validateJournalFields(payload.Title, payload.Body, payload.Mood)
	if err != nil {
		return response, err
	}

	entry, err := usecase.JournalRepository.GetEntry(ctx.Context(), entryId, userId)
	if err != nil {
		return response, err
	}

	entry.Title = payload.Title
	if len(payload.Body) > 0 {
		entry.Body = payload.Body
	}

	entry.Mood = nil
	if payload.Mood != "" {
		entry.Mood = &payload.Mood
	}

	entry.UpdateDatetime = time.Now().UTC()

	err = usecase.JournalRepository.UpdateEntry(ctx.Context(), entry)
	if err != nil {
		return response, err
	}

	return toJournalResponse(entry), nil
}

func (usecase *JournalUsecase) DeleteEntry(ctx *fiber.Ctx, userId uuid.UUID, entryId uuid.UUID) error {
	err := usecase.JournalRepository.DeleteEntry(ctx.Context(), entryId, userId)
	if err != nil {
		return err
	}

	return nil
}
