package repository

import (
	"context"
	"errors"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type JournalRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewJournalRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *JournalRepository {
	return &JournalRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *JournalRepository) CreateEntry(ctx context.Context, entry model.JournalEntry) error {
	query := "INSERT INTO journal_entries (id, user_id, title, body, mood, entry_date, create_datetime, update_datetime) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)"

	_, err := repository.DB.Exec(ctx, query, entry.Id, entry.UserId, entry.Title, entry.Body, entry.Mood, entry.EntryDate, entry.CreateDatetime, entry.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *JournalRepository) ListEntries(ctx context.Context, userId uuid.UUID, limit int, offset int) ([]model.JournalEntry, error) {
	query := `SELECT id, user_id, title, body, mood, entry_date, create_datetime, update_datetime
			FROM journal_entries
			WHERE user_id=$1
			ORDER BY entry_date DESC, create_datetime DESC
			LIMIT $2 OFFSET $3`

	rows, err := repository.DB.Query(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.JournalEntry{}
	for rows.Next() {
		entry := model.JournalEntry{}
		err = rows.Scan(&entry.Id, &entry.UserId, &entry.Title, &entry.Body, &entry.Mood, &entry.EntryDate, &entry.CreateDatetime, &entry.UpdateDatetime)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (repository *JournalRepository) GetEntry(ctx context.Context, entryId uuid.UUID, userId uuid.UUID) (model.JournalEntry, error) {
	query := `SELECT id, user_id, title, body, mood, entry_date, create_datetime, update_datetime
			FROM journal_entries
			WHERE id=$1 AND user_id=$2
			LIMIT 1`

	entry := model.JournalEntry{}
	err := repository.DB.QueryRow(ctx, query, entryId, userId).Scan(&entry.Id, &entry.UserId, &entry.Title, &entry.Body, &entry.Mood, &entry.EntryDate, &entry.CreateDatetime, &entry.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entry, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Journal entry not found",
				Param:   "entryId",
			}
		}
		return entry, err
	}

	return entry, nil
}

func (repository *JournalRepository) UpdateEntry(ctx context.Context, entry model.JournalEntry) error {
	query := "UPDATE journal_entries SET title=$1, body=$2, mood=$3, update_datetime=$4 WHERE id=$5 AND user_id=$6"

	tag, err := repository.DB.Exec(ctx, query, entry.Title, entry.Body, entry.Mood, entry.UpdateDatetime, entry.Id, entry.UserId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Journal entry not found",
			Param:   "entryId",
		}
	}

	return nil
}

func (repository *JournalRepository) DeleteEntry(ctx context.Context, entryId uuid.UUID, userId uuid.UUID) error {
	query := "DELETE FROM journal_entries WHERE id=$1 AND user_id=$2"

	tag, err := repository.DB.Exec(ctx, query, entryId, userId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Journal entry not found",
			Param:   "entryId",
		}
	}

	return nil
}
