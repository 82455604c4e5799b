package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type PhotoRepository struct {
	Log      *zap.Logger
	DB       *pgxpool.Pool
	DBCache  *redis.Client
	DBObject *minio.Client
}

func NewPhotoRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client, minio *minio.Client) *PhotoRepository {
	return &PhotoRepository{
		Log:      zap,
		DB:       db,
		DBCache:  dbCache,
		DBObject: minio,
	}
}

// Postgresql
// CreatePhoto is idempotent on the photo id: a confirm retried after an
// ambiguous network failure cannot insert a duplicate row.
func (repository *PhotoRepository) CreatePhoto(ctx context.Context, tx pgx.Tx, photo model.Photo) error {
	query := `INSERT INTO photos (id, user_id, bucket, object_key, size, mime_type, width, height, week_number, feedback, status, original_name, uploaded_at, create_datetime, update_datetime)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			ON CONFLICT (id) DO NOTHING`

	_, err := tx.Exec(ctx, query, photo.Id, photo.UserId, photo.Bucket, photo.ObjectKey, photo.Size, photo.MimeType, photo.Width, photo.Height, photo.WeekNumber, photo.Feedback, photo.Status, photo.OriginalName, photo.UploadedAt, photo.CreateDatetime, photo.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *PhotoRepository) GetPhoto(ctx context.Context, photoId uuid.UUID, userId uuid.UUID) (model.Photo, error) {
	query := `SELECT id, user_id, bucket, object_key, size, mime_type, width, height, week_number, feedback, status, original_name, uploaded_at, create_datetime, update_datetime
			FROM photos
			WHERE id=$1 AND user_id=$2
			LIMIT 1`

	photo := model.Photo{}
	err := repository.DB.QueryRow(ctx, query, photoId, userId).Scan(&photo.Id, &photo.UserId, &photo.Bucket, &photo.ObjectKey, &photo.Size, &photo.MimeType, &photo.Width, &photo.Height, &photo.WeekNumber, &photo.Feedback, &photo.Status, &photo.OriginalName, &photo.UploadedAt, &photo.CreateDatetime, &photo.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return photo, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Photo not found",
				Param:   "photoId",
			}
		}
		return photo, err
	}

	return photo, nil
}

func (repository *PhotoRepository) ListPhotos(ctx context.Context, userId uuid.UUID, weekNumber *int, limit int, offset int) ([]model.Photo, error) {
	query := `SELECT id, user_id, bucket, object_key, size, mime_type, width, height, week_number, feedback, status, original_name, uploaded_at, create_datetime, update_datetime
			FROM photos
			WHERE user_id=$1`

	args := []interface{}{userId}
	if weekNumber != nil {
		query += fmt.Sprintf(" AND week_number=$%d", len(args)+1)
		args = append(args, *weekNumber)
	}

	query += fmt.Sprintf(" ORDER BY uploaded_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []model.Photo{}
	for rows.Next() {
		photo := model.Photo{}
		err = rows.Scan(&photo.Id, &photo.UserId, &photo.Bucket, &photo.ObjectKey, &photo.Size, &photo.MimeType, &photo.Width, &photo.Height, &photo.WeekNumber, &photo.Feedback, &photo.Status, &photo.OriginalName, &photo.UploadedAt, &photo.CreateDatetime, &photo.UpdateDatetime)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

func (repository *PhotoRepository) CountMonthlyUploads(ctx context.Context, userId uuid.UUID, from time.Time, to time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM photos WHERE user_id=$1 AND uploaded_at >= $2 AND uploaded_at < $3"

	var count int
	err := repository.DB.QueryRow(ctx, query, userId, from, to).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// LockUserUploads takes a transaction-scoped advisory lock on the user so
// concurrent confirms cannot both pass the quota count before inserting.
// Released automatically at commit or rollback.
func (repository *PhotoRepository) LockUserUploads(ctx context.Context, tx pgx.Tx, userId uuid.UUID) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1::text))", userId.String())
	if err != nil {
		return err
	}

	return nil
}

// CountMonthlyUploadsTx is the in-transaction variant used by confirm so the
// quota check and the insert see the same snapshot.
func (repository *PhotoRepository) CountMonthlyUploadsTx(ctx context.Context, tx pgx.Tx, userId uuid.UUID, from time.Time, to time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM photos WHERE user_id=$1 AND uploaded_at >= $2 AND uploaded_at < $3"

	var count int
	err := tx.QueryRow(ctx, query, userId, from, to).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (repository *PhotoRepository) UpdateFeedback(ctx context.Context, photoId uuid.UUID, userId uuid.UUID, feedback *string, updateDatetime time.Time) error {
	query := "UPDATE photos SET feedback=$1, update_datetime=$2 WHERE id=$3 AND user_id=$4"

	tag, err := repository.DB.Exec(ctx, query, feedback, updateDatetime, photoId, userId)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Photo not found",
			Param:   "photoId",
		}
	}

	return nil
}

func (repository *PhotoRepository) GetPhotoObjectKey(ctx context.Context, tx pgx.Tx, photoId uuid.UUID, userId uuid.UUID) (string, error) {
	query := "SELECT object_key FROM photos WHERE id=$1 AND user_id=$2 LIMIT 1"

	var objectKey string
	err := tx.QueryRow(ctx, query, photoId, userId).Scan(&objectKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "Photo not found",
				Param:   "photoId",
			}
		}
		return "", err
	}

	return objectKey, nil
}

func (repository *PhotoRepository) DeletePhoto(ctx context.Context, tx pgx.Tx, photoId uuid.UUID, userId uuid.UUID) error {
	query := "DELETE FROM photos WHERE id=$1 AND user_id=$2"

	_, err := tx.Exec(ctx, query, photoId, userId)
	if err != nil {
		return err
	}

	return nil
}

// Redis - presign reservations
// The hash write and its TTL go in one MULTI/EXEC so a reservation can never
// land without an expiry.
func (repository *PhotoRepository) SetPresignReservation(ctx context.Context, photoId uuid.UUID, reservation model.PhotoReservation, ttl time.Duration) error {
	key := fmt.Sprintf("photo:presign:%s", photoId)

	_, err := repository.DBCache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"user_id":    reservation.UserId.String(),
			"object_key": reservation.ObjectKey,
			"mime":       reservation.Mime,
			"bytes":      reservation.Bytes,
			"created_at": time.Now().Unix(),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})

	return err
}

func (repository *PhotoRepository) GetPresignReservation(ctx context.Context, photoId uuid.UUID) (map[string]string, error) {
	key := fmt.Sprintf("photo:presign:%s", photoId)

	data, err := repository.DBCache.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (repository *PhotoRepository) DeletePresignReservation(ctx context.Context, photoId uuid.UUID) error {
	key := fmt.Sprintf("photo:presign:%s", photoId)

	return repository.DBCache.Del(ctx, key).Err()
}

// MinIO
func (repository *PhotoRepository) PresignUpload(ctx context.Context, bucketName string, objectKey string, expiry time.Duration) (string, error) {
	uploadUrl, err := repository.DBObject.PresignedPutObject(ctx, bucketName, objectKey, expiry)
	if err != nil {
		return "", err
	}

	return uploadUrl.String(), nil
}

// StatUploadedObject reports whether the object landed in storage and its
// actual size. A missing object is not an error here; confirm decides.
func (repository *PhotoRepository) StatUploadedObject(ctx context.Context, bucketName string, objectKey string) (bool, int64, error) {
	stat, err := repository.DBObject.StatObject(ctx, bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, 0, nil
		}
		return false, 0, err
	}

	return true, stat.Size, nil
}

func (repository *PhotoRepository) RemovePhotoObject(ctx context.Context, bucketName string, objectKey string) error {
	err := repository.DBObject.RemoveObject(ctx, bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return err
	}

	return nil
}
