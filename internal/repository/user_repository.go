package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadhilmaulana/glowcoach/internal/constant"
	"github.com/fadhilmaulana/glowcoach/internal/model"
	"github.com/fadhilmaulana/glowcoach/internal/util"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type UserRepository struct {
	Log      *zap.Logger
	DB       *pgxpool.Pool
	DBCache  *redis.Client
	DBObject *minio.Client
}

func NewUserRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client, minio *minio.Client) *UserRepository {
	return &UserRepository{
		Log:      zap,
		DB:       db,
		DBCache:  dbCache,
		DBObject: minio,
	}
}

// Postgresql
func (repository *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	query := "INSERT INTO users (id, email, fullname, timezone, skin_type, avatar_image_id, settings, create_datetime, update_datetime, create_user_id, update_user_id) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)"

	_, err := repository.DB.Exec(ctx, query, user.Id, user.Email, user.Fullname, user.Timezone, user.SkinType, user.AvatarImageId, user.Settings, user.CreateDatetime, user.UpdateDatetime, user.CreateUserId, user.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) CheckEmailUnique(ctx context.Context, email string) (int, error) {
	query := "SELECT 1 FROM users WHERE email=$1 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

func (repository *UserRepository) GetUserIdByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	query := "SELECT id FROM users WHERE email=$1 LIMIT 1"

	var id uuid.UUID
	err := repository.DB.QueryRow(ctx, query, email).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return id, &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: "No account exists for this email",
				Param:   "email",
			}
		}
		return id, err
	}

	return id, nil
}

func (repository *UserRepository) GetUserInfo(ctx context.Context, id uuid.UUID) (model.UserResponse, error) {
	query := `SELECT A.id,A.email,A.fullname,A.timezone,A.skin_type,B.object_key,A.create_datetime,A.update_datetime
			FROM users A
			LEFT JOIN user_avatar_images B ON A.id = B.user_id
			WHERE A.id=$1
			LIMIT 1`

	user := model.UserResponse{}
	err := repository.DB.QueryRow(ctx, query, id).Scan(&user.Id, &user.Email, &user.Fullname, &user.Timezone, &user.SkinType, &user.AvatarImage, &user.CreateDatetime, &user.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, &model.ValidationError{
				Code:    constant.ERR_NOT_FOUND_ERROR,
				Message: "User not found",
				Param:   "userId",
			}
		}
		return user, err
	}

	return user, nil
}

func (repository *UserRepository) UpdateFullname(ctx context.Context, userId uuid.UUID, fullname string, updateUserId uuid.UUID, updateDatetime time.Time) error {
	query := "UPDATE users SET fullname=$1, update_datetime=$2, update_user_id=$3 WHERE id=$4"

	_, err := repository.DB.Exec(ctx, query, fullname, updateDatetime, updateUserId, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) UpdateTimezone(ctx context.Context, userId uuid.UUID, timezone string, updateUserId uuid.UUID, updateDatetime time.Time) error {
	query := "UPDATE users SET timezone=$1, update_datetime=$2, update_user_id=$3 WHERE id=$4"

	_, err := repository.DB.Exec(ctx, query, timezone, updateDatetime, updateUserId, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) UpdateSkinType(ctx context.Context, userId uuid.UUID, skinType *string, updateUserId uuid.UUID, updateDatetime time.Time) error {
	query := "UPDATE users SET skin_type=$1, update_datetime=$2, update_user_id=$3 WHERE id=$4"

	_, err := repository.DB.Exec(ctx, query, skinType, updateDatetime, updateUserId, userId)
	if err != nil {
		return err
	}

	return nil
}

// Redis - Cache
func (repository *UserRepository) SetAuthTokenInCache(ctx context.Context, accessToken string, refreshToken string, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	// Hash tokens before storing in Redis for security
	hashedAccessToken := util.HashToken(accessToken)
	hashedRefreshToken := util.HashToken(refreshToken)

	err := repository.DBCache.Set(ctx, accessTokenKey, hashedAccessToken, 15*time.Minute).Err()
	if err != nil {
		return err
	}

	err = repository.DBCache.Set(ctx, refreshTokenKey, hashedRefreshToken, 15*time.Minute).Err()
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) GetAccessTokenInCache(ctx context.Context, userId uuid.UUID) (string, error) {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	hashedToken, err := repository.DBCache.Get(ctx, accessTokenKey).Result()
	if err == redis.Nil {
		return hashedToken, &model.ValidationError{
			Code:    constant.ERR_NOT_FOUND_ERROR,
			Message: "Authorization token not found or expired",
			Param:   "accessToken",
		}
	} else if err != nil {
		return hashedToken, err
	}

	return hashedToken, nil
}

func (repository *UserRepository) RemoveAuthToken(ctx context.Context, userId uuid.UUID) error {
	accessTokenKey := fmt.Sprintf("auth:accessToken:%s", userId)
	refreshTokenKey := fmt.Sprintf("auth:refreshToken:%s", userId)

	err := repository.DBCache.Del(ctx, accessTokenKey).Err()
	if err != nil {
		return err
	}

	err = repository.DBCache.Del(ctx, refreshTokenKey).Err()
	if err != nil {
		return err
	}

	return nil
}

// Redis - verification code sessions. One hash per session plus an email guard
// key so a restarted flow invalidates the previous code.
func (repository *UserRepository) SetAuthSession(ctx context.Context, purpose string, sessionId uuid.UUID, fields map[string]interface{}, ttl time.Duration) error {
	key := fmt.Sprintf("%s:%s", purpose, sessionId)

	_, err := repository.DBCache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})

	return err
}

func (repository *UserRepository) GetAuthSession(ctx context.Context, purpose string, sessionId uuid.UUID) (map[string]string, error) {
	key := fmt.Sprintf("%s:%s", purpose, sessionId)

	data, err := repository.DBCache.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (repository *UserRepository) DeleteAuthSession(ctx context.Context, purpose string, sessionId string) error {
	key := fmt.Sprintf("%s:%s", purpose, sessionId)

	return repository.DBCache.Del(ctx, key).Err()
}

func (repository *UserRepository) SetAuthEmailSession(ctx context.Context, purpose string, email string, sessionId string, ttl time.Duration) error {
	key := fmt.Sprintf("%semail:%s", purpose, email)

	return repository.DBCache.Set(ctx, key, sessionId, ttl).Err()
}

func (repository *UserRepository) CheckAuthEmailSession(ctx context.Context, purpose string, email string) (bool, string, error) {
	key := fmt.Sprintf("%semail:%s", purpose, email)

	sessionId, err := repository.DBCache.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, "", nil
	} else if err != nil {
		return false, "", err
	}

	return true, sessionId, nil
}

func (repository *UserRepository) DeleteAuthEmailSession(ctx context.Context, purpose string, email string) error {
	key := fmt.Sprintf("%semail:%s", purpose, email)

	return repository.DBCache.Del(ctx, key).Err()
}

// MinIO - avatar objects
func (repository *UserRepository) UploadUserAvatar(ctx context.Context, bucketName string, imageName string, imageFile *bytes.Reader, imageSize int64) error {
	_, err := repository.DBObject.PutObject(ctx, bucketName, imageName, imageFile, imageSize,
		minio.PutObjectOptions{
			ContentType:  "image/webp",
			CacheControl: "public, max-age=31536000, immutable",
		})
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) GetUserAvatar(ctx context.Context, tx pgx.Tx, userId uuid.UUID) (string, error) {
	query := "SELECT object_key FROM user_avatar_images WHERE user_id=$1 LIMIT 1"

	var objectKey string
	err := tx.QueryRow(ctx, query, userId).Scan(&objectKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return objectKey, err
	}

	return objectKey, nil
}

func (repository *UserRepository) DeleteUserAvatar(ctx context.Context, bucketName string, fileName string) error {
	err := repository.DBObject.RemoveObject(ctx, bucketName, fileName, minio.RemoveObjectOptions{})
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) DeleteAvatarImage(ctx context.Context, tx pgx.Tx, userId uuid.UUID) error {
	query := "DELETE FROM user_avatar_images WHERE user_id=$1"

	_, err := tx.Exec(ctx, query, userId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *UserRepository) AddUserAvatar(ctx context.Context, tx pgx.Tx, avatar model.UserAvatarImage) error {
	query := "INSERT INTO user_avatar_images (id, user_id, bucket, object_key, mime_type, size, create_datetime, update_datetime, create_user_id, update_user_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"

	_, err := tx.Exec(ctx, query, avatar.Id, avatar.UserId, avatar.Bucket, avatar.ObjectKey, avatar.MimeType, avatar.Size, avatar.CreateDatetime, avatar.UpdateDatetime, avatar.CreateUserId, avatar.UpdateUserId)
	if err != nil {
		return err
	}

	return nil
}
