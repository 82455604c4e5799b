package setup

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/fadhilmaulana/glowcoach/internal/delivery/http"
	"github.com/fadhilmaulana/glowcoach/internal/delivery/http/middleware"
	"github.com/fadhilmaulana/glowcoach/internal/delivery/http/route"
	"github.com/fadhilmaulana/glowcoach/internal/repository"
	"github.com/fadhilmaulana/glowcoach/internal/usecase"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const TestBucketName = "glowcoach-test"

func SetupTestApp(t *testing.T, pgURL, redisURL, minioURL, mailhogSMTP string) (*fiber.App, *pgxpool.Pool, *redis.Client, *minio.Client) {
	t.Log("Setting up test application...")

	ctx := context.Background()

	testConfig := koanf.New(".")
	_ = testConfig.Set("JWT_SECRET_KEY", "test-secret-key-for-jwt-token-generation")
	_ = testConfig.Set("MINIO_URL", minioURL)
	_ = testConfig.Set("MINIO_HTTP", "http://")
	_ = testConfig.Set("MINIO_BUCKET_NAME", TestBucketName)
	_ = testConfig.Set("MINIO_ACCESS_KEY", "minioadmin")
	_ = testConfig.Set("MINIO_SECRET_KEY", "minioadmin")
	_ = testConfig.Set("PHOTO_MONTHLY_LIMIT", 2)

	smtpParts := strings.Split(mailhogSMTP, ":")
	smtpHost := smtpParts[0]
	smtpPort, _ := strconv.Atoi(smtpParts[1])

	_ = testConfig.Set("SMTP_HOST", smtpHost)
	_ = testConfig.Set("SMTP_PORT", smtpPort)
	_ = testConfig.Set("SENDER_NAME", "Glowcoach Test <noreply@glowcoach.test>")
	_ = testConfig.Set("SENDER_EMAIL", "noreply@glowcoach.test")
	_ = testConfig.Set("SENDER_PASSWORD", "")

	t.Log("Connecting to test PostgreSQL...")
	dbPool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		t.Fatalf("failed to connect to test db: %v", err)
	}

	t.Log("Connecting to test Redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
		DB:   0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}

	t.Log("Connecting to test MinIO...")
	minioClient, err := minio.New(minioURL, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("failed to connect to minio: %v", err)
	}

	exists, err := minioClient.BucketExists(ctx, TestBucketName)
	if err != nil {
		t.Fatalf("failed to check minio bucket: %v", err)
	}

	if !exists {
		t.Logf("Creating MinIO bucket: %s", TestBucketName)
		err = minioClient.MakeBucket(ctx, TestBucketName, minio.MakeBucketOptions{})
		if err != nil {
			t.Fatalf("failed to create minio bucket: %v", err)
		}
	}

	zapLogger := zap.NewExample()
	defer func() {
		_ = zapLogger.Sync()
	}()

	userRepository := repository.NewUserRepository(zapLogger, dbPool, redisClient, minioClient)
	photoRepository := repository.NewPhotoRepository(zapLogger, dbPool, redisClient, minioClient)
	journalRepository := repository.NewJournalRepository(zapLogger, dbPool, redisClient)
	goalRepository := repository.NewGoalRepository(zapLogger, dbPool, redisClient)

	userUsecase := usecase.NewUserUsecase(userRepository, dbPool, zapLogger, testConfig)
	photoUsecase := usecase.NewPhotoUsecase(photoRepository, dbPool, zapLogger, testConfig)
	journalUsecase := usecase.NewJournalUsecase(journalRepository, dbPool, zapLogger, testConfig)
	goalUsecase := usecase.NewGoalUsecase(goalRepository, dbPool, zapLogger, testConfig)

	userController := http.NewUserController(userUsecase, zapLogger, testConfig)
	photoController := http.NewPhotoController(photoUsecase, zapLogger, testConfig)
	journalController := http.NewJournalController(journalUsecase, zapLogger, testConfig)
	goalController := http.NewGoalController(goalUsecase, zapLogger, testConfig)

	authMiddleware := middleware.NewAuthMiddleware(nil, zapLogger, testConfig, userUsecase)

	fiberApp := fiber.New(fiber.Config{
		AppName:               "Glowcoach Test",
		DisableStartupMessage: true,
		DisableKeepalive:      true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	routeConfig := route.RouteConfig{
		App:               fiberApp,
		UserController:    userController,
		PhotoController:   photoController,
		JournalController: journalController,
		GoalController:    goalController,
		AuthMiddleware:    authMiddleware,
		Log:               zapLogger,
	}

	routeConfig.SetupRoute()

	t.Log("Test application setup completed successfully")

	return fiberApp, dbPool, redisClient, minioClient
}
