package config

import (
	http "github.com/fadhilmaulana/glowcoach/internal/delivery/http"
	"github.com/fadhilmaulana/glowcoach/internal/delivery/http/middleware"
	"github.com/fadhilmaulana/glowcoach/internal/delivery/http/route"
	"github.com/fadhilmaulana/glowcoach/internal/repository"
	"github.com/fadhilmaulana/glowcoach/internal/usecase"
	"github.com/minio/minio-go/v7"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router  *fiber.App
	DB      *pgxpool.Pool
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
	MinIO   *minio.Client
}

func Server(config *ServerConfig) {
	userRepository := repository.NewUserRepository(config.Log, config.DB, config.DBCache, config.MinIO)
	userUsecase := usecase.NewUserUsecase(userRepository, config.DB, config.Log, config.Config)
	userController := http.NewUserController(userUsecase, config.Log, config.Config)

	photoRepository := repository.NewPhotoRepository(config.Log, config.DB, config.DBCache, config.MinIO)
	photoUsecase := usecase.NewPhotoUsecase(photoRepository, config.DB, config.Log, config.Config)
	photoController := http.NewPhotoController(photoUsecase, config.Log, config.Config)

	journalRepository := repository.NewJournalRepository(config.Log, config.DB, config.DBCache)
	journalUsecase := usecase.NewJournalUsecase(journalRepository, config.DB, config.Log, config.Config)
	journalController := http.NewJournalController(journalUsecase, config.Log, config.Config)

	goalRepository := repository.NewGoalRepository(config.Log, config.DB, config.DBCache)
	goalUsecase := usecase.NewGoalUsecase(goalRepository, config.DB, config.Log, config.Config)
	goalController := http.NewGoalController(goalUsecase, config.Log, config.Config)

	authMiddleware := middleware.NewAuthMiddleware(config.Router, config.Log, config.Config, userUsecase)

	routeConfig := route.RouteConfig{
		App:               config.Router,
		UserController:    userController,
		PhotoController:   photoController,
		JournalController: journalController,
		GoalController:    goalController,
		AuthMiddleware:    authMiddleware,
		Log:               config.Log,
	}

	routeConfig.SetupRoute()
}
