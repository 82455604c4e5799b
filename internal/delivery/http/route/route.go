package route

import (
	"github.com/fadhilmaulana/glowcoach/internal/delivery/http"
	"github.com/fadhilmaulana/glowcoach/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RouteConfig struct {
	App               *fiber.App
	AuthMiddleware    *middleware.AuthMiddleware
	UserController    *http.UserController
	PhotoController   *http.PhotoController
	JournalController *http.JournalController
	GoalController    *http.GoalController
	Log               *zap.Logger
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := api.Group("/auth", middleware.SetupAuthRateLimiter(c.Log))
	authGroup.Post("/signup/start", c.UserController.StartSignup)
	authGroup.Post("/signup/verify", c.UserController.VerifySignup)
	authGroup.Post("/login/start", c.UserController.StartLogin)
	authGroup.Post("/login/verify", c.UserController.VerifyLogin)

	userGroup := api.Group("/users", c.AuthMiddleware.ProtectedRoute())
	userGroup.Get("/me", c.UserController.GetUserInfo)
	userGroup.Post("/logout", c.UserController.Logout)
	userGroup.Put("/avatar", c.UserController.UpdateAvatar)
	userGroup.Put("/fullname", c.UserController.UpdateFullname)
	userGroup.Put("/timezone", c.UserController.UpdateTimezone)
	userGroup.Put("/skin-type", c.UserController.UpdateSkinType)

	photoGroup := api.Group("/photos", c.AuthMiddleware.ProtectedRoute())
	photoGroup.Post("/presign", c.PhotoController.RequestUpload)
	photoGroup.Post("/confirm", c.PhotoController.ConfirmUpload)
	photoGroup.Get("/", c.PhotoController.ListPhotos)
	// registered before /:photoId so "quota" does not match the param route
	photoGroup.Get("/quota", c.PhotoController.GetMonthlyQuota)
	photoGroup.Get("/:photoId", c.PhotoController.GetPhoto)
	photoGroup.Put("/:photoId/feedback", c.PhotoController.UpdateFeedback)
	photoGroup.Delete("/:photoId", c.PhotoController.DeletePhoto)

	journalGroup := api.Group("/journal", c.AuthMiddleware.ProtectedRoute())
	journalGroup.Post("/", c.JournalController.CreateEntry)
	journalGroup.Get("/", c.JournalController.ListEntries)
	journalGroup.Get("/:entryId", c.JournalController.GetEntry)
	journalGroup.Put("/:entryId", c.JournalController.UpdateEntry)
	journalGroup.Delete("/:entryId", c.JournalController.DeleteEntry)

	goalGroup := api.Group("/goals", c.AuthMiddleware.ProtectedRoute())
	goalGroup.Post("/", c.GoalController.CreateGoal)
	goalGroup.Get("/", c.GoalController.ListGoals)
	goalGroup.Get("/:goalId", c.GoalController.GetGoal)
	goalGroup.Patch("/:goalId/status", c.GoalController.UpdateGoalStatus)
	goalGroup.Delete("/:goalId", c.GoalController.DeleteGoal)
}
