package routes

import (
	"github.com/duyn/calofit-api/internal/handlers"
	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/google", h.GoogleLogin)
	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/reset-password", h.ResetPassword)

	protected := api.Group("/", middleware.Protected(jwtSecret))

	protected.Get("/me", h.GetMe)
	protected.Post("/auth/logout", h.Logout)

	protected.Get("/profile", h.GetProfile)
	protected.Put("/profile", h.UpdateProfile)
	protected.Get("/profile/meal-reminders", h.MealReminderTimes)

	meals := protected.Group("/meals")
	meals.Get("/", h.ListMeals)
	meals.Post("/", h.CreateMeal)
	meals.Post("/analyze", h.AnalyzeMeal)
	meals.Delete("/:id", h.DeleteMeal)

	water := protected.Group("/water")
	water.Get("/", h.ListWater)
	water.Post("/", h.AddWater)
	water.Delete("/:id", h.DeleteWater)

	workouts := protected.Group("/workouts")
	workouts.Get("/", h.ListWorkouts)
	workouts.Post("/", h.CreateWorkout)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.GetNotifications)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)
	notifications.Post("/test", h.TestNotification)

	// Device tokens for push delivery
	protected.Post("/device-token", h.RegisterDeviceToken)
	protected.Delete("/device-token", h.UnregisterDeviceToken)

	// File upload
	protected.Post("/upload", h.UploadImage)
}
