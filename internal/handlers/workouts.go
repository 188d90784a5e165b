package handlers

import (
	"time"

	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateWorkout(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Date == "" {
		req.Date = time.Now().UTC().Format("2006-01-02")
	}

	workout := models.Workout{
		UserID:          userID,
		Date:            req.Date,
		Type:            req.Type,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
	}
	if err := h.logs.CreateWorkout(&workout); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log workout",
		})
	}

	h.notifier.Enqueue(services.SendRequest{
		UserID:           userID,
		Kind:             notification.KindWorkoutComplete,
		IgnoreQuietHours: true,
		Variables: map[string]any{
			"duration": workout.DurationMinutes,
			"type":     workout.Type,
			"calories": workout.CaloriesBurned,
		},
	})

	return c.Status(fiber.StatusCreated).JSON(workout)
}

func (h *Handler) ListWorkouts(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	workouts, err := h.logs.ListWorkouts(userID, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list workouts",
		})
	}
	return c.JSON(fiber.Map{"workouts": workouts})
}
