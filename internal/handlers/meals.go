package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) CreateMeal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateMealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Date == "" {
		req.Date = time.Now().UTC().Format("2006-01-02")
	}

	meal := models.Meal{
		UserID:   userID,
		Date:     req.Date,
		MealType: req.MealType,
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
	}
	if err := h.logs.CreateMeal(&meal); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log meal",
		})
	}

	// Calorie warning is evaluated on the day's running total, right after
	// the meal lands. Its outcome never affects this response.
	h.checkCalorieWarning(userID, meal.Date)

	return c.Status(fiber.StatusCreated).JSON(meal)
}

func (h *Handler) ListMeals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	meals, err := h.logs.ListMeals(userID, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list meals",
		})
	}
	return c.JSON(fiber.Map{"meals": meals})
}

func (h *Handler) DeleteMeal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	mealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meal ID",
		})
	}
	if err := h.logs.DeleteMeal(userID, mealID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meal not found",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// checkCalorieWarning enqueues an over/under warning when the day's total
// crosses a threshold. Errors are logged; meal logging never fails because
// of its notification.
func (h *Handler) checkCalorieWarning(userID uuid.UUID, date string) {
	profile, err := h.users.GetProfile(userID)
	if err != nil || profile == nil || profile.TargetCalories <= 0 {
		return
	}

	totals, err := h.metrics.DailyTotals(userID, date)
	if err != nil {
		slog.Error("calorie warning: daily totals", "user_id", userID, "error", err)
		return
	}

	localNow := notification.InZone(time.Now(), profile.Timezone)
	warning, ok := notification.EvaluateCalorieWarning(totals.TotalCalories, profile.TargetCalories, localNow)
	if !ok {
		return
	}

	vars := map[string]any{
		"current_calories": totals.TotalCalories,
		"target_calories":  profile.TargetCalories,
		"percent":          warning.Percent,
	}
	kind := notification.KindCalorieOver
	if warning.Status == notification.CalorieUnder {
		kind = notification.KindCalorieUnder
		vars["time"] = fmt.Sprintf("%02d:%02d", localNow.Hour(), localNow.Minute())
	}

	h.notifier.Enqueue(services.SendRequest{
		UserID:    userID,
		Kind:      kind,
		Variables: vars,
	})
}
