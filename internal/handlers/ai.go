package handlers

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

const maxAnalyzeImageBytes = 10 << 20

// AnalyzeMeal runs the uploaded photo through the food-recognition service
// and logs the result as a meal. Both outcomes push a notification, but the
// push never decides the response.
func (h *Handler) AnalyzeMeal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image file is required",
		})
	}
	if fileHeader.Size > maxAnalyzeImageBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image too large (max 10MB)",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read image",
		})
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read image",
		})
	}

	mealType := c.FormValue("mealType")
	if mealType == "" {
		mealType = "snack"
	}

	analysis, err := h.ai.AnalyzeImage(c.Context(), image, fileHeader.Filename)
	if err != nil || analysis.MainDetection() == nil {
		if err != nil {
			slog.Warn("meal analysis failed", "user_id", userID, "error", err)
		}
		h.notifier.Enqueue(services.SendRequest{
			UserID: userID,
			Kind:   notification.KindAIFailure,
		})
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Could not recognize food in the image",
		})
	}

	main := analysis.MainDetection()
	date := c.FormValue("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	meal := models.Meal{
		UserID:   userID,
		Date:     date,
		MealType: mealType,
		Name:     main.Food,
		Calories: int(math.Round(analysis.TotalNutrition.Calories)),
		Protein:  analysis.TotalNutrition.Protein,
		Carbs:    analysis.TotalNutrition.Carbs,
		Fat:      analysis.TotalNutrition.Fat,
		Source:   "ai",
	}
	if err := h.logs.CreateMeal(&meal); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log meal",
		})
	}

	h.notifier.Enqueue(services.SendRequest{
		UserID: userID,
		Kind:   notification.KindAISuccess,
		Variables: map[string]any{
			"meal_type": meal.MealType,
			"food_name": meal.Name,
			"calories":  meal.Calories,
		},
		Data: map[string]string{"meal_id": meal.ID.String()},
	})

	h.checkCalorieWarning(userID, meal.Date)

	return c.JSON(fiber.Map{
		"meal":     meal,
		"analysis": analysis,
	})
}
