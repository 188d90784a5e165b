package handlers

import (
	"fmt"
	"time"

	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	profile, err := h.users.GetProfile(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load profile",
		})
	}
	if profile == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No profile yet",
		})
	}
	return c.JSON(profile)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	profile, err := h.users.GetProfile(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load profile",
		})
	}
	if profile == nil {
		profile = &models.HealthProfile{UserID: userID}
	}

	if req.TargetCalories != nil {
		profile.TargetCalories = *req.TargetCalories
	}
	if req.TargetWaterML != nil {
		profile.TargetWaterML = *req.TargetWaterML
	}
	if req.TargetBurnedCalories != nil {
		profile.TargetBurnedCalories = *req.TargetBurnedCalories
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); *req.Timezone != "" && err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown timezone",
			})
		}
		profile.Timezone = *req.Timezone
	}
	if req.QuietStartHour != nil {
		if *req.QuietStartHour < 0 || *req.QuietStartHour > 23 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "quietStartHour must be 0-23",
			})
		}
		profile.QuietStartHour = req.QuietStartHour
	}
	if req.QuietEndHour != nil {
		if *req.QuietEndHour < 0 || *req.QuietEndHour > 23 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "quietEndHour must be 0-23",
			})
		}
		profile.QuietEndHour = req.QuietEndHour
	}
	if req.WaterIntervalMinutes != nil {
		profile.WaterIntervalMinutes = *req.WaterIntervalMinutes
	}
	if req.WorkoutReminderTime != nil {
		profile.WorkoutReminderTime = *req.WorkoutReminderTime
	}
	if req.BreakfastTime != nil {
		profile.BreakfastTime = *req.BreakfastTime
	}
	if req.LunchTime != nil {
		profile.LunchTime = *req.LunchTime
	}
	if req.DinnerTime != nil {
		profile.DinnerTime = *req.DinnerTime
	}

	if err := h.users.UpsertProfile(profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save profile",
		})
	}

	return c.JSON(profile)
}

// MealReminderTimes suggests local notification slots: 15 minutes before each
// configured meal time. Clients schedule these on-device.
func (h *Handler) MealReminderTimes(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	profile, err := h.users.GetProfile(userID)
	if err != nil || profile == nil {
		return c.JSON(fiber.Map{})
	}

	result := fiber.Map{}
	for mealType, t := range map[string]string{
		"breakfast": profile.BreakfastTime,
		"lunch":     profile.LunchTime,
		"dinner":    profile.DinnerTime,
	} {
		if t == "" {
			continue
		}
		var hh, mm int
		if _, err := fmt.Sscanf(t, "%d:%d", &hh, &mm); err != nil {
			continue
		}
		total := (hh*60 + mm - 15 + 24*60) % (24 * 60)
		result[mealType] = fmt.Sprintf("%02d:%02d", total/60, total%60)
	}

	return c.JSON(result)
}
