package handlers

import (
	"time"

	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) AddWater(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.AddWaterRequest
	if err := c.BodyParser(&req); err != nil || req.AmountML <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amountMl must be positive",
		})
	}
	if req.Date == "" {
		req.Date = time.Now().UTC().Format("2006-01-02")
	}

	log := models.WaterLog{
		UserID:   userID,
		Date:     req.Date,
		AmountML: req.AmountML,
	}
	if err := h.logs.AddWater(&log); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log water",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(log)
}

func (h *Handler) ListWater(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	logs, err := h.logs.ListWater(userID, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list water logs",
		})
	}

	total := 0
	for _, l := range logs {
		total += l.AmountML
	}
	return c.JSON(fiber.Map{"logs": logs, "totalMl": total})
}

func (h *Handler) DeleteWater(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	logID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid log ID",
		})
	}
	if err := h.logs.DeleteWater(userID, logID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Water log not found",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}
