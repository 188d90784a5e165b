package handlers

import (
	"errors"
	"strconv"

	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetNotifications returns paginated notifications for the current user
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	notifications, total, unread, err := h.records.ListByUser(userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load notifications",
		})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
		"page":          page,
		"limit":         limit,
	})
}

// MarkNotificationRead marks a single notification as read
func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	if err := h.records.MarkRead(userID, notifID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead marks all notifications as read for the current user
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	if err := h.records.MarkAllRead(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark notifications read",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// RegisterDeviceToken saves an FCM token for push delivery
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.RegisterTokenRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Token is required",
		})
	}

	token, err := h.tokens.Register(userID, req.Token, req.Platform)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register device token",
		})
	}
	return c.JSON(token)
}

// UnregisterDeviceToken removes a device token, typically on logout
func (h *Handler) UnregisterDeviceToken(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Token is required",
		})
	}

	if err := h.tokens.Unregister(userID, req.Token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to unregister device token",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// TestNotification delivers a notification synchronously so the caller
// sees the real outcome. Meant for development and support tooling.
func (h *Handler) TestNotification(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req struct {
		Kind             string         `json:"kind"`
		Variables        map[string]any `json:"variables"`
		IgnoreQuietHours bool           `json:"ignoreQuietHours"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	kind, ok := notification.ParseKind(req.Kind)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown notification kind",
		})
	}

	err := h.notifier.SendToUser(c.Context(), services.SendRequest{
		UserID:           userID,
		Kind:             kind,
		Variables:        req.Variables,
		IgnoreQuietHours: req.IgnoreQuietHours,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoTemplate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No template for that kind",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"success": true})
}
