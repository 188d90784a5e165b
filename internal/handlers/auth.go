package handlers

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/duyn/calofit-api/internal/middleware"
	"github.com/duyn/calofit-api/internal/models"
	"github.com/duyn/calofit-api/internal/notification"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 10 * time.Minute

type googleTokenInfo struct {
	Aud   string `json:"aud"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	if _, err := h.users.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already registered",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	user := models.User{
		Email:    req.Email,
		Password: string(hashedPassword),
		Name:     req.Name,
	}
	if err := h.users.Create(&user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	token, err := middleware.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	// Welcome push is direct feedback on a user action; quiet hours don't apply.
	h.notifier.Enqueue(services.SendRequest{
		UserID:           user.ID,
		Kind:             notification.KindAuthSignup,
		IgnoreQuietHours: true,
	})

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token: token,
		User:  user,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	if err := h.users.TouchLastLogin(user.ID, time.Now()); err != nil {
		slog.Error("update last login", "user_id", user.ID, "error", err)
	}

	h.notifier.Enqueue(services.SendRequest{
		UserID:           user.ID,
		Kind:             notification.KindAuthLogin,
		IgnoreQuietHours: true,
	})

	return c.JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	var req models.GoogleAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ID token is required",
		})
	}

	tokenInfo, err := verifyGoogleIDToken(req.IDToken)
	if err != nil {
		slog.Warn("google token verification failed", "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid Google token",
		})
	}

	// The token's aud is the iOS client ID when signing in from iOS, or the
	// web client ID from other platforms.
	if h.cfg.GoogleClientIDs != "" {
		valid := false
		for _, id := range strings.Split(h.cfg.GoogleClientIDs, ",") {
			if strings.TrimSpace(id) == tokenInfo.Aud {
				valid = true
				break
			}
		}
		if !valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token not intended for this app",
			})
		}
	}

	if tokenInfo.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email not available from Google account",
		})
	}

	user, err := h.users.GetByEmail(tokenInfo.Email)
	if err != nil {
		// User doesn't exist — create new account
		newUser := models.User{
			Email:        tokenInfo.Email,
			Name:         tokenInfo.Name,
			AuthProvider: "google",
		}
		if err := h.users.Create(&newUser); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create user",
			})
		}
		user = &newUser
		h.notifier.Enqueue(services.SendRequest{
			UserID:           user.ID,
			Kind:             notification.KindAuthSignup,
			IgnoreQuietHours: true,
		})
	}

	token, err := middleware.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	if err := h.users.TouchLastLogin(user.ID, time.Now()); err != nil {
		slog.Error("update last login", "user_id", user.ID, "error", err)
	}

	return c.JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

// Logout is stateless on the server; it exists so clients get the farewell
// notification and a clean audit entry.
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	h.notifier.Enqueue(services.SendRequest{
		UserID:           userID,
		Kind:             notification.KindAuthLogout,
		IgnoreQuietHours: true,
	})

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email is required",
		})
	}

	// Always answer success so the endpoint can't be used to probe accounts.
	if _, err := h.users.GetByEmail(req.Email); err != nil {
		return c.JSON(fiber.Map{"success": true})
	}

	code, err := generateOTP()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate code",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate code",
		})
	}

	otp := models.OTP{
		Email:     req.Email,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := h.otps.Create(&otp); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store code",
		})
	}

	// Email delivery is out of scope; the code surfaces in debug logs for
	// dev environments only.
	slog.Info("password reset code issued", "email", req.Email)
	slog.Debug("password reset code", "code", code)

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email, code, and new password are required",
		})
	}

	otp, err := h.otps.Latest(req.Email, time.Now())
	if err != nil || otp == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired code",
		})
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(req.Code)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired code",
		})
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired code",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	if err := h.users.UpdatePassword(user.ID, string(hash)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update password",
		})
	}
	if err := h.otps.MarkUsed(otp.ID); err != nil {
		slog.Error("mark otp used", "error", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	user, err := h.users.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// verifyGoogleIDToken verifies a Google ID token using Google's tokeninfo endpoint
func verifyGoogleIDToken(idToken string) (*googleTokenInfo, error) {
	resp, err := http.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token verification failed with status %d", resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode token info: %w", err)
	}

	return &info, nil
}
