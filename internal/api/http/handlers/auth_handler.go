package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/rbac-service/internal/api/dto"
	"github.com/spec-kit/rbac-service/internal/observability"
	"github.com/spec-kit/rbac-service/internal/service"
	apperrors "github.com/spec-kit/rbac-service/pkg/util"
)

const refreshCookieName = "refresh_token"

// AuthHandler exposes login, refresh and logout endpoints.
type AuthHandler struct {
	auth          *service.AuthService
	metrics       *observability.Metrics
	logger        *zap.Logger
	secureCookies bool
}

// NewAuthHandler constructs the handler. secureCookies should be true in
// production so the refresh cookie is never sent over plain HTTP.
func NewAuthHandler(authService *service.AuthService, metrics *observability.Metrics, logger *zap.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: authService, metrics: metrics, logger: logger, secureCookies: secureCookies}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	corrID := observability.CorrelationID(c)

	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, pair, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.Increment(observability.CounterAuthFailures)
		h.logger.Warn("login failed",
			zap.String("correlation_id", corrID),
			zap.String("username", req.Username),
		)
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)

	h.metrics.Increment(observability.CounterAuthSuccesses)
	h.logger.Info("login successful",
		zap.String("correlation_id", corrID),
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserSummary{
				ID:        user.ID,
				Username:  user.Username,
				Role:      string(user.Role),
				CreatedAt: user.CreatedAt,
			},
			"auth": dto.AuthResponse{AccessToken: pair.AccessToken, ExpiresAt: pair.AccessExpiresAt},
		},
	})
}

// Refresh handles POST /api/auth/refresh. The refresh token comes from the
// HTTP-only cookie; a JSON body field is accepted as a fallback.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshCookieName)
	if refreshToken == "" {
		var req dto.RefreshRequest
		if err := c.BodyParser(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		return apperrors.NewUnauthorized("refresh token required")
	}

	user, token, exp, err := h.auth.Refresh(c.Context(), refreshToken)
	if err != nil {
		return err
	}

	h.logger.Debug("token refreshed",
		zap.String("correlation_id", observability.CorrelationID(c)),
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth": dto.AuthResponse{AccessToken: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /api/auth/logout by clearing the refresh cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context()); err != nil {
		return err
	}

	h.setRefreshCookie(c, "", time.Now().Add(-time.Hour))
	h.logger.Info("logout", zap.String("correlation_id", observability.CorrelationID(c)))
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": fiber.Map{"ok": true}})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Expires:  expires,
		Path:     "/api/auth",
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
