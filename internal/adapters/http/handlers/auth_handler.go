package handlers

import (
	"errors"
	"strings"
	"time"

	"clinicq/internal/config"
	"clinicq/internal/core/services"
	"clinicq/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles staff authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles staff login
// @Summary Login staff
// @Description Authenticate a staff member and return an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		case errors.Is(err, services.ErrStaffInactive):
			return response.Forbidden(c, "Staff account is inactive")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAccessCookie(c, result.AccessToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token": result.AccessToken,
		"staff":        result.Staff,
	})
}

// Logout handles staff logout
// @Summary Logout staff
// @Description Clear the access token cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearAccessCookie(c)
	return response.Success(c, "Logged out successfully", nil)
}

// Me returns the current staff member
// @Summary Get current staff
// @Description Get the currently authenticated staff member
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	staffID, ok := c.Locals("staffID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	staff, err := h.authService.GetStaffByID(c.Context(), staffID)
	if err != nil {
		return response.NotFound(c, "Staff account not found")
	}

	return response.Success(c, "Staff retrieved successfully", fiber.Map{
		"staff": staff.ToResponse(),
	})
}

// ChangePasswordRequest represents change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles changing the caller's own password
// @Summary Change password
// @Description Change the current staff member's password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	staffID, ok := c.Locals("staffID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" {
		return response.BadRequest(c, "Old password is required")
	}
	if len(req.NewPassword) < 8 {
		return response.BadRequest(c, "New password must be at least 8 characters")
	}

	if err := h.authService.ChangePassword(c.Context(), staffID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrOldPasswordWrong) {
			return response.BadRequest(c, "Old password is incorrect")
		}
		return response.InternalServerError(c, "Failed to change password")
	}

	return response.Success(c, "Password changed successfully", nil)
}

// setAccessCookie sets the access token cookie
func (h *AuthHandler) setAccessCookie(c *fiber.Ctx, accessToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.IsProd(),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// clearAccessCookie clears the access token cookie
func (h *AuthHandler) clearAccessCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.IsProd(),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
