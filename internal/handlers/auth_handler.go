package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/httpx"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		return httpx.BadRequest(c, "missing_fields", "Email, username, and password are required")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		return respondError(c, err, "register_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login issues a new session and revokes every older refresh token; the
// realtime hub expires the previous socket when the new one connects.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return respondError(c, err, "login_failed")
	}

	return c.JSON(result)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input refreshInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	token := strings.TrimSpace(input.RefreshToken)
	if token == "" {
		return httpx.BadRequest(c, "missing_refresh_token", "refresh_token is required")
	}

	result, err := h.authService.RefreshSession(token)
	if err != nil {
		return respondError(c, err, "refresh_failed")
	}
	return c.JSON(result)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input refreshInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if err := h.authService.Logout(strings.TrimSpace(input.RefreshToken)); err != nil {
		return respondError(c, err, "logout_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
