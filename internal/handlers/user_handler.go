package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/httpx"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetCurrentUser returns the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return respondError(c, err, "get_user_failed")
	}
	return c.JSON(user.ToResponse())
}

// SearchUsers finds people to start a conversation with.
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.userService.SearchUsers(c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err, "search_users_failed")
	}
	return c.JSON(users)
}
