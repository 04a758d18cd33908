package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/service"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
)

// OnlineLister reports users connected to this process.
type OnlineLister interface {
	GetOnlineUsers() []uint
	Count() int
}

type AdminHandler struct {
	userService *service.UserService
	online      OnlineLister
}

func NewAdminHandler(userService *service.UserService, online OnlineLister) *AdminHandler {
	return &AdminHandler{userService: userService, online: online}
}

// ListUsers pages through all accounts; page is zero-based.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	pageSize := c.QueryInt("page_size", 50)

	users, total, err := h.userService.ListUsers(page, pageSize)
	if err != nil {
		return respondError(c, err, "list_users_failed")
	}
	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
	})
}

// Presence compares this process's sockets with the Redis presence view.
func (h *AdminHandler) Presence(c *fiber.Ctx) error {
	cached, err := h.userService.CachedOnline()
	if err != nil {
		logger.Warn("admin presence: redis view unavailable: %v", err)
	}
	if cached == nil {
		cached = []uint{}
	}
	return c.JSON(fiber.Map{
		"connected":   h.online.GetOnlineUsers(),
		"connections": h.online.Count(),
		"cached":      cached,
	})
}
