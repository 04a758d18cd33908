package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/middleware"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
)

// Routes bundles the handlers mounted by Mount.
type Routes struct {
	Auth      *AuthHandler
	User      *UserHandler
	Message   *MessageHandler
	CaseLaw   *CaseLawHandler
	Admin     *AdminHandler
	WebSocket *WebSocketHandler

	JWTSecret      []byte
	AllowedOrigins string
	// AuthRateLimit caps auth requests per client per minute; 0 disables it.
	AuthRateLimit int
}

func (r *Routes) Mount(app *fiber.App) {
	api := app.Group("/api", middleware.OriginAllowed(r.AllowedOrigins))

	authLimits := []fiber.Handler{}
	if r.AuthRateLimit > 0 {
		authLimits = append(authLimits, limiter.New(limiter.Config{
			Max:        r.AuthRateLimit,
			Expiration: time.Minute,
		}))
	}
	auth := api.Group("/auth", authLimits...)
	auth.Post("/register", r.Auth.Register)
	auth.Post("/login", r.Auth.Login)
	auth.Post("/refresh", r.Auth.Refresh)
	auth.Post("/logout", r.Auth.Logout)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(r.JWTSecret))
	protected.Get("/users/me", r.User.GetCurrentUser)
	protected.Get("/users/search", r.User.SearchUsers)
	protected.Get("/conversations", r.Message.GetConversations)
	protected.Post("/conversations/:peer_id/read", r.Message.MarkConversationRead)
	protected.Get("/messages", r.Message.GetMessages)
	protected.Post("/messages", r.Message.SendMessage)

	protected.Get("/caselaw/search", r.CaseLaw.Search)
	protected.Get("/caselaw/docs/:id", r.CaseLaw.GetDocument)
	protected.Get("/caselaw/docs/:id/meta", r.CaseLaw.GetMeta)
	protected.Get("/caselaw/bookmarks", r.CaseLaw.ListBookmarks)
	protected.Post("/caselaw/bookmarks", r.CaseLaw.CreateBookmark)
	protected.Put("/caselaw/bookmarks/:doc_id", r.CaseLaw.UpdateBookmark)
	protected.Delete("/caselaw/bookmarks/:doc_id", r.CaseLaw.DeleteBookmark)
	protected.Get("/caselaw/bookmarks/:doc_id/snapshot", r.CaseLaw.GetSnapshot)
	protected.Get("/cases/:case_id/precedents", r.CaseLaw.ListPrecedents)
	protected.Post("/cases/:case_id/precedents/suggest", r.CaseLaw.SuggestPrecedents)

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", r.Admin.ListUsers)
	admin.Get("/presence", r.Admin.Presence)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(r.AllowedOrigins),
		middleware.AuthRequired(r.JWTSecret),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(r.WebSocket.HandleWebSocket))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"clients": r.WebSocket.GetHub().Count(),
		})
	})
}
