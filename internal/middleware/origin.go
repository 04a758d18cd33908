package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/httpx"
)

// OriginAllowed rejects browser requests from origins outside the CSV list.
// Requests without an Origin header (CLI, TUI) and an empty list pass.
func OriginAllowed(allowedCSV string) fiber.Handler {
	allowed := SplitCSV(allowedCSV)
	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get("Origin"))
		if origin == "" || len(allowed) == 0 {
			return c.Next()
		}
		for _, a := range allowed {
			if a == origin {
				return c.Next()
			}
		}
		return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
	}
}

func SplitCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
