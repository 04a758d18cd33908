package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/httpx"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/service"
)

// CaseLawHandler serves the document gateway, bookmarks and precedents.
type CaseLawHandler struct {
	caseLaw   *service.CaseLawService
	bookmarks *service.BookmarkService
}

func NewCaseLawHandler(caseLaw *service.CaseLawService, bookmarks *service.BookmarkService) *CaseLawHandler {
	return &CaseLawHandler{caseLaw: caseLaw, bookmarks: bookmarks}
}

func (h *CaseLawHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return httpx.BadRequest(c, "missing_query", "q is required")
	}
	page, err := h.caseLaw.Search(c.UserContext(), query, c.QueryInt("page", 0))
	if err != nil {
		return upstreamError(c, err, "search_failed")
	}
	return c.JSON(page)
}

func (h *CaseLawHandler) GetDocument(c *fiber.Ctx) error {
	doc, err := h.caseLaw.Document(c.UserContext(), c.Params("id"))
	if err != nil {
		return upstreamError(c, err, "get_document_failed")
	}
	return c.JSON(doc)
}

func (h *CaseLawHandler) GetMeta(c *fiber.Ctx) error {
	meta, err := h.caseLaw.Meta(c.UserContext(), c.Params("id"))
	if err != nil {
		return upstreamError(c, err, "get_meta_failed")
	}
	return c.JSON(meta)
}

func bookmarkResponses(list []models.Bookmark) []models.BookmarkResponse {
	out := make([]models.BookmarkResponse, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToResponse())
	}
	return out
}

func (h *CaseLawHandler) ListBookmarks(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	list, err := h.bookmarks.List(userID)
	if err != nil {
		return respondError(c, err, "list_bookmarks_failed")
	}
	return c.JSON(bookmarkResponses(list))
}

// CreateBookmark answers 409 already_bookmarked for a duplicate.
func (h *CaseLawHandler) CreateBookmark(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	var input caselaw.BookmarkInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	b, err := h.bookmarks.Create(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, err, "create_bookmark_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(b.ToResponse())
}

func (h *CaseLawHandler) UpdateBookmark(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	var upd caselaw.BookmarkUpdate
	if err := c.BodyParser(&upd); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	b, err := h.bookmarks.Update(userID, c.Params("doc_id"), upd)
	if err != nil {
		return respondError(c, err, "update_bookmark_failed")
	}
	return c.JSON(b.ToResponse())
}

func (h *CaseLawHandler) DeleteBookmark(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	if err := h.bookmarks.Delete(c.UserContext(), userID, c.Params("doc_id")); err != nil {
		return respondError(c, err, "delete_bookmark_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSnapshot serves the archived copy of a bookmarked document.
func (h *CaseLawHandler) GetSnapshot(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	html, err := h.bookmarks.Snapshot(c.UserContext(), userID, c.Params("doc_id"))
	if err != nil {
		return respondError(c, err, "get_snapshot_failed")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

func (h *CaseLawHandler) ListPrecedents(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	list, err := h.bookmarks.ListPrecedents(userID, c.Params("case_id"))
	if err != nil {
		return respondError(c, err, "list_precedents_failed")
	}
	return c.JSON(bookmarkResponses(list))
}

// SuggestPrecedents answers 422 missing_embeddings until the case is indexed.
func (h *CaseLawHandler) SuggestPrecedents(c *fiber.Ctx) error {
	suggestions, err := h.caseLaw.Suggest(c.UserContext(), c.Params("case_id"), c.QueryInt("limit", 0))
	if err != nil {
		return upstreamError(c, err, "suggest_precedents_failed")
	}
	return c.JSON(fiber.Map{"suggestions": suggestions})
}
