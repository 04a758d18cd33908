package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/httpx"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/service"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
)

// respondError maps service sentinels onto the HTTP error envelope. Anything
// unrecognised is logged and reported as code with a 500.
func respondError(c *fiber.Ctx, err error, code string) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return httpx.BadRequest(c, "invalid_input", "Invalid input")
	case errors.Is(err, service.ErrEmptyMessage):
		return httpx.BadRequest(c, "missing_content", "Content is required")
	case errors.Is(err, service.ErrMessageTooLong):
		return httpx.BadRequest(c, "content_too_long", "Message is too long")
	case errors.Is(err, service.ErrInvalidRecipient):
		return httpx.BadRequest(c, "invalid_recipient", "Invalid recipient")
	case errors.Is(err, service.ErrInvalidCredentials):
		return httpx.Unauthorized(c, "invalid_credentials", "Invalid email or password")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return httpx.Unauthorized(c, "invalid_refresh_token", "Invalid or expired refresh token")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, caselaw.ErrNotFound):
		return httpx.NotFound(c, "not_found", "Not found")
	case errors.Is(err, service.ErrEmailTaken):
		return httpx.Conflict(c, "email_taken", "Email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		return httpx.Conflict(c, "username_taken", "Username already taken")
	case errors.Is(err, service.ErrBookmarkExists):
		return httpx.Conflict(c, "already_bookmarked", "Document is already bookmarked")
	case errors.Is(err, service.ErrMissingEmbeddings):
		return httpx.Unprocessable(c, "missing_embeddings", "Case has no embeddings yet")
	case errors.Is(err, service.ErrSuggestDisabled):
		return httpx.Unavailable(c, "suggestions_disabled", "Precedent suggestions are not configured")
	}
	logger.WithFields(logger.Fields{"code": code, "path": c.Path()}).Errorf("request failed: %v", err)
	return httpx.Internal(c, code)
}

// upstreamError is respondError for calls that reach the case-law provider:
// unknown failures are the provider's, not ours.
func upstreamError(c *fiber.Ctx, err error, code string) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNotFound),
		errors.Is(err, caselaw.ErrNotFound), errors.Is(err, service.ErrMissingEmbeddings),
		errors.Is(err, service.ErrSuggestDisabled):
		return respondError(c, err, code)
	}
	logger.WithFields(logger.Fields{"code": code, "path": c.Path()}).Warnf("upstream failed: %v", err)
	return httpx.BadGateway(c, code)
}
