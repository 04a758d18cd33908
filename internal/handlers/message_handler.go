package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/httpx"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.RecipientID == 0 {
		return httpx.BadRequest(c, "missing_recipient", "recipient_id is required")
	}

	message, err := h.messageService.SendMessage(userID, input)
	if err != nil {
		return respondError(c, err, "send_message_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(message.ToEvent())
}

// GetMessages returns the history with recipient_id, oldest first. An
// optional cursor pages backwards from a message id.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	recipientIDStr := c.Query("recipient_id")
	if recipientIDStr == "" {
		return httpx.BadRequest(c, "missing_recipient", "recipient_id is required")
	}
	recipientID, err := strconv.ParseUint(recipientIDStr, 10, 32)
	if err != nil {
		return httpx.BadRequest(c, "invalid_recipient", "Invalid recipient_id")
	}

	var cursor uint64
	if cursorStr := c.Query("cursor"); cursorStr != "" {
		if cursor, err = strconv.ParseUint(cursorStr, 10, 32); err != nil {
			return httpx.BadRequest(c, "invalid_cursor", "Invalid cursor")
		}
	}

	messages, err := h.messageService.GetConversation(userID, uint(recipientID), uint(cursor), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err, "get_messages_failed")
	}

	out := make([]realtime.Message, 0, len(messages))
	for i := range messages {
		out = append(out, messages[i].ToEvent())
	}
	return c.JSON(out)
}

// GetConversations lists one entry per peer, most recent first.
func (h *MessageHandler) GetConversations(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversations, err := h.messageService.ListConversations(userID)
	if err != nil {
		return respondError(c, err, "list_conversations_failed")
	}
	return c.JSON(conversations)
}

func (h *MessageHandler) MarkConversationRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	peerID, err := httpx.ParamUint(c, "peer_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_peer", "Invalid peer_id")
	}

	n, err := h.messageService.MarkConversationAsRead(userID, peerID)
	if err != nil {
		return respondError(c, err, "mark_read_failed")
	}
	return c.JSON(fiber.Map{"updated": n})
}
