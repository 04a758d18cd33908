package handlers

import (
	"os"

	"github.com/gofiber/websocket/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/handlers/ws"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
)

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// GetHub returns the hub instance (useful for sending messages from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		_ = c.Close()
		return
	}
	wsDebug := os.Getenv("WS_DEBUG") == "true"

	// Check if client supports gzip compression (via query param or header)
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	client := h.hub.Register(userID, c, supportsGzip)
	defer h.hub.Unregister(userID, client)

	logger.Info("User %d connected via WebSocket", userID)

	ctx := &ws.MessageContext{
		UserID: userID,
		Client: client,
		Hub:    h.hub,
	}

	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			logger.Debug("Error reading message from user %d: %v", userID, err)
			break
		}

		if wsDebug {
			logger.Debug("ws_recv user_id=%d frame_type=%d size=%d", userID, messageType, len(messageBytes))
		}

		// Decompress if binary message (gzip compressed)
		if messageType == websocket.BinaryMessage {
			decompressed, err := realtime.Decompress(messageBytes)
			if err != nil {
				logger.Warn("Error decompressing message from user %d: %v", userID, err)
				_ = ws.SendError(client, "decompression_failed", "Failed to decompress message", err.Error())
				continue
			}
			messageBytes = decompressed
		}

		ev, err := realtime.Decode(messageBytes)
		if err != nil {
			logger.Warn("Error decoding message from user %d: %v", userID, err)
			_ = ws.SendError(client, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := ws.Process(ctx, ev); err != nil {
			logger.Warn("Error processing %s from user %d: %v", ev.EventType(), userID, err)
			_ = ws.SendError(client, "processing_failed", "Failed to process message", err.Error())
		}
	}

	logger.Info("User %d disconnected from WebSocket", userID)
}
