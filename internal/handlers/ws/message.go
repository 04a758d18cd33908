package ws

import (
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
)

var (
	ErrJoinMismatch  = errors.New("join user does not match the authenticated user")
	ErrInvalidTarget = errors.New("typing target is required and must not be yourself")
)

// MessageContext provides all dependencies needed for frame processing
type MessageContext struct {
	UserID uint
	Client *ClientConnection
	Hub    *Hub
}

// Process handles one decoded client frame. Server-only events sent by a
// client are rejected.
func Process(ctx *MessageContext, ev realtime.Event) error {
	switch e := ev.(type) {
	case *realtime.Join:
		if e.UserID != 0 && e.UserID != ctx.UserID {
			return ErrJoinMismatch
		}
		if err := ctx.Hub.SendOnlineList(ctx.UserID); err != nil {
			return errors.Wrap(err, "send online list")
		}
		go func() {
			if err := ctx.Hub.FlushPendingMessages(ctx.UserID); err != nil {
				logger.Warn("Failed to flush pending messages for user %d: %v", ctx.UserID, err)
			}
		}()
		return nil

	case *realtime.Typing:
		if e.TargetUserID == 0 || e.TargetUserID == ctx.UserID {
			return ErrInvalidTarget
		}
		ctx.Hub.Typing().Start(ctx.UserID, e.TargetUserID)
		return nil

	case *realtime.StopTyping:
		if e.TargetUserID == 0 || e.TargetUserID == ctx.UserID {
			return ErrInvalidTarget
		}
		ctx.Hub.Typing().Stop(ctx.UserID, e.TargetUserID)
		return nil

	case *realtime.Ping:
		return ctx.Client.sendEvent(&realtime.Pong{})

	case *realtime.Pong:
		return nil

	default:
		return errors.Errorf("unexpected client event %q", ev.EventType())
	}
}

// SendError sends an error frame to the client
func SendError(client *ClientConnection, code, message, details string) error {
	return client.sendEvent(&realtime.Error{
		Code:    code,
		Error:   message,
		Details: details,
	})
}
