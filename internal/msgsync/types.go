// Package msgsync keeps a portal user's direct-message view consistent: a
// recency-ordered conversation list, the active conversation's timeline, and
// presence and typing sets, all reconciled from REST fetches and the realtime
// event stream.
package msgsync

import (
	"context"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
)

// TypingIdle is how long after the last keystroke stopTyping is sent.
const TypingIdle = 2000 * time.Millisecond

// Message is the shape shared with the realtime protocol.
type Message = realtime.Message

// Conversation is one row of the conversation list.
type Conversation struct {
	PeerID      uint       `json:"peer_id"`
	Username    string     `json:"username"`
	FullName    string     `json:"full_name"`
	IsOnline    bool       `json:"is_online"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
	LastMessage Message    `json:"last_message"`
	UnreadCount int64      `json:"unread_count"`
}

// DisplayName prefers the full name.
func (c Conversation) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.Username
}

// API is the REST surface the engine needs.
type API interface {
	ListConversations(ctx context.Context) ([]Conversation, error)
	History(ctx context.Context, peerID uint) ([]Message, error)
	Send(ctx context.Context, recipientID uint, content, clientID string) (*Message, error)
	MarkRead(ctx context.Context, peerID uint) error
}

// Socket is one realtime connection. Events is closed when the connection
// ends.
type Socket interface {
	Send(ev realtime.Event) error
	Events() <-chan realtime.Event
	Close() error
}

// Dialer opens realtime connections for the current session.
type Dialer interface {
	Dial(ctx context.Context) (Socket, error)
}
