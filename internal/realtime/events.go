// Package realtime defines the wire protocol of the portal's realtime channel.
//
// Every frame is a JSON envelope {"type": <event>, "payload": {...}}. Payloads
// are closed Go types; consumers decode with Decode and switch on the concrete
// type instead of probing fields.
package realtime

import (
	"encoding/json"
	"time"
)

const (
	EventJoin            = "join"
	EventNewMessage      = "newMessage"
	EventMessagesRead    = "messagesRead"
	EventUserOnline      = "userOnline"
	EventUserOffline     = "userOffline"
	EventOnlineUsersList = "onlineUsersList"
	EventTyping          = "typing"
	EventStopTyping      = "stopTyping"
	EventSessionExpired  = "session_expired"
	EventPing            = "ping"
	EventPong            = "pong"
	EventError           = "error"
	EventBatch           = "batch"
)

// Event is implemented by every payload type.
type Event interface {
	EventType() string
}

// Envelope is the wire wrapper.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is the direct message shape shared by REST responses and socket pushes.
type Message struct {
	ID          uint      `json:"id"`
	ClientID    string    `json:"client_id,omitempty"`
	SenderID    uint      `json:"sender_id"`
	RecipientID uint      `json:"recipient_id"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Join is sent by a client right after connecting.
type Join struct {
	UserID uint `json:"userId"`
}

// NewMessage carries a persisted message to both of its parties.
type NewMessage struct {
	Message
}

// MessagesRead tells a sender that RecipientID has read the conversation.
type MessagesRead struct {
	RecipientID uint `json:"recipientId"`
}

type UserOnline struct {
	UserID uint `json:"userId"`
}

type UserOffline struct {
	UserID uint `json:"userId"`
}

// OnlineUsersList replaces the receiver's whole presence set.
type OnlineUsersList struct {
	UserIDs []uint `json:"userIds"`
}

// Typing flows both ways: clients set TargetUserID, the server relays it to
// the target with UserID set to the typist.
type Typing struct {
	UserID       uint `json:"userId,omitempty"`
	TargetUserID uint `json:"targetUserId,omitempty"`
}

type StopTyping struct {
	UserID       uint `json:"userId,omitempty"`
	TargetUserID uint `json:"targetUserId,omitempty"`
}

// SessionExpired is pushed to a connection that lost its session, either
// because the same user connected elsewhere or the token was revoked.
type SessionExpired struct {
	Reason string `json:"reason,omitempty"`
}

type Ping struct{}

type Pong struct{}

// Error reports a failed client frame.
type Error struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Batch wraps queued frames flushed to a reconnecting user.
type Batch struct {
	Messages []json.RawMessage `json:"messages"`
	Count    int               `json:"count"`
}

func (*Join) EventType() string            { return EventJoin }
func (*NewMessage) EventType() string      { return EventNewMessage }
func (*MessagesRead) EventType() string    { return EventMessagesRead }
func (*UserOnline) EventType() string      { return EventUserOnline }
func (*UserOffline) EventType() string     { return EventUserOffline }
func (*OnlineUsersList) EventType() string { return EventOnlineUsersList }
func (*Typing) EventType() string          { return EventTyping }
func (*StopTyping) EventType() string      { return EventStopTyping }
func (*SessionExpired) EventType() string  { return EventSessionExpired }
func (*Ping) EventType() string            { return EventPing }
func (*Pong) EventType() string            { return EventPong }
func (*Error) EventType() string           { return EventError }
func (*Batch) EventType() string           { return EventBatch }

// Ephemeral reports whether an event is worthless once its receiver is gone
// (it must never be queued for offline delivery).
func Ephemeral(eventType string) bool {
	switch eventType {
	case EventTyping, EventStopTyping, EventUserOnline, EventUserOffline,
		EventOnlineUsersList, EventPing, EventPong, EventError, EventSessionExpired:
		return true
	}
	return false
}
