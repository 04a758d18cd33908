package models

import (
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"gorm.io/gorm"
)

type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UUID chosen by the sending client; (client_id, sender_id) dedups resubmits.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	SenderID    uint `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender      User `gorm:"foreignKey:SenderID" json:"sender"`
	RecipientID uint `gorm:"not null;index" json:"recipient_id"`

	Content string `gorm:"type:text;not null" json:"content"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}

type MessageResponse struct {
	ID          uint         `json:"id"`
	ClientID    string       `json:"client_id"`
	SenderID    uint         `json:"sender_id"`
	Sender      *UserSummary `json:"sender,omitempty"`
	RecipientID uint         `json:"recipient_id"`
	Content     string       `json:"content"`
	IsRead      bool         `json:"is_read"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	resp := MessageResponse{
		ID:          m.ID,
		ClientID:    m.ClientID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
	if m.Sender.ID != 0 {
		s := m.Sender.ToSummary()
		resp.Sender = &s
	}
	return resp
}

// Peer returns the other party of a direct message from userID's point of view.
func (m *Message) Peer(userID uint) uint {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// ToEvent is the realtime wire shape of the message.
func (m *Message) ToEvent() realtime.Message {
	return realtime.Message{
		ID:          m.ID,
		ClientID:    m.ClientID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}
