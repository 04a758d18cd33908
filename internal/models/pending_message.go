package models

import (
	"time"
)

// PendingMessage is a realtime payload queued for a user who was offline (or
// whose socket write failed) when it was produced.
type PendingMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"not null;index:idx_pending_user_priority" json:"user_id"`

	MessageID uint    `gorm:"not null" json:"message_id"`
	Message   Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE;" json:"-"`

	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastAttempt *time.Time `json:"last_attempt"`
	NextRetry   *time.Time `gorm:"index" json:"next_retry"`

	Priority int `gorm:"default:0;index:idx_pending_user_priority" json:"priority"`

	// Encoded realtime envelope, stored as-is to avoid joins on delivery.
	Payload string `gorm:"type:text" json:"payload"`
}
