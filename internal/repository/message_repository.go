package repository

import (
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	return &message, err
}

// FindConversation returns the latest limit messages between two users in
// chronological order.
func (r *MessageRepository) FindConversation(userID1, userID2 uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error

	reverse(messages)
	return messages, err
}

// FindConversationCursor pages backwards from cursor (exclusive), chronological order.
func (r *MessageRepository) FindConversationCursor(userID1, userID2 uint, cursor uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)) AND id < ?",
			userID1, userID2, userID2, userID1, cursor).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error

	reverse(messages)
	return messages, err
}

// MarkConversationAsRead flags every unread message from peerID to userID.
func (r *MessageRepository) MarkConversationAsRead(userID uint, peerID uint) (int64, error) {
	res := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", peerID, userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func reverse(messages []models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
