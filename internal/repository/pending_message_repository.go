package repository

import (
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"gorm.io/gorm"
)

// PendingMessageRepository is the durable offline-delivery queue for realtime
// frames that carry a persisted message (newMessage pushes).
type PendingMessageRepository struct {
	db *gorm.DB
}

func NewPendingMessageRepository(db *gorm.DB) *PendingMessageRepository {
	return &PendingMessageRepository{db: db}
}

// Enqueue stores a frame for userID. Duplicate (user, message) pairs are
// collapsed so a retried push never doubles in the queue.
func (r *PendingMessageRepository) Enqueue(userID, messageID uint, payload string, priority int) error {
	var count int64
	if err := r.db.Model(&models.PendingMessage{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(&models.PendingMessage{
		UserID:    userID,
		MessageID: messageID,
		Payload:   payload,
		Priority:  priority,
	}).Error
}

// GetPendingForUser returns the oldest frames first within each priority band.
func (r *PendingMessageRepository) GetPendingForUser(userID uint, limit int) ([]models.PendingMessage, error) {
	var pending []models.PendingMessage
	err := r.db.Where("user_id = ?", userID).
		Order("priority DESC, created_at ASC, id ASC").
		Limit(limit).
		Find(&pending).Error
	return pending, err
}

// GetRetryable returns frames whose backoff has elapsed.
func (r *PendingMessageRepository) GetRetryable(limit int) ([]models.PendingMessage, error) {
	var pending []models.PendingMessage
	err := r.db.Where("next_retry IS NOT NULL AND next_retry <= ?", time.Now()).
		Order("priority DESC, next_retry ASC").
		Limit(limit).
		Find(&pending).Error
	return pending, err
}

func (r *PendingMessageRepository) MarkAttempted(id uint, attempts int, nextRetry *time.Time) error {
	return r.db.Model(&models.PendingMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts":     attempts,
		"last_attempt": time.Now(),
		"next_retry":   nextRetry,
	}).Error
}

func (r *PendingMessageRepository) Delete(id uint) error {
	return r.db.Delete(&models.PendingMessage{}, id).Error
}

func (r *PendingMessageRepository) DeleteBatch(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.PendingMessage{}, ids).Error
}

// CleanupOld drops frames nobody picked up within olderThan.
func (r *PendingMessageRepository) CleanupOld(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return r.db.Where("created_at < ?", cutoff).Delete(&models.PendingMessage{}).Error
}
