package repository

import (
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
	UpdateOnlineStatus(userID uint, isOnline bool) error
	SearchUsers(query string, limit int) ([]models.User, error)
	ListUsers(limit, offset int) ([]models.User, int64, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	FindConversation(userID1, userID2 uint, limit int) ([]models.Message, error)
	FindConversationCursor(userID1, userID2 uint, cursor uint, limit int) ([]models.Message, error)
	ListDirectConversations(userID uint, cursorCreatedAt *time.Time, cursorMessageID uint, limit int) ([]ConversationRow, error)
	MarkConversationAsRead(userID uint, peerID uint) (int64, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	FindValidByHash(tokenHash string) (*models.RefreshToken, error)
	RevokeByHash(tokenHash string) error
	RevokeAllForUser(userID uint) error
}

// PendingMessageRepositoryInterface defines the contract for pending message queue operations
type PendingMessageRepositoryInterface interface {
	Enqueue(userID, messageID uint, payload string, priority int) error
	GetPendingForUser(userID uint, limit int) ([]models.PendingMessage, error)
	GetRetryable(limit int) ([]models.PendingMessage, error)
	MarkAttempted(id uint, attempts int, nextRetry *time.Time) error
	Delete(id uint) error
	DeleteBatch(ids []uint) error
	CleanupOld(olderThan time.Duration) error
}

// BookmarkRepositoryInterface defines the contract for bookmark / precedent operations
type BookmarkRepositoryInterface interface {
	Create(bookmark *models.Bookmark) error
	Find(userID uint, docID string) (*models.Bookmark, error)
	ListByUser(userID uint) ([]models.Bookmark, error)
	ListByCase(userID uint, caseID string) ([]models.Bookmark, error)
	Update(bookmark *models.Bookmark) error
	Delete(userID uint, docID string) (int64, error)
}
