package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/cache"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// Notifier pushes realtime events to a user, queueing them for later
// delivery when messageID is set and the user is offline.
type Notifier interface {
	SendToUserWithID(userID uint, messageID uint, ev realtime.Event) error
}

type MessageService struct {
	messageRepo  repository.MessageRepositoryInterface
	userRepo     repository.UserRepositoryInterface
	messageCache *cache.MessageCache
	notifier     Notifier
	maxLength    int
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	messageCache *cache.MessageCache,
	notifier Notifier,
	maxLength int,
) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		userRepo:     userRepo,
		messageCache: messageCache,
		notifier:     notifier,
		maxLength:    maxLength,
	}
}

type SendMessageInput struct {
	RecipientID uint   `json:"recipient_id"`
	Content     string `json:"content"`
	ClientID    string `json:"client_id"`
}

// ConversationResponse is one row of the conversation list.
type ConversationResponse struct {
	PeerID      uint             `json:"peer_id"`
	Username    string           `json:"username"`
	FullName    string           `json:"full_name"`
	IsOnline    bool             `json:"is_online"`
	LastSeen    *time.Time       `json:"last_seen,omitempty"`
	LastMessage realtime.Message `json:"last_message"`
	UnreadCount int64            `json:"unread_count"`
}

// SendMessage persists a direct message and pushes newMessage to both
// parties. Resubmitting the same client_id returns the stored message
// without a second push.
func (s *MessageService) SendMessage(senderID uint, input SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	switch {
	case content == "":
		return nil, ErrEmptyMessage
	case s.maxLength > 0 && utf8.RuneCountInString(content) > s.maxLength:
		return nil, ErrMessageTooLong
	case input.RecipientID == 0 || input.RecipientID == senderID:
		return nil, ErrInvalidRecipient
	}

	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		clientID = uuid.NewString()
	} else if _, err := uuid.Parse(clientID); err != nil {
		return nil, ErrInvalidInput
	} else if existing, err := s.messageRepo.FindByClientID(clientID, senderID); err == nil {
		return existing, nil
	}

	if _, err := s.userRepo.FindByID(input.RecipientID); err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidRecipient
		}
		return nil, err
	}

	message := &models.Message{
		ClientID:    clientID,
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		Content:     content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.messageRepo.FindByClientID(clientID, senderID)
		}
		return nil, err
	}

	stored, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		return nil, err
	}

	if err := s.messageCache.InvalidateDirect(senderID, input.RecipientID); err != nil {
		logger.Warn("message cache invalidate %d/%d: %v", senderID, input.RecipientID, err)
	}

	ev := &realtime.NewMessage{Message: stored.ToEvent()}
	for _, uid := range []uint{input.RecipientID, senderID} {
		if err := s.notifier.SendToUserWithID(uid, stored.ID, ev); err != nil {
			logger.Warn("push newMessage %d to user %d: %v", stored.ID, uid, err)
		}
	}
	return stored, nil
}

// GetConversation returns the history with peerID in chronological order.
// cursor pages backwards: only messages with id < cursor are returned.
func (s *MessageService) GetConversation(userID, peerID uint, cursor uint, limit int) ([]models.Message, error) {
	if peerID == 0 || peerID == userID {
		return nil, ErrInvalidRecipient
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	if cursor > 0 {
		return s.messageRepo.FindConversationCursor(userID, peerID, cursor, limit)
	}

	if limit == defaultHistoryLimit {
		if cached, ok := s.messageCache.GetConversation(userID, peerID); ok {
			return cached, nil
		}
	}
	messages, err := s.messageRepo.FindConversation(userID, peerID, limit)
	if err != nil {
		return nil, err
	}
	if limit == defaultHistoryLimit {
		if err := s.messageCache.SetConversation(userID, peerID, messages); err != nil {
			logger.Debug("message cache set %d/%d: %v", userID, peerID, err)
		}
	}
	return messages, nil
}

// ListConversations returns one entry per peer, most recent activity first.
func (s *MessageService) ListConversations(userID uint) ([]ConversationResponse, error) {
	var cached []ConversationResponse
	if s.messageCache.GetConversationList(userID, &cached) {
		return cached, nil
	}

	rows, err := s.messageRepo.ListDirectConversations(userID, nil, 0, maxHistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]ConversationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ConversationResponse{
			PeerID:   r.PeerID,
			Username: r.PeerUsername,
			FullName: r.PeerFullName,
			IsOnline: r.PeerIsOnline,
			LastSeen: r.PeerLastSeen,
			LastMessage: realtime.Message{
				ID:          r.MessageID,
				SenderID:    r.MessageSenderID,
				RecipientID: r.MessageRecipientID,
				Content:     r.MessageContent,
				IsRead:      r.MessageIsRead,
				CreatedAt:   r.MessageCreatedAt,
			},
			UnreadCount: r.UnreadCount,
		})
	}
	if err := s.messageCache.SetConversationList(userID, out); err != nil {
		logger.Debug("conversation list cache set %d: %v", userID, err)
	}
	return out, nil
}

// MarkConversationAsRead flags every message from peerID to userID as read
// and, when anything changed, tells peerID with messagesRead.
func (s *MessageService) MarkConversationAsRead(userID, peerID uint) (int64, error) {
	if peerID == 0 || peerID == userID {
		return 0, ErrInvalidRecipient
	}
	n, err := s.messageRepo.MarkConversationAsRead(userID, peerID)
	if err != nil || n == 0 {
		return n, err
	}
	if err := s.messageCache.InvalidateDirect(userID, peerID); err != nil {
		logger.Warn("message cache invalidate %d/%d: %v", userID, peerID, err)
	}
	if err := s.notifier.SendToUserWithID(peerID, 0, &realtime.MessagesRead{RecipientID: userID}); err != nil {
		logger.Debug("push messagesRead to user %d: %v", peerID, err)
	}
	return n, nil
}
