package service

import (
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"gorm.io/gorm"
)

// MockMessageRepository is a mock implementation of MessageRepository for testing
type MockMessageRepository struct {
	messages map[uint]*models.Message
	nextID   uint
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	for _, existing := range m.messages {
		if existing.ClientID == message.ClientID && existing.SenderID == message.SenderID {
			return gorm.ErrDuplicatedKey
		}
	}
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) between(userID1, userID2 uint, below uint) []models.Message {
	var result []models.Message
	for _, msg := range m.messages {
		if below > 0 && msg.ID >= below {
			continue
		}
		if (msg.SenderID == userID1 && msg.RecipientID == userID2) || (msg.SenderID == userID2 && msg.RecipientID == userID1) {
			result = append(result, *msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func lastN(msgs []models.Message, n int) []models.Message {
	if len(msgs) > n {
		return msgs[len(msgs)-n:]
	}
	return msgs
}

func (m *MockMessageRepository) FindConversation(userID1, userID2 uint, limit int) ([]models.Message, error) {
	return lastN(m.between(userID1, userID2, 0), limit), nil
}

func (m *MockMessageRepository) FindConversationCursor(userID1, userID2 uint, cursor uint, limit int) ([]models.Message, error) {
	return lastN(m.between(userID1, userID2, cursor), limit), nil
}

func (m *MockMessageRepository) ListDirectConversations(userID uint, cursorCreatedAt *time.Time, cursorMessageID uint, limit int) ([]repository.ConversationRow, error) {
	return nil, nil
}

func (m *MockMessageRepository) MarkConversationAsRead(userID uint, peerID uint) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.SenderID == peerID && msg.RecipientID == userID && !msg.IsRead {
			msg.IsRead = true
			n++
		}
	}
	return n, nil
}

type pushed struct {
	userID    uint
	messageID uint
	ev        realtime.Event
}

type mockNotifier struct {
	sent []pushed
}

func (n *mockNotifier) SendToUserWithID(userID uint, messageID uint, ev realtime.Event) error {
	n.sent = append(n.sent, pushed{userID, messageID, ev})
	return nil
}

func newTestMessageService() (*MessageService, *MockMessageRepository, *mockNotifier) {
	users := NewMockUserRepository()
	users.Create(&models.User{Username: "riya"})
	users.Create(&models.User{Username: "arjun"})
	repo := NewMockMessageRepository()
	notifier := &mockNotifier{}
	return NewMessageService(repo, users, nil, notifier, 40), repo, notifier
}

// Tests for MessageService

func TestSendMessage(t *testing.T) {
	svc, _, notifier := newTestMessageService()

	tests := []struct {
		name    string
		input   SendMessageInput
		wantErr error
	}{
		{"Valid message", SendMessageInput{RecipientID: 2, Content: "  Hearing moved to Monday  "}, nil},
		{"Empty content", SendMessageInput{RecipientID: 2, Content: "   "}, ErrEmptyMessage},
		{"Too long", SendMessageInput{RecipientID: 2, Content: strings.Repeat("x", 41)}, ErrMessageTooLong},
		{"To self", SendMessageInput{RecipientID: 1, Content: "note"}, ErrInvalidRecipient},
		{"Unknown recipient", SendMessageInput{RecipientID: 99, Content: "hi"}, ErrInvalidRecipient},
		{"Malformed client id", SendMessageInput{RecipientID: 2, Content: "hi", ClientID: "nope"}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := svc.SendMessage(1, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SendMessage error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && msg.Content != "Hearing moved to Monday" {
				t.Errorf("SendMessage content = %q", msg.Content)
			}
		})
	}

	if len(notifier.sent) != 2 {
		t.Fatalf("pushes = %d, want 2 (recipient and sender)", len(notifier.sent))
	}
	if notifier.sent[0].userID != 2 || notifier.sent[1].userID != 1 {
		t.Errorf("push order = %d,%d; want 2,1", notifier.sent[0].userID, notifier.sent[1].userID)
	}
	if _, ok := notifier.sent[0].ev.(*realtime.NewMessage); !ok || notifier.sent[0].messageID == 0 {
		t.Errorf("push = %+v, want queued newMessage", notifier.sent[0])
	}
}

func TestSendMessageDeduplicatesClientID(t *testing.T) {
	svc, repo, notifier := newTestMessageService()
	clientID := uuid.NewString()

	first, err := svc.SendMessage(1, SendMessageInput{RecipientID: 2, Content: "draft", ClientID: clientID})
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	again, err := svc.SendMessage(1, SendMessageInput{RecipientID: 2, Content: "draft", ClientID: clientID})
	if err != nil {
		t.Fatalf("resubmit error: %v", err)
	}
	if again.ID != first.ID || len(repo.messages) != 1 {
		t.Errorf("resubmit created a duplicate: %d messages", len(repo.messages))
	}
	if len(notifier.sent) != 2 {
		t.Errorf("resubmit pushed again: %d pushes", len(notifier.sent))
	}
}

func TestGetConversation(t *testing.T) {
	svc, _, _ := newTestMessageService()
	for i := 0; i < 5; i++ {
		from, to := uint(1), uint(2)
		if i%2 == 1 {
			from, to = 2, 1
		}
		if _, err := svc.SendMessage(from, SendMessageInput{RecipientID: to, Content: "m"}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := svc.GetConversation(1, 2, 0, 0)
	if err != nil {
		t.Fatalf("GetConversation error: %v", err)
	}
	if len(all) != 5 || all[0].ID != 1 || all[4].ID != 5 {
		t.Errorf("GetConversation returned %d messages, want 5 in chronological order", len(all))
	}

	older, _ := svc.GetConversation(2, 1, 4, 2)
	if len(older) != 2 || older[0].ID != 2 || older[1].ID != 3 {
		t.Errorf("cursor page = %+v, want ids 2,3", older)
	}

	if _, err := svc.GetConversation(1, 1, 0, 0); !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("GetConversation(self) error = %v", err)
	}
}

func TestMarkConversationAsRead(t *testing.T) {
	svc, _, notifier := newTestMessageService()
	svc.SendMessage(2, SendMessageInput{RecipientID: 1, Content: "one"})
	svc.SendMessage(2, SendMessageInput{RecipientID: 1, Content: "two"})
	notifier.sent = nil

	n, err := svc.MarkConversationAsRead(1, 2)
	if err != nil || n != 2 {
		t.Fatalf("MarkConversationAsRead = (%d, %v), want (2, nil)", n, err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("pushes = %d, want 1", len(notifier.sent))
	}
	read, ok := notifier.sent[0].ev.(*realtime.MessagesRead)
	if !ok || notifier.sent[0].userID != 2 || read.RecipientID != 1 {
		t.Errorf("push = %+v, want messagesRead{recipientId:1} to user 2", notifier.sent[0])
	}
	if notifier.sent[0].messageID != 0 {
		t.Errorf("read receipt must not be queued")
	}

	n, _ = svc.MarkConversationAsRead(1, 2)
	if n != 0 || len(notifier.sent) != 1 {
		t.Errorf("second mark read changed %d rows and pushed %d times", n, len(notifier.sent))
	}
}
