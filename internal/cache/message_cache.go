package cache

import (
	"fmt"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
)

const (
	ConversationTTL     = 5 * time.Minute
	ConversationListTTL = 2 * time.Minute
)

// MessageCache caches the latest page of each direct conversation and each
// user's conversation list.
type MessageCache struct {
	redis *RedisCache
}

func NewMessageCache(redis *RedisCache) *MessageCache {
	return &MessageCache{redis: redis}
}

func (mc *MessageCache) enabled() bool {
	return mc != nil && mc.redis != nil
}

// conversationKey is symmetric in its arguments.
func conversationKey(userID1, userID2 uint) string {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	return fmt.Sprintf("conv:%d:%d", userID1, userID2)
}

func conversationListKey(userID uint) string {
	return fmt.Sprintf("convlist:%d", userID)
}

func (mc *MessageCache) GetConversation(userID1, userID2 uint) ([]models.Message, bool) {
	if !mc.enabled() {
		return nil, false
	}
	var messages []models.Message
	ok, err := mc.redis.GetObject(conversationKey(userID1, userID2), &messages)
	if err != nil || !ok {
		return nil, false
	}
	return messages, true
}

func (mc *MessageCache) SetConversation(userID1, userID2 uint, messages []models.Message) error {
	if !mc.enabled() {
		return nil
	}
	return mc.redis.SetObject(conversationKey(userID1, userID2), messages, ConversationTTL)
}

// GetConversationList returns a cached list payload (already in response shape).
func (mc *MessageCache) GetConversationList(userID uint, out interface{}) bool {
	if !mc.enabled() {
		return false
	}
	ok, err := mc.redis.GetObject(conversationListKey(userID), out)
	return err == nil && ok
}

func (mc *MessageCache) SetConversationList(userID uint, list interface{}) error {
	if !mc.enabled() {
		return nil
	}
	return mc.redis.SetObject(conversationListKey(userID), list, ConversationListTTL)
}

// InvalidateDirect drops everything a new or read message makes stale: the
// pair's history and both parties' conversation lists.
func (mc *MessageCache) InvalidateDirect(userID1, userID2 uint) error {
	if !mc.enabled() {
		return nil
	}
	return mc.redis.Delete(
		conversationKey(userID1, userID2),
		conversationListKey(userID1),
		conversationListKey(userID2),
	)
}
