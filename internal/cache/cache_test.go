package cache

import (
	"testing"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
)

// Every typed cache must behave as a miss when Redis is not configured.
func TestCachesWithoutRedis(t *testing.T) {
	mc := NewMessageCache(nil)
	if _, ok := mc.GetConversation(1, 2); ok {
		t.Errorf("GetConversation hit without redis")
	}
	if err := mc.SetConversation(1, 2, []models.Message{{ID: 1}}); err != nil {
		t.Errorf("SetConversation error: %v", err)
	}
	var list []string
	if mc.GetConversationList(1, &list) {
		t.Errorf("GetConversationList hit without redis")
	}
	if err := mc.InvalidateDirect(1, 2); err != nil {
		t.Errorf("InvalidateDirect error: %v", err)
	}

	var nilCache *MessageCache
	if _, ok := nilCache.GetConversation(1, 2); ok {
		t.Errorf("nil MessageCache reported a hit")
	}

	uc := NewUserCache(nil)
	if err := uc.SetUserOnline(3); err != nil {
		t.Errorf("SetUserOnline error: %v", err)
	}
	if uc.IsUserOnline(3) {
		t.Errorf("IsUserOnline true without redis")
	}
	if ids, err := uc.GetOnlineUsers(); err != nil || ids != nil {
		t.Errorf("GetOnlineUsers = (%v, %v), want (nil, nil)", ids, err)
	}

	dc := NewDocumentCache(nil, 0)
	var doc struct{ HTML string }
	if dc.GetDocument("55", &doc) {
		t.Errorf("GetDocument hit without redis")
	}
	if err := dc.SetMeta("55", doc); err != nil {
		t.Errorf("SetMeta error: %v", err)
	}
}

func TestConversationKeyIsSymmetric(t *testing.T) {
	if conversationKey(3, 9) != conversationKey(9, 3) {
		t.Errorf("conversationKey not symmetric: %q vs %q", conversationKey(3, 9), conversationKey(9, 3))
	}
	if got := docKey("meta", "55"); got != "caselaw:meta:55" {
		t.Errorf("docKey = %q", got)
	}
}
