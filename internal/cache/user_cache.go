package cache

import (
	"fmt"
	"strconv"
	"time"
)

const (
	OnlineUsersTTL = 90 * time.Second // matches the hub's pong timeout
	onlineSetKey   = "online:users"
)

// UserCache mirrors hub presence into Redis so other processes (admin panel,
// future replicas) can read it.
type UserCache struct {
	redis *RedisCache
}

func NewUserCache(redis *RedisCache) *UserCache {
	return &UserCache{redis: redis}
}

func onlineKey(userID uint) string {
	return fmt.Sprintf("online:%d", userID)
}

func (uc *UserCache) SetUserOnline(userID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	if err := uc.redis.SetAdd(onlineSetKey, userID); err != nil {
		return err
	}
	return uc.redis.Set(onlineKey(userID), []byte("1"), OnlineUsersTTL)
}

func (uc *UserCache) SetUserOffline(userID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	if err := uc.redis.SetRemove(onlineSetKey, userID); err != nil {
		return err
	}
	return uc.redis.Delete(onlineKey(userID))
}

func (uc *UserCache) IsUserOnline(userID uint) bool {
	if uc == nil || uc.redis == nil {
		return false
	}
	return uc.redis.Exists(onlineKey(userID))
}

// RefreshUserOnline extends the per-user TTL; called on every pong.
func (uc *UserCache) RefreshUserOnline(userID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.Set(onlineKey(userID), []byte("1"), OnlineUsersTTL)
}

func (uc *UserCache) GetOnlineUsers() ([]uint, error) {
	if uc == nil || uc.redis == nil {
		return nil, nil
	}
	members, err := uc.redis.SetMembers(onlineSetKey)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}

func (uc *UserCache) GetOnlineCount() (int64, error) {
	if uc == nil || uc.redis == nil {
		return 0, nil
	}
	return uc.redis.SetCard(onlineSetKey)
}
