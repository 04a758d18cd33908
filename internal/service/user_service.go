package service

import (
	"strings"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/cache"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
)

type UserService struct {
	userRepo  repository.UserRepositoryInterface
	userCache *cache.UserCache
}

func NewUserService(userRepo repository.UserRepositoryInterface, userCache *cache.UserCache) *UserService {
	return &UserService{userRepo: userRepo, userCache: userCache}
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) SearchUsers(query string, limit int) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.UserSummary{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	users, err := s.userRepo.SearchUsers(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToSummary())
	}
	return out, nil
}

// ListUsers is the admin listing; page is zero-based.
func (s *UserService) ListUsers(page, pageSize int) ([]models.UserResponse, int64, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	if page < 0 {
		page = 0
	}
	users, total, err := s.userRepo.ListUsers(pageSize, page*pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out, total, nil
}

// SetOnline records presence in the database and the Redis mirror. It is
// driven by the realtime hub.
func (s *UserService) SetOnline(userID uint, online bool) {
	if err := s.userRepo.UpdateOnlineStatus(userID, online); err != nil {
		logger.Warn("presence: update user %d online=%v: %v", userID, online, err)
	}
	var err error
	if online {
		err = s.userCache.SetUserOnline(userID)
	} else {
		err = s.userCache.SetUserOffline(userID)
	}
	if err != nil {
		logger.Warn("presence: cache user %d online=%v: %v", userID, online, err)
	}
}

// Heartbeat extends the cached presence TTL.
func (s *UserService) Heartbeat(userID uint) {
	if err := s.userCache.RefreshUserOnline(userID); err != nil {
		logger.Debug("presence: refresh user %d: %v", userID, err)
	}
}

// CachedOnline reports the Redis presence view, which spans processes.
func (s *UserService) CachedOnline() ([]uint, error) {
	return s.userCache.GetOnlineUsers()
}
