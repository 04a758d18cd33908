package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/config"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/middleware"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSecret      = "test-secret-key-for-testing-only"
	DefaultPassword = "correct-horse-battery"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// OpenDB returns a migrated in-memory sqlite database private to the test.
func (h *TestHelper) OpenDB() *gorm.DB {
	h.t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(h.t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		h.t.Fatalf("open sqlite: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		h.t.Fatalf("migrate: %v", err)
	}
	h.t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func JWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     []byte(TestSecret),
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

// CreateTestUser stores a user whose password is DefaultPassword.
func (h *TestHelper) CreateTestUser(db *gorm.DB, username, role string) *models.User {
	h.t.Helper()
	if role == "" {
		role = models.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		h.t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Role:         role,
	}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		h.t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// AccessToken signs a token for user with the test secret.
func (h *TestHelper) AccessToken(user *models.User) string {
	h.t.Helper()
	token, _, err := middleware.IssueToken([]byte(TestSecret), user.ID, user.Email, user.Role, time.Hour)
	if err != nil {
		h.t.Fatalf("issue token: %v", err)
	}
	return token
}
