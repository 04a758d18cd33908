package repository

import (
	"strings"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateOnlineStatus flips the online flag; going offline also stamps last_seen.
func (r *UserRepository) UpdateOnlineStatus(userID uint, isOnline bool) error {
	updates := map[string]interface{}{"is_online": isOnline}
	if !isOnline {
		updates["last_seen"] = time.Now()
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (r *UserRepository) SearchUsers(query string, limit int) ([]models.User, error) {
	var users []models.User

	q := "%" + strings.ToLower(query) + "%"
	err := r.db.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", q, q).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error

	return users, err
}

// ListUsers pages through accounts for the admin back-office.
func (r *UserRepository) ListUsers(limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}
