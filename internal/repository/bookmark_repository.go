package repository

import (
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"gorm.io/gorm"
)

type BookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Create inserts a bookmark. A second bookmark for the same (user, doc) fails
// with gorm.ErrDuplicatedKey when the DB was opened with TranslateError.
func (r *BookmarkRepository) Create(bookmark *models.Bookmark) error {
	return r.db.Create(bookmark).Error
}

func (r *BookmarkRepository) Find(userID uint, docID string) (*models.Bookmark, error) {
	var b models.Bookmark
	err := r.db.Where("user_id = ? AND doc_id = ?", userID, docID).First(&b).Error
	return &b, err
}

func (r *BookmarkRepository) ListByUser(userID uint) ([]models.Bookmark, error) {
	var out []models.Bookmark
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *BookmarkRepository) ListByCase(userID uint, caseID string) ([]models.Bookmark, error) {
	var out []models.Bookmark
	err := r.db.Where("user_id = ? AND case_id = ?", userID, caseID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *BookmarkRepository) Update(bookmark *models.Bookmark) error {
	return r.db.Save(bookmark).Error
}

// Delete removes the bookmark and reports how many rows went away.
func (r *BookmarkRepository) Delete(userID uint, docID string) (int64, error) {
	res := r.db.Where("user_id = ? AND doc_id = ?", userID, docID).Delete(&models.Bookmark{})
	return res.RowsAffected, res.Error
}
