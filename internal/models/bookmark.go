package models

import (
	"time"
)

// Bookmark is a case-law document saved by a user. When CaseID is set the
// bookmark doubles as a precedent linked to that case record.
//
// Bookmarks are hard-deleted: the (user_id, doc_id) unique index must not be
// blocked by soft-deleted rows.
type Bookmark struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint   `gorm:"not null;uniqueIndex:idx_bookmark_user_doc" json:"user_id"`
	DocID  string `gorm:"type:varchar(32);not null;uniqueIndex:idx_bookmark_user_doc" json:"doc_id"`

	Title string   `gorm:"type:text" json:"title"`
	Court string   `gorm:"type:varchar(255)" json:"court"`
	Date  string   `gorm:"type:varchar(32)" json:"date"`
	Tags  []string `gorm:"type:text;serializer:json" json:"tags"`
	Notes string   `gorm:"type:text" json:"notes"`

	CaseID *string `gorm:"type:varchar(64);index" json:"case_id,omitempty"`

	// Object key of the archived document snapshot, empty when archiving is off.
	SnapshotKey string `gorm:"type:varchar(255)" json:"-"`
}

type BookmarkResponse struct {
	DocID       string    `json:"doc_id"`
	Title       string    `json:"title"`
	Court       string    `json:"court"`
	Date        string    `json:"date"`
	Tags        []string  `json:"tags"`
	Notes       string    `json:"notes"`
	CaseID      *string   `json:"case_id,omitempty"`
	HasSnapshot bool      `json:"has_snapshot"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (b *Bookmark) ToResponse() BookmarkResponse {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return BookmarkResponse{
		DocID:       b.DocID,
		Title:       b.Title,
		Court:       b.Court,
		Date:        b.Date,
		Tags:        tags,
		Notes:       b.Notes,
		CaseID:      b.CaseID,
		HasSnapshot: b.SnapshotKey != "",
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
