package service

import (
	"context"
	"errors"
	"strings"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/validation"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"gorm.io/gorm"
)

// SnapshotArchiver keeps a copy of bookmarked document bodies.
type SnapshotArchiver interface {
	Put(ctx context.Context, userID uint, docID string, html string) (string, error)
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// DocumentFetcher loads a rewritten document for archiving.
type DocumentFetcher interface {
	Document(ctx context.Context, id string) (*caselaw.Document, error)
}

type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepositoryInterface
	snapshots    SnapshotArchiver
	docs         DocumentFetcher
}

// NewBookmarkService builds the service; snapshots and docs may be nil, which
// disables archiving.
func NewBookmarkService(bookmarkRepo repository.BookmarkRepositoryInterface, snapshots SnapshotArchiver, docs DocumentFetcher) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo, snapshots: snapshots, docs: docs}
}

func normalizeCaseID(caseID *string) (*string, error) {
	if caseID == nil {
		return nil, nil
	}
	id := strings.TrimSpace(*caseID)
	if id == "" {
		return nil, nil
	}
	if !validation.ValidCaseID(id) {
		return nil, ErrInvalidInput
	}
	return &id, nil
}

func (s *BookmarkService) Create(ctx context.Context, userID uint, in caselaw.BookmarkInput) (*models.Bookmark, error) {
	docID := strings.TrimSpace(in.DocID)
	if !validation.ValidDocID(docID) {
		return nil, ErrInvalidInput
	}
	caseID, err := normalizeCaseID(in.CaseID)
	if err != nil {
		return nil, err
	}

	bookmark := &models.Bookmark{
		UserID: userID,
		DocID:  docID,
		Title:  validation.TrimAndLimit(in.Title, 500),
		Court:  validation.TrimAndLimit(in.Court, 255),
		Date:   validation.TrimAndLimit(in.Date, 32),
		Tags:   validation.NormalizeTags(in.Tags),
		Notes:  validation.TrimAndLimit(in.Notes, validation.MaxNotesLength),
		CaseID: caseID,
	}
	if err := s.bookmarkRepo.Create(bookmark); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBookmarkExists
		}
		return nil, err
	}

	s.archive(ctx, bookmark)
	return bookmark, nil
}

// archive stores a snapshot of the document; failures only cost the copy.
func (s *BookmarkService) archive(ctx context.Context, b *models.Bookmark) {
	if s.snapshots == nil || s.docs == nil {
		return
	}
	doc, err := s.docs.Document(ctx, b.DocID)
	if err != nil {
		logger.Warn("bookmark snapshot: fetch doc %s: %v", b.DocID, err)
		return
	}
	key, err := s.snapshots.Put(ctx, b.UserID, b.DocID, doc.HTML)
	if err != nil {
		logger.Warn("bookmark snapshot: store doc %s: %v", b.DocID, err)
		return
	}
	b.SnapshotKey = key
	if err := s.bookmarkRepo.Update(b); err != nil {
		logger.Warn("bookmark snapshot: save key for doc %s: %v", b.DocID, err)
	}
}

func (s *BookmarkService) find(userID uint, docID string) (*models.Bookmark, error) {
	b, err := s.bookmarkRepo.Find(userID, docID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BookmarkService) List(userID uint) ([]models.Bookmark, error) {
	return s.bookmarkRepo.ListByUser(userID)
}

// ListPrecedents returns the bookmarks linked to caseID.
func (s *BookmarkService) ListPrecedents(userID uint, caseID string) ([]models.Bookmark, error) {
	if !validation.ValidCaseID(caseID) {
		return nil, ErrInvalidInput
	}
	return s.bookmarkRepo.ListByCase(userID, caseID)
}

// Update edits notes, tags and the linked case in place.
func (s *BookmarkService) Update(userID uint, docID string, upd caselaw.BookmarkUpdate) (*models.Bookmark, error) {
	b, err := s.find(userID, docID)
	if err != nil {
		return nil, err
	}
	if upd.Notes != nil {
		b.Notes = validation.TrimAndLimit(*upd.Notes, validation.MaxNotesLength)
	}
	if upd.Tags != nil {
		b.Tags = validation.NormalizeTags(*upd.Tags)
	}
	if upd.CaseID != nil {
		if b.CaseID, err = normalizeCaseID(upd.CaseID); err != nil {
			return nil, err
		}
	}
	if err := s.bookmarkRepo.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookmarkService) Delete(ctx context.Context, userID uint, docID string) error {
	b, err := s.find(userID, docID)
	if err != nil {
		return err
	}
	n, err := s.bookmarkRepo.Delete(userID, docID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if b.SnapshotKey != "" && s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, b.SnapshotKey); err != nil {
			logger.Warn("bookmark snapshot: delete %s: %v", b.SnapshotKey, err)
		}
	}
	return nil
}

// Snapshot returns the archived HTML of a bookmarked document.
func (s *BookmarkService) Snapshot(ctx context.Context, userID uint, docID string) (string, error) {
	b, err := s.find(userID, docID)
	if err != nil {
		return "", err
	}
	if b.SnapshotKey == "" || s.snapshots == nil {
		return "", ErrNotFound
	}
	return s.snapshots.Get(ctx, b.SnapshotKey)
}
