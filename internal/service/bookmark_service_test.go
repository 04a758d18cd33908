package service

import (
	"context"
	"errors"
	"testing"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"gorm.io/gorm"
)

// MockBookmarkRepository enforces the (user, doc) uniqueness of the real table.
type MockBookmarkRepository struct {
	rows   map[string]*models.Bookmark
	nextID uint
}

func NewMockBookmarkRepository() *MockBookmarkRepository {
	return &MockBookmarkRepository{rows: make(map[string]*models.Bookmark), nextID: 1}
}

func bookmarkKey(userID uint, docID string) string {
	return string(rune('0'+userID)) + ":" + docID
}

func (m *MockBookmarkRepository) Create(b *models.Bookmark) error {
	key := bookmarkKey(b.UserID, b.DocID)
	if _, ok := m.rows[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	b.ID = m.nextID
	m.nextID++
	m.rows[key] = b
	return nil
}

func (m *MockBookmarkRepository) Find(userID uint, docID string) (*models.Bookmark, error) {
	if b, ok := m.rows[bookmarkKey(userID, docID)]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockBookmarkRepository) ListByUser(userID uint) ([]models.Bookmark, error) {
	var out []models.Bookmark
	for _, b := range m.rows {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *MockBookmarkRepository) ListByCase(userID uint, caseID string) ([]models.Bookmark, error) {
	var out []models.Bookmark
	for _, b := range m.rows {
		if b.UserID == userID && b.CaseID != nil && *b.CaseID == caseID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *MockBookmarkRepository) Update(b *models.Bookmark) error {
	m.rows[bookmarkKey(b.UserID, b.DocID)] = b
	return nil
}

func (m *MockBookmarkRepository) Delete(userID uint, docID string) (int64, error) {
	key := bookmarkKey(userID, docID)
	if _, ok := m.rows[key]; !ok {
		return 0, nil
	}
	delete(m.rows, key)
	return 1, nil
}

type memorySnapshots struct {
	objects map[string]string
}

func (s *memorySnapshots) Put(_ context.Context, userID uint, docID string, html string) (string, error) {
	key := "snapshots/" + bookmarkKey(userID, docID)
	s.objects[key] = html
	return key, nil
}

func (s *memorySnapshots) Get(_ context.Context, key string) (string, error) {
	html, ok := s.objects[key]
	if !ok {
		return "", errors.New("no such key")
	}
	return html, nil
}

func (s *memorySnapshots) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type staticDocs struct{}

func (staticDocs) Document(_ context.Context, id string) (*caselaw.Document, error) {
	return &caselaw.Document{ID: id, HTML: "<p>judgment " + id + "</p>"}, nil
}

func TestBookmarkCreateAndConflict(t *testing.T) {
	repo := NewMockBookmarkRepository()
	svc := NewBookmarkService(repo, nil, nil)
	ctx := context.Background()
	caseID := " case-17 "

	b, err := svc.Create(ctx, 1, caselaw.BookmarkInput{DocID: "55", Title: " Kesavananda ", Tags: []string{"Basic Structure", "basic structure"}, CaseID: &caseID})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if b.Title != "Kesavananda" || len(b.Tags) != 1 || *b.CaseID != "case-17" {
		t.Errorf("Create stored %+v", b)
	}

	if _, err := svc.Create(ctx, 1, caselaw.BookmarkInput{DocID: "55"}); !errors.Is(err, ErrBookmarkExists) {
		t.Errorf("duplicate Create error = %v, want ErrBookmarkExists", err)
	}
	if _, err := svc.Create(ctx, 2, caselaw.BookmarkInput{DocID: "55"}); err != nil {
		t.Errorf("other user's bookmark rejected: %v", err)
	}
	if _, err := svc.Create(ctx, 1, caselaw.BookmarkInput{DocID: "../etc"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad doc id error = %v", err)
	}

	linked, _ := svc.ListPrecedents(1, "case-17")
	if len(linked) != 1 {
		t.Errorf("ListPrecedents = %d rows, want 1", len(linked))
	}
}

func TestBookmarkUpdateAndDelete(t *testing.T) {
	repo := NewMockBookmarkRepository()
	svc := NewBookmarkService(repo, nil, nil)
	ctx := context.Background()
	svc.Create(ctx, 1, caselaw.BookmarkInput{DocID: "9", Notes: "old"})

	notes := "Para 14 supports our stay application"
	tags := []string{"Stay", ""}
	b, err := svc.Update(1, "9", caselaw.BookmarkUpdate{Notes: &notes, Tags: &tags})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if b.Notes != notes || len(b.Tags) != 1 || b.Tags[0] != "stay" {
		t.Errorf("Update stored %+v", b)
	}

	if _, err := svc.Update(1, "404", caselaw.BookmarkUpdate{Notes: &notes}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v", err)
	}
	if err := svc.Delete(ctx, 1, "9"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := svc.Delete(ctx, 1, "9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestBookmarkSnapshots(t *testing.T) {
	repo := NewMockBookmarkRepository()
	snaps := &memorySnapshots{objects: map[string]string{}}
	svc := NewBookmarkService(repo, snaps, staticDocs{})
	ctx := context.Background()

	b, err := svc.Create(ctx, 1, caselaw.BookmarkInput{DocID: "77"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if b.SnapshotKey == "" || !b.ToResponse().HasSnapshot {
		t.Fatalf("snapshot not recorded: %+v", b)
	}

	html, err := svc.Snapshot(ctx, 1, "77")
	if err != nil || html != "<p>judgment 77</p>" {
		t.Errorf("Snapshot = (%q, %v)", html, err)
	}

	if err := svc.Delete(ctx, 1, "77"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(snaps.objects) != 0 {
		t.Errorf("snapshot left behind after delete: %v", snaps.objects)
	}
}
