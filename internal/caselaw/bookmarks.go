package caselaw

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

const (
	msgAlreadyBookmarked = "Already bookmarked"
	msgBookmarkFailed    = "Could not update bookmark, please try again"
)

type BookmarkAPI interface {
	ListBookmarks(ctx context.Context) ([]Bookmark, error)
	CreateBookmark(ctx context.Context, in BookmarkInput) (*Bookmark, error)
	UpdateBookmark(ctx context.Context, docID string, upd BookmarkUpdate) (*Bookmark, error)
	DeleteBookmark(ctx context.Context, docID string) error
}

// Bookmarks caches the user's bookmarked documents and decides whether a
// toggle creates or deletes.
type Bookmarks struct {
	api BookmarkAPI

	mu    sync.RWMutex
	items map[string]Bookmark
}

func NewBookmarks(api BookmarkAPI) *Bookmarks {
	return &Bookmarks{api: api, items: make(map[string]Bookmark)}
}

// Load replaces the cache; on failure the cache is left as it was.
func (b *Bookmarks) Load(ctx context.Context) error {
	list, err := b.api.ListBookmarks(ctx)
	if err != nil {
		return errors.Wrap(err, "list bookmarks")
	}
	items := make(map[string]Bookmark, len(list))
	for _, bm := range list {
		items[bm.DocID] = bm
	}
	b.mu.Lock()
	b.items = items
	b.mu.Unlock()
	return nil
}

func (b *Bookmarks) IsBookmarked(docID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.items[docID]
	return ok
}

// List returns the cached bookmarks, newest first.
func (b *Bookmarks) List() []Bookmark {
	b.mu.RLock()
	out := make([]Bookmark, 0, len(b.items))
	for _, bm := range b.items {
		out = append(out, bm)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Toggle deletes the bookmark for in.DocID if it is cached, creates it
// otherwise, and reports the resulting membership. A create that conflicts
// returns ErrAlreadyBookmarked and marks the document as bookmarked.
func (b *Bookmarks) Toggle(ctx context.Context, in BookmarkInput) (bool, error) {
	if b.IsBookmarked(in.DocID) {
		err := b.api.DeleteBookmark(ctx, in.DocID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return true, err
		}
		b.mu.Lock()
		delete(b.items, in.DocID)
		b.mu.Unlock()
		return false, nil
	}

	created, err := b.api.CreateBookmark(ctx, in)
	switch {
	case errors.Is(err, ErrAlreadyBookmarked):
		b.mu.Lock()
		if _, ok := b.items[in.DocID]; !ok {
			b.items[in.DocID] = Bookmark{DocID: in.DocID, Title: in.Title, Court: in.Court, Date: in.Date, CaseID: in.CaseID}
		}
		b.mu.Unlock()
		return true, err
	case err != nil:
		return false, err
	}
	b.mu.Lock()
	b.items[created.DocID] = *created
	b.mu.Unlock()
	return true, nil
}

// Update edits notes, tags or the linked case of an existing bookmark.
func (b *Bookmarks) Update(ctx context.Context, docID string, upd BookmarkUpdate) (*Bookmark, error) {
	updated, err := b.api.UpdateBookmark(ctx, docID, upd)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.items[docID] = *updated
	b.mu.Unlock()
	return updated, nil
}

// StatusMessage is the user-facing text for the outcome of a bookmark call.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyBookmarked):
		return msgAlreadyBookmarked
	default:
		return msgBookmarkFailed
	}
}
