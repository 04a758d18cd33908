package caselaw

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookmarkAPI struct {
	server    map[string]Bookmark
	createErr error
	created   int
	deleted   int
}

func (f *fakeBookmarkAPI) ListBookmarks(context.Context) ([]Bookmark, error) {
	out := make([]Bookmark, 0, len(f.server))
	for _, b := range f.server {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookmarkAPI) CreateBookmark(_ context.Context, in BookmarkInput) (*Bookmark, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.server[in.DocID]; ok {
		return nil, pkgerrors.Wrap(ErrAlreadyBookmarked, "create bookmark")
	}
	f.created++
	b := Bookmark{DocID: in.DocID, Title: in.Title, Tags: in.Tags, CaseID: in.CaseID, CreatedAt: time.Now()}
	f.server[in.DocID] = b
	return &b, nil
}

func (f *fakeBookmarkAPI) UpdateBookmark(_ context.Context, docID string, upd BookmarkUpdate) (*Bookmark, error) {
	b, ok := f.server[docID]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Notes != nil {
		b.Notes = *upd.Notes
	}
	if upd.Tags != nil {
		b.Tags = *upd.Tags
	}
	f.server[docID] = b
	return &b, nil
}

func (f *fakeBookmarkAPI) DeleteBookmark(_ context.Context, docID string) error {
	if _, ok := f.server[docID]; !ok {
		return ErrNotFound
	}
	f.deleted++
	delete(f.server, docID)
	return nil
}

func TestBookmarksToggle(t *testing.T) {
	ctx := context.Background()
	api := &fakeBookmarkAPI{server: map[string]Bookmark{}}
	bm := NewBookmarks(api)
	require.NoError(t, bm.Load(ctx))

	on, err := bm.Toggle(ctx, BookmarkInput{DocID: "55", Title: "Kesavananda Bharati"})
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, bm.IsBookmarked("55"))

	on, err = bm.Toggle(ctx, BookmarkInput{DocID: "55"})
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, bm.IsBookmarked("55"))
	assert.Equal(t, 1, api.created)
	assert.Equal(t, 1, api.deleted)
}

func TestBookmarkConflictIsDistinct(t *testing.T) {
	ctx := context.Background()
	// bookmarked elsewhere after our cache was loaded
	api := &fakeBookmarkAPI{server: map[string]Bookmark{}}
	bm := NewBookmarks(api)
	require.NoError(t, bm.Load(ctx))
	api.server["55"] = Bookmark{DocID: "55"}

	on, err := bm.Toggle(ctx, BookmarkInput{DocID: "55"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyBookmarked))
	assert.True(t, on)
	assert.True(t, bm.IsBookmarked("55"))
	assert.Equal(t, msgAlreadyBookmarked, StatusMessage(err))
	assert.NotEqual(t, msgBookmarkFailed, StatusMessage(err))

	api.createErr = errors.New("http 500")
	_, err = bm.Toggle(ctx, BookmarkInput{DocID: "77"})
	require.Error(t, err)
	assert.Equal(t, msgBookmarkFailed, StatusMessage(err))
	assert.False(t, bm.IsBookmarked("77"))
	assert.Equal(t, "", StatusMessage(nil))
}

func TestBookmarksUpdateByDocID(t *testing.T) {
	ctx := context.Background()
	api := &fakeBookmarkAPI{server: map[string]Bookmark{"9": {DocID: "9"}}}
	bm := NewBookmarks(api)
	require.NoError(t, bm.Load(ctx))

	notes := "Relied on para 14"
	tags := []string{"bail"}
	updated, err := bm.Update(ctx, "9", BookmarkUpdate{Notes: &notes, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, tags, bm.List()[0].Tags)
	assert.Equal(t, 0, api.created)
}
