package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/msgsync"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, signedIn bool) Model {
	t.Helper()
	sessions := session.NewManager(session.NewFileStore(filepath.Join(t.TempDir(), "session.bin")))
	if signedIn {
		require.NoError(t, sessions.Set(&session.Session{AccessToken: "a", User: session.User{ID: 1}}))
	}
	return NewModel(Deps{
		Engine:   msgsync.NewEngine(nil, nil),
		Sessions: sessions,
		Notifier: NewNotifier(),
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoginRequiresBothFields(t *testing.T) {
	m := newTestModel(t, false)
	assert.Equal(t, screenLogin, m.screen)

	next, _ := m.Update(key("enter"))
	m = next.(Model)
	assert.Equal(t, 1, m.loginFocus, "enter on the email field moves to password")

	next, _ = m.Update(key("enter"))
	m = next.(Model)
	assert.Equal(t, "Email and password are required", m.err)
	assert.False(t, m.loggingIn)

	next, _ = m.Update(key("tab"))
	m = next.(Model)
	assert.Equal(t, 0, m.loginFocus)
}

func TestSignedInStartsOnChat(t *testing.T) {
	m := newTestModel(t, true)
	assert.Equal(t, screenChat, m.screen)
	assert.True(t, m.busy)
}

func TestSessionEndedReturnsToLogin(t *testing.T) {
	m := newTestModel(t, true)
	m.busy = false

	next, cmd := m.Update(sessionEndedMsg{reason: "signed in elsewhere"})
	m = next.(Model)
	assert.Equal(t, screenLogin, m.screen)
	assert.Equal(t, "signed in elsewhere", m.err)
	assert.NotNil(t, cmd)
}

func TestChatCommands(t *testing.T) {
	m := newTestModel(t, true)

	m.input.SetValue(":help")
	next, _ := m.Update(key("enter"))
	m = next.(Model)
	assert.Equal(t, commandHelp, m.status)
	assert.Equal(t, "", m.input.Value())

	m.input.SetValue(":bogus")
	next, _ = m.Update(key("enter"))
	m = next.(Model)
	assert.Contains(t, m.err, "unknown command")

	m.input.SetValue("hello")
	next, _ = m.Update(key("enter"))
	m = next.(Model)
	assert.Equal(t, "Select a conversation first", m.err)
	assert.Equal(t, "hello", m.input.Value(), "draft stays in the composer")
}

type docSource struct{}

func (docSource) Document(ctx context.Context, id string) (*caselaw.Document, error) {
	return &caselaw.Document{ID: id, Title: "Kesavananda Bharati", HTML: "<p>basic structure</p>"}, nil
}

func (docSource) Meta(ctx context.Context, id string) (*caselaw.DocMeta, error) {
	return &caselaw.DocMeta{ID: id, Title: "Kesavananda Bharati", Court: "Supreme Court"}, nil
}

type bookmarkStore struct {
	mu      sync.Mutex
	list    []caselaw.Bookmark
	updates []caselaw.BookmarkUpdate
}

func (s *bookmarkStore) ListBookmarks(ctx context.Context) ([]caselaw.Bookmark, error) {
	return s.list, nil
}

func (s *bookmarkStore) CreateBookmark(ctx context.Context, in caselaw.BookmarkInput) (*caselaw.Bookmark, error) {
	return &caselaw.Bookmark{DocID: in.DocID, Title: in.Title}, nil
}

func (s *bookmarkStore) UpdateBookmark(ctx context.Context, docID string, upd caselaw.BookmarkUpdate) (*caselaw.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, upd)
	bm := caselaw.Bookmark{DocID: docID}
	if upd.Tags != nil {
		bm.Tags = *upd.Tags
	}
	return &bm, nil
}

func (s *bookmarkStore) DeleteBookmark(ctx context.Context, docID string) error {
	return nil
}

func TestTagsCommandUpdatesBookmark(t *testing.T) {
	m := newTestModel(t, true)
	store := &bookmarkStore{list: []caselaw.Bookmark{{DocID: "55", Title: "Kesavananda Bharati"}}}
	m.deps.Bookmarks = caselaw.NewBookmarks(store)
	m.deps.Navigator = caselaw.NewNavigator(docSource{}, "https://indiankanoon.org")
	require.NoError(t, m.deps.Navigator.Open(context.Background(), "55"))

	next, cmd := m.runCommand(":tags bail")
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, "Bookmark the document first", m.err)

	require.NoError(t, m.deps.Bookmarks.Load(context.Background()))
	next, cmd = m.runCommand(":tags bail, Article 21")
	m = next.(Model)
	assert.Equal(t, "", m.err)
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("Tags saved"), cmd())

	require.Len(t, store.updates, 1)
	upd := store.updates[0]
	assert.Nil(t, upd.Notes)
	require.NotNil(t, upd.Tags)
	assert.Equal(t, []string{"bail", "Article 21"}, *upd.Tags)
	assert.Equal(t, []string{"bail", "Article 21"}, m.deps.Bookmarks.List()[0].Tags)
}
