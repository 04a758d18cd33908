package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Session {
	return &Session{
		AccessToken:     "access-1",
		AccessExpiresAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		RefreshToken:    "refresh-1",
		User:            User{ID: 7, Username: "counsel", Email: "c@firm.test", Role: "user"},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "session.bin"))

	s, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, store.Save(sample()))
	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-1", s.AccessToken)
	assert.Equal(t, uint(7), s.User.ID)
	assert.True(t, s.AccessExpiresAt.Equal(sample().AccessExpiresAt))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	s, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestManagerLoadDiscardsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xc1, 0xc1}, 0o600))

	m := NewManager(NewFileStore(path))
	_, err := m.Load()
	assert.Error(t, err)
	assert.Nil(t, m.Current())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestManagerLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	m := NewManager(NewFileStore(path))

	type change struct {
		signedIn bool
		reason   string
	}
	var changes []change
	unsubscribe := m.Subscribe(func(s *Session, reason string) {
		changes = append(changes, change{s != nil, reason})
	})

	assert.Equal(t, "", m.Token())
	assert.Equal(t, uint(0), m.UserID())

	require.NoError(t, m.Set(sample()))
	assert.Equal(t, "access-1", m.Token())
	assert.Equal(t, uint(7), m.UserID())

	// restored by a fresh manager
	restored := NewManager(NewFileStore(path))
	s, err := restored.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", s.RefreshToken)

	m.Expire("")
	m.Expire("again")
	assert.Nil(t, m.Current())
	assert.Equal(t, []change{{true, ""}, {false, "session expired"}}, changes)

	unsubscribe()
	require.NoError(t, m.Set(sample()))
	assert.Len(t, changes, 2)
}

func TestCurrentReturnsCopy(t *testing.T) {
	m := NewManager(NewFileStore(filepath.Join(t.TempDir(), "s")))
	require.NoError(t, m.Set(sample()))

	cur := m.Current()
	cur.AccessToken = "mutated"
	assert.Equal(t, "access-1", m.Token())
}

func TestAccessExpired(t *testing.T) {
	s := sample()
	assert.False(t, s.AccessExpired(s.AccessExpiresAt.Add(-time.Second)))
	assert.True(t, s.AccessExpired(s.AccessExpiresAt))
	assert.False(t, (&Session{}).AccessExpired(time.Now()))
}

func TestLoginRefreshLogout(t *testing.T) {
	var loggedOut string
	refreshOK := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var in credentials
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Password != "hunter22" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Invalid credentials","code":"invalid_credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"a1","refresh_token":"r1","user":{"id":3,"username":"paralegal"}}`))
		case "/api/auth/refresh":
			if !refreshOK {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Invalid refresh token","code":"invalid_refresh_token"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"a2","refresh_token":"r2","user":{"id":3,"username":"paralegal"}}`))
		case "/api/auth/logout":
			var in refreshRequest
			_ = json.NewDecoder(r.Body).Decode(&in)
			loggedOut = in.RefreshToken
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	api := apiclient.New(srv.URL + "/api")
	m := NewManager(NewFileStore(filepath.Join(t.TempDir(), "s")))
	ctx := context.Background()

	_, err := m.Login(ctx, api, "p@firm.test", "wrong")
	require.Error(t, err)
	assert.True(t, apiclient.HasCode(err, "invalid_credentials"))
	assert.Nil(t, m.Current())

	s, err := m.Login(ctx, api, "p@firm.test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, uint(3), s.User.ID)
	assert.Equal(t, "a1", m.Token())

	_, err = m.Refresh(ctx, api)
	require.NoError(t, err)
	assert.Equal(t, "a2", m.Token())

	require.NoError(t, m.Logout(ctx, api))
	assert.Equal(t, "r2", loggedOut)
	assert.Nil(t, m.Current())

	_, err = m.Login(ctx, api, "p@firm.test", "hunter22")
	require.NoError(t, err)
	refreshOK = false
	_, err = m.Refresh(ctx, api)
	require.Error(t, err)
	assert.Nil(t, m.Current(), "rejected refresh expires the session")
}
