package session

import (
	"context"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/apiclient"
	"github.com/pkg/errors"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a session and installs it.
func (m *Manager) Login(ctx context.Context, api *apiclient.Client, email, password string) (*Session, error) {
	var s Session
	if err := api.Post(ctx, "/auth/login", credentials{Email: email, Password: password}, &s); err != nil {
		return nil, errors.Wrap(err, "login")
	}
	// a failed save still leaves this run signed in
	_ = m.Set(&s)
	return &s, nil
}

// Refresh rotates the tokens. A rejected refresh token expires the session.
func (m *Manager) Refresh(ctx context.Context, api *apiclient.Client) (*Session, error) {
	cur := m.Current()
	if cur == nil || cur.RefreshToken == "" {
		return nil, errors.New("not signed in")
	}
	var s Session
	if err := api.Post(ctx, "/auth/refresh", refreshRequest{RefreshToken: cur.RefreshToken}, &s); err != nil {
		if apiclient.HasStatus(err, 401) {
			m.Expire("refresh token rejected")
		}
		return nil, errors.Wrap(err, "refresh")
	}
	_ = m.Set(&s)
	return &s, nil
}

// Logout revokes the refresh token server-side, then clears locally even
// when the server call fails.
func (m *Manager) Logout(ctx context.Context, api *apiclient.Client) error {
	var err error
	if cur := m.Current(); cur != nil && cur.RefreshToken != "" {
		err = api.Post(ctx, "/auth/logout", refreshRequest{RefreshToken: cur.RefreshToken}, nil)
	}
	if clearErr := m.Clear(); err == nil {
		err = clearErr
	}
	return errors.Wrap(err, "logout")
}
