package msgsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSDialerRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	got := make(chan realtime.Event, 1)
	var auth, gz string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		gz = r.URL.Query().Get("gzip")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := realtime.Decode(data)
		if err != nil {
			return
		}
		got <- ev

		plain, _ := realtime.Encode(&realtime.UserOnline{UserID: 4})
		_ = conn.WriteMessage(websocket.TextMessage, plain)

		big, _ := realtime.Encode(&realtime.NewMessage{Message: Message{ID: 5, SenderID: 4, RecipientID: 1, Content: strings.Repeat("x", 1024)}})
		packed, _ := realtime.Compress(big)
		_ = conn.WriteMessage(websocket.BinaryMessage, packed)

		// wait for the client to hang up
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	d := &WSDialer{
		URL:   "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		Token: func() string { return "tok" },
		Gzip:  true,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sock, err := d.Dial(ctx)
	require.NoError(t, err)
	require.NoError(t, sock.Send(&realtime.Join{UserID: 1}))

	select {
	case ev := <-got:
		join, ok := ev.(*realtime.Join)
		require.True(t, ok)
		assert.Equal(t, uint(1), join.UserID)
	case <-ctx.Done():
		t.Fatal("server never saw join")
	}
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "1", gz)

	first := <-sock.Events()
	assert.Equal(t, &realtime.UserOnline{UserID: 4}, first)

	second := <-sock.Events()
	nm, ok := second.(*realtime.NewMessage)
	require.True(t, ok)
	assert.Len(t, nm.Content, 1024)

	require.NoError(t, sock.Close())
	for range sock.Events() {
	}
}

func TestWSDialerRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	d := &WSDialer{URL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}
	_, err := d.Dial(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
