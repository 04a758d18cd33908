package msgsync

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
)

const writeWait = 10 * time.Second

// WSDialer dials the portal's /ws endpoint with the session's access token.
type WSDialer struct {
	URL   string
	Token func() string
	// Gzip asks the server for compressed frames above its threshold.
	Gzip bool

	Dialer *websocket.Dialer
}

func (d *WSDialer) Dial(ctx context.Context) (Socket, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse ws url")
	}
	q := u.Query()
	if d.Gzip {
		q.Set("gzip", "1")
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	if d.Token != nil {
		if token := d.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial %s: http %d", u.Redacted(), resp.StatusCode)
		}
		return nil, errors.Wrapf(err, "dial %s", u.Redacted())
	}
	return NewWSSocket(conn), nil
}

// WSSocket adapts a gorilla connection to Socket. Binary frames are gzip
// compressed envelopes.
type WSSocket struct {
	conn   *websocket.Conn
	events chan realtime.Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func NewWSSocket(conn *websocket.Conn) *WSSocket {
	s := &WSSocket{
		conn:   conn,
		events: make(chan realtime.Event, 64),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *WSSocket) Events() <-chan realtime.Event {
	return s.events
}

func (s *WSSocket) readLoop() {
	defer close(s.events)
	for {
		frameType, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				logger.Debug("msgsync: ws read: %v", err)
			}
			return
		}
		if frameType == websocket.BinaryMessage {
			if data, err = realtime.Decompress(data); err != nil {
				logger.Warn("msgsync: ws decompress: %v", err)
				continue
			}
		}
		ev, err := realtime.Decode(data)
		if err != nil {
			logger.Warn("msgsync: ws decode: %v", err)
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *WSSocket) Send(ev realtime.Event) error {
	data, err := realtime.Encode(ev)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *WSSocket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}
