package ws

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gofiber/websocket/v2"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
)

const (
	gzipThreshold = 512
	writeWait     = 10 * time.Second
	flushBatch    = 50

	// DefaultPendingRetention is how long an undelivered frame waits for its
	// recipient before the cleanup sweep drops it.
	DefaultPendingRetention = 7 * 24 * time.Hour
	cleanupInterval         = time.Hour
)

// PresenceListener is told when a user's first connection opens, when their
// last one closes, and on every pong.
type PresenceListener interface {
	SetOnline(userID uint, online bool)
	Heartbeat(userID uint)
}

// ClientConnection wraps a WebSocket connection with metadata
type ClientConnection struct {
	Conn         *websocket.Conn
	UserID       uint
	SupportsGzip bool
	PingTicker   *time.Ticker
	CloseChan    chan struct{}

	writeMu   sync.Mutex
	lastPong  time.Time
	closeOnce sync.Once
}

// send writes one encoded frame, gzipped as a binary frame when the client
// supports it and it pays off.
func (c *ClientConnection) send(data []byte) error {
	frameType := websocket.TextMessage
	if c.SupportsGzip && len(data) > gzipThreshold {
		if compressed, err := realtime.Compress(data); err == nil && len(compressed) < len(data) {
			data = compressed
			frameType = websocket.BinaryMessage
		}
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(frameType, data)
}

func (c *ClientConnection) sendEvent(ev realtime.Event) error {
	data, err := realtime.Encode(ev)
	if err != nil {
		return err
	}
	return c.send(data)
}

func (c *ClientConnection) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait))
}

// stop ends the ping routine; safe to call more than once.
func (c *ClientConnection) stop() {
	c.closeOnce.Do(func() {
		if c.PingTicker != nil {
			c.PingTicker.Stop()
		}
		close(c.CloseChan)
	})
}

// Hub manages all active WebSocket connections. Each user has at most one:
// a new connection takes over and the old one receives session_expired.
type Hub struct {
	clients            map[uint]*ClientConnection
	clientsMux         sync.RWMutex
	pendingMessageRepo repository.PendingMessageRepositoryInterface
	presence           PresenceListener
	typing             *TypingTracker
	maxRetries         int
	baseRetryDelay     time.Duration
	pingInterval       time.Duration
	pongTimeout        time.Duration
	retention          time.Duration
	done               chan struct{}
	closeOnce          sync.Once
}

// NewHub creates a hub and starts its retry and health workers. presence and
// pendingRepo may be nil.
func NewHub(pendingRepo repository.PendingMessageRepositoryInterface, presence PresenceListener) *Hub {
	hub := &Hub{
		clients:            make(map[uint]*ClientConnection),
		pendingMessageRepo: pendingRepo,
		presence:           presence,
		maxRetries:         5,
		baseRetryDelay:     2 * time.Second,
		pingInterval:       30 * time.Second,
		pongTimeout:        90 * time.Second,
		retention:          DefaultPendingRetention,
		done:               make(chan struct{}),
	}
	hub.typing = NewTypingTracker(clock.New(), DefaultTypingExpiry, func(userID uint, ev realtime.Event) {
		_ = hub.SendToUser(userID, ev)
	})

	go hub.retryWorker()
	go hub.connectionHealthChecker()

	return hub
}

// SetPendingRetention changes the age after which queued frames are dropped.
// Non-positive values keep the current setting.
func (h *Hub) SetPendingRetention(d time.Duration) {
	if d <= 0 {
		return
	}
	h.clientsMux.Lock()
	h.retention = d
	h.clientsMux.Unlock()
}

// Close stops the background workers.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) Typing() *TypingTracker {
	return h.typing
}

// Register adds a client connection. If the user already had one, it is
// expired and closed; presence does not flicker in that case.
func (h *Hub) Register(userID uint, conn *websocket.Conn, supportsGzip bool) *ClientConnection {
	client := &ClientConnection{
		Conn:         conn,
		UserID:       userID,
		SupportsGzip: supportsGzip,
		PingTicker:   time.NewTicker(h.pingInterval),
		CloseChan:    make(chan struct{}),
		lastPong:     time.Now(),
	}

	conn.SetPongHandler(func(string) error {
		h.clientsMux.Lock()
		client.lastPong = time.Now()
		h.clientsMux.Unlock()
		_ = conn.SetReadDeadline(time.Now().Add(h.pongTimeout))
		if h.presence != nil {
			h.presence.Heartbeat(userID)
		}
		return nil
	})
	_ = conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.clientsMux.Lock()
	previous := h.clients[userID]
	h.clients[userID] = client
	count := len(h.clients)
	h.clientsMux.Unlock()

	go h.pingRoutine(client)

	if previous != nil {
		logger.Info("User %d reconnected elsewhere, expiring previous session", userID)
		h.expire(previous, "signed in from another location")
	} else {
		if h.presence != nil {
			h.presence.SetOnline(userID, true)
		}
		h.broadcastExcept(userID, &realtime.UserOnline{UserID: userID})
	}

	logger.WithFields(logger.Fields{"user_id": userID, "total": count, "gzip": supportsGzip}).Info("ws client registered")
	return client
}

func (h *Hub) expire(client *ClientConnection, reason string) {
	if err := client.sendEvent(&realtime.SessionExpired{Reason: reason}); err != nil {
		logger.Debug("session_expired to user %d: %v", client.UserID, err)
	}
	client.stop()
	_ = client.Conn.Close()
}

// Unregister removes client if it is still the user's current connection and
// reports whether it was. Only then does the user go offline.
func (h *Hub) Unregister(userID uint, client *ClientConnection) bool {
	client.stop()

	h.clientsMux.Lock()
	current, exists := h.clients[userID]
	if !exists || current != client {
		h.clientsMux.Unlock()
		return false
	}
	delete(h.clients, userID)
	count := len(h.clients)
	h.clientsMux.Unlock()

	h.typing.Disconnect(userID)
	if h.presence != nil {
		h.presence.SetOnline(userID, false)
	}
	h.broadcastExcept(userID, &realtime.UserOffline{UserID: userID})

	logger.WithFields(logger.Fields{"user_id": userID, "total": count}).Info("ws client unregistered")
	return true
}

// drop closes a connection whose writes fail; its read loop then unregisters.
func (h *Hub) drop(client *ClientConnection) {
	h.Unregister(client.UserID, client)
	_ = client.Conn.Close()
}

// IsOnline checks if a user is connected
func (h *Hub) IsOnline(userID uint) bool {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

func (h *Hub) client(userID uint) (*ClientConnection, bool) {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

// SendToUser pushes an event that is never queued.
func (h *Hub) SendToUser(userID uint, ev realtime.Event) error {
	return h.SendToUserWithID(userID, 0, ev)
}

// SendToUserWithID pushes ev, queueing it for offline delivery when the user
// is not connected or the write fails. Only non-ephemeral events tied to a
// stored message (messageID != 0) are queued.
func (h *Hub) SendToUserWithID(userID uint, messageID uint, ev realtime.Event) error {
	data, err := realtime.Encode(ev)
	if err != nil {
		logger.Error("Error encoding %s for user %d: %v", ev.EventType(), userID, err)
		return err
	}

	client, exists := h.client(userID)
	if !exists {
		return h.queueMessage(userID, messageID, ev.EventType(), data)
	}

	if err := client.send(data); err != nil {
		logger.Warn("Error sending %s to user %d: %v", ev.EventType(), userID, err)
		h.drop(client)
		return h.queueMessage(userID, messageID, ev.EventType(), data)
	}
	return nil
}

func (h *Hub) queueMessage(userID uint, messageID uint, eventType string, data []byte) error {
	if h.pendingMessageRepo == nil || realtime.Ephemeral(eventType) {
		return nil
	}
	// pending rows reference messages; nothing to hang the row on otherwise
	if messageID == 0 {
		logger.Debug("Skipping queue of %s for user %d: no message id", eventType, userID)
		return nil
	}
	return h.pendingMessageRepo.Enqueue(userID, messageID, string(data), 0)
}

func (h *Hub) snapshot() []*ClientConnection {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	clients := make([]*ClientConnection, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// Broadcast sends ev to every connected user.
func (h *Hub) Broadcast(ev realtime.Event) {
	h.broadcastExcept(0, ev)
}

func (h *Hub) broadcastExcept(skip uint, ev realtime.Event) {
	data, err := realtime.Encode(ev)
	if err != nil {
		logger.Error("Error encoding broadcast %s: %v", ev.EventType(), err)
		return
	}
	for _, client := range h.snapshot() {
		if client.UserID == skip {
			continue
		}
		if err := client.send(data); err != nil {
			logger.Warn("Error broadcasting to user %d: %v", client.UserID, err)
			h.drop(client)
		}
	}
}

// GetOnlineUsers returns the connected user IDs in ascending order.
func (h *Hub) GetOnlineUsers() []uint {
	h.clientsMux.RLock()
	users := make([]uint, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	h.clientsMux.RUnlock()
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// SendOnlineList sends userID the presence set, excluding itself.
func (h *Hub) SendOnlineList(userID uint) error {
	online := h.GetOnlineUsers()
	others := make([]uint, 0, len(online))
	for _, id := range online {
		if id != userID {
			others = append(others, id)
		}
	}
	return h.SendToUser(userID, &realtime.OnlineUsersList{UserIDs: others})
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

// FlushPendingMessages sends queued frames to a newly joined user in batches.
func (h *Hub) FlushPendingMessages(userID uint) error {
	if h.pendingMessageRepo == nil {
		return nil
	}

	for {
		client, exists := h.client(userID)
		if !exists {
			return nil
		}

		pending, err := h.pendingMessageRepo.GetPendingForUser(userID, flushBatch)
		if err != nil {
			logger.Error("Error fetching pending messages for user %d: %v", userID, err)
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		batch := &realtime.Batch{Messages: make([]json.RawMessage, 0, len(pending))}
		ids := make([]uint, 0, len(pending))
		for _, pm := range pending {
			batch.Messages = append(batch.Messages, json.RawMessage(pm.Payload))
			ids = append(ids, pm.ID)
		}
		batch.Count = len(batch.Messages)

		logger.Info("Flushing %d pending messages to user %d", batch.Count, userID)
		if err := client.sendEvent(batch); err != nil {
			// stays queued for the retry worker
			logger.Warn("Error sending batch to user %d: %v", userID, err)
			return err
		}
		if err := h.pendingMessageRepo.DeleteBatch(ids); err != nil {
			logger.Error("Error deleting delivered messages: %v", err)
			return err
		}

		if len(pending) < flushBatch {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// retryWorker processes failed deliveries with exponential backoff and
// periodically drops frames older than the retention window.
func (h *Hub) retryWorker() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.retryPending()
		case <-cleanup.C:
			h.cleanupPending()
		}
	}
}

func (h *Hub) cleanupPending() {
	if h.pendingMessageRepo == nil {
		return
	}
	h.clientsMux.RLock()
	retention := h.retention
	h.clientsMux.RUnlock()
	if err := h.pendingMessageRepo.CleanupOld(retention); err != nil {
		logger.Error("Error cleaning up pending messages: %v", err)
	}
}

func (h *Hub) retryPending() {
	if h.pendingMessageRepo == nil {
		return
	}
	retryable, err := h.pendingMessageRepo.GetRetryable(100)
	if err != nil {
		logger.Error("Error fetching retryable messages: %v", err)
		return
	}

	for _, pm := range retryable {
		client, isOnline := h.client(pm.UserID)
		if isOnline {
			if err := client.send([]byte(pm.Payload)); err == nil {
				if err := h.pendingMessageRepo.Delete(pm.ID); err != nil {
					logger.Error("Error deleting delivered pending message %d: %v", pm.ID, err)
				}
				continue
			}
			logger.Warn("Retry delivery failed for user %d", pm.UserID)
		}

		attempts := pm.Attempts + 1
		// 4s, 8s, 16s, 32s, then hourly
		nextRetry := time.Now().Add(h.baseRetryDelay * time.Duration(1<<uint(attempts)))
		if attempts >= h.maxRetries {
			nextRetry = time.Now().Add(time.Hour)
		}
		if err := h.pendingMessageRepo.MarkAttempted(pm.ID, attempts, &nextRetry); err != nil {
			logger.Error("Error marking pending message %d attempted: %v", pm.ID, err)
		}
	}
}

// pingRoutine sends periodic ping messages to keep connection alive
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Ping routine recovered from panic for user %d: %v", client.UserID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			if err := client.ping(); err != nil {
				logger.Warn("Ping failed for user %d: %v", client.UserID, err)
				h.drop(client)
				return
			}
		}
	}
}

// connectionHealthChecker removes connections that stopped answering pings.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
		}

		now := time.Now()
		var dead []*ClientConnection
		h.clientsMux.RLock()
		for _, client := range h.clients {
			if now.Sub(client.lastPong) > h.pongTimeout {
				dead = append(dead, client)
			}
		}
		h.clientsMux.RUnlock()

		for _, client := range dead {
			logger.Info("Removing dead connection for user %d (no pong received)", client.UserID)
			h.drop(client)
		}
	}
}
