package msgsync

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock driving the typing idle timer.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// OnChange registers a callback run after every state change, outside the
// engine's lock.
func OnChange(fn func()) Option {
	return func(e *Engine) { e.onChange = fn }
}

// OnSessionExpired registers the session owner's teardown hook.
func OnSessionExpired(fn func(reason string)) Option {
	return func(e *Engine) { e.onExpired = fn }
}

// Engine is safe for concurrent use. Network calls never run under its lock.
type Engine struct {
	api    API
	dialer Dialer
	clock  clock.Clock

	onChange  func()
	onExpired func(reason string)

	mu            sync.Mutex
	self          uint
	sock          Socket
	conversations []Conversation
	active        uint
	timeline      []Message
	online        map[uint]bool
	typing        map[uint]bool
	draft         string

	// selectSeq identifies the latest SelectConversation; older fetches are
	// discarded when they resolve.
	selectSeq uint64

	typingTimer  *clock.Timer
	typingTarget uint
	typingGen    uint64

	bg sync.WaitGroup
}

func NewEngine(api API, dialer Dialer, opts ...Option) *Engine {
	e := &Engine{
		api:    api,
		dialer: dialer,
		clock:  clock.New(),
		online: make(map[uint]bool),
		typing: make(map[uint]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

func (e *Engine) async(fn func()) {
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		fn()
	}()
}

// Connect binds the engine to userID: one connection, joined to the user's
// channel. Calling it again with the same user is a no-op; a different user
// tears the old connection down and resets all state. userID 0 disconnects.
func (e *Engine) Connect(ctx context.Context, userID uint) error {
	e.mu.Lock()
	if e.self == userID && (e.sock != nil || userID == 0) {
		e.mu.Unlock()
		return nil
	}
	old := e.sock
	e.sock = nil
	if e.self != userID {
		e.resetLocked()
		e.self = userID
	}
	e.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	e.changed()
	if userID == 0 {
		return nil
	}

	sock, err := e.dialer.Dial(ctx)
	if err != nil {
		return errors.Wrap(err, "dial realtime")
	}
	if err := sock.Send(&realtime.Join{UserID: userID}); err != nil {
		_ = sock.Close()
		return errors.Wrap(err, "join")
	}

	e.mu.Lock()
	// identity changed while dialing
	if e.self != userID || e.sock != nil {
		e.mu.Unlock()
		_ = sock.Close()
		return nil
	}
	e.sock = sock
	e.mu.Unlock()

	logger.Debug("msgsync: connected as user %d", userID)
	e.async(func() { e.readLoop(sock) })
	return nil
}

func (e *Engine) resetLocked() {
	e.stopTypingTimerLocked()
	e.conversations = nil
	e.active = 0
	e.timeline = nil
	e.online = make(map[uint]bool)
	e.typing = make(map[uint]bool)
	e.draft = ""
	e.selectSeq++
}

func (e *Engine) readLoop(sock Socket) {
	for ev := range sock.Events() {
		e.Apply(ev)
	}
	e.mu.Lock()
	if e.sock == sock {
		e.sock = nil
	}
	e.mu.Unlock()
	logger.Debug("msgsync: realtime connection closed")
}

// Close tears down the connection and waits for background work.
func (e *Engine) Close() error {
	e.mu.Lock()
	sock := e.sock
	e.sock = nil
	e.stopTypingTimerLocked()
	e.mu.Unlock()

	var err error
	if sock != nil {
		err = sock.Close()
	}
	e.bg.Wait()
	return err
}

func (e *Engine) emit(sock Socket, ev realtime.Event) {
	if sock == nil {
		return
	}
	if err := sock.Send(ev); err != nil {
		logger.Debug("msgsync: send %s: %v", ev.EventType(), err)
	}
}

// mutate runs fn under the lock and notifies.
func (e *Engine) mutate(fn func()) {
	e.mu.Lock()
	fn()
	e.mu.Unlock()
	e.changed()
}

// Apply merges one server event into the engine state.
func (e *Engine) Apply(ev realtime.Event) {
	switch ev := ev.(type) {
	case *realtime.NewMessage:
		e.applyNewMessage(ev.Message)
	case *realtime.MessagesRead:
		e.mutate(func() {
			if e.active == 0 || ev.RecipientID != e.active {
				return
			}
			for i := range e.timeline {
				if e.timeline[i].SenderID == e.self {
					e.timeline[i].IsRead = true
				}
			}
		})
	case *realtime.UserOnline:
		e.mutate(func() { e.online[ev.UserID] = true })
	case *realtime.UserOffline:
		e.mutate(func() { delete(e.online, ev.UserID) })
	case *realtime.OnlineUsersList:
		e.mutate(func() {
			e.online = make(map[uint]bool, len(ev.UserIDs))
			for _, id := range ev.UserIDs {
				e.online[id] = true
			}
		})
	case *realtime.Typing:
		e.mutate(func() {
			if ev.UserID != 0 {
				e.typing[ev.UserID] = true
			}
		})
	case *realtime.StopTyping:
		e.mutate(func() { delete(e.typing, ev.UserID) })
	case *realtime.Batch:
		events, errs := realtime.Unbatch(ev)
		for _, err := range errs {
			logger.Warn("msgsync: skipping undecodable queued event: %v", err)
		}
		for _, queued := range events {
			e.Apply(queued)
		}
	case *realtime.SessionExpired:
		e.expire(ev.Reason)
	case *realtime.Error:
		logger.Warn("msgsync: server rejected frame: %s %s", ev.Code, ev.Error)
	case *realtime.Join, *realtime.Ping, *realtime.Pong:
		// client-originated or transport-level
	default:
		logger.Warn("msgsync: unhandled event %s", ev.EventType())
	}
}

func (e *Engine) expire(reason string) {
	e.mu.Lock()
	sock := e.sock
	e.sock = nil
	e.stopTypingTimerLocked()
	e.mu.Unlock()

	logger.Warn("msgsync: session expired: %s", reason)
	if sock != nil {
		_ = sock.Close()
	}
	if e.onExpired != nil {
		e.onExpired(reason)
	}
	e.changed()
}

func peerOf(m Message, self uint) uint {
	if m.SenderID == self {
		return m.RecipientID
	}
	return m.SenderID
}

// insertMessage adds m unless its id is already present, keeping the
// timeline ordered by time then id.
func insertMessage(timeline []Message, m Message) ([]Message, bool) {
	for _, existing := range timeline {
		if existing.ID == m.ID {
			return timeline, false
		}
	}
	timeline = append(timeline, m)
	sortTimeline(timeline)
	return timeline, true
}

func sortTimeline(timeline []Message) {
	sort.SliceStable(timeline, func(i, j int) bool {
		a, b := timeline[i], timeline[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// bumpLocked moves the peer's conversation to the head with m as its last
// message. It reports false when the peer is not in the list.
func (e *Engine) bumpLocked(peer uint, m Message, inbound bool) bool {
	idx := -1
	for i := range e.conversations {
		if e.conversations[i].PeerID == peer {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	conv := e.conversations[idx]
	conv.LastMessage = m
	if inbound && peer != e.active {
		conv.UnreadCount++
	}
	copy(e.conversations[1:idx+1], e.conversations[:idx])
	e.conversations[0] = conv
	return true
}

func (e *Engine) applyNewMessage(m Message) {
	e.mu.Lock()
	peer := peerOf(m, e.self)
	markRead := false
	if e.active != 0 && (m.SenderID == e.active || m.RecipientID == e.active) {
		e.timeline, _ = insertMessage(e.timeline, m)
		markRead = m.SenderID == e.active
	}
	delete(e.typing, m.SenderID)
	known := e.bumpLocked(peer, m, m.SenderID != e.self)
	e.mu.Unlock()

	if markRead {
		e.async(func() {
			if err := e.api.MarkRead(context.Background(), peer); err != nil {
				logger.Warn("msgsync: mark read %d: %v", peer, err)
			}
		})
	}
	if !known {
		e.async(func() {
			_ = e.LoadConversations(context.Background())
		})
	}
	e.changed()
}

// LoadConversations replaces the conversation list. On failure the previous
// list is kept.
func (e *Engine) LoadConversations(ctx context.Context) error {
	list, err := e.api.ListConversations(ctx)
	if err != nil {
		logger.Warn("msgsync: load conversations: %v", err)
		return err
	}

	e.mu.Lock()
	e.conversations = list
	// the active conversation is read as far as this view is concerned
	for i := range e.conversations {
		if e.conversations[i].PeerID == e.active {
			e.conversations[i].UnreadCount = 0
		}
	}
	e.mu.Unlock()
	e.changed()
	return nil
}

// SelectConversation makes peerID the active conversation: the timeline and
// typing set are cleared, its unread count is zeroed at once, the server is
// told it was read, and its history replaces the timeline. When another
// selection happened meanwhile the fetched history is dropped.
func (e *Engine) SelectConversation(ctx context.Context, peerID uint) error {
	e.mu.Lock()
	sock, stopTarget := e.sock, e.takeTypingLocked()
	e.selectSeq++
	seq := e.selectSeq
	e.active = peerID
	e.timeline = nil
	e.typing = make(map[uint]bool)
	e.draft = ""
	for i := range e.conversations {
		if e.conversations[i].PeerID == peerID {
			e.conversations[i].UnreadCount = 0
		}
	}
	e.mu.Unlock()
	e.changed()

	if stopTarget != 0 {
		e.emit(sock, &realtime.StopTyping{TargetUserID: stopTarget})
	}
	if peerID == 0 {
		return nil
	}

	if err := e.api.MarkRead(ctx, peerID); err != nil {
		logger.Warn("msgsync: mark read %d: %v", peerID, err)
	}

	history, err := e.api.History(ctx, peerID)

	e.mu.Lock()
	if seq != e.selectSeq {
		e.mu.Unlock()
		return nil
	}
	if err != nil {
		e.mu.Unlock()
		logger.Warn("msgsync: load history with %d: %v", peerID, err)
		return err
	}
	merged := make([]Message, 0, len(history)+len(e.timeline))
	merged = append(merged, history...)
	// pushes that raced the fetch
	merged = append(merged, e.timeline...)
	sortTimeline(merged)
	e.timeline = dedupe(merged)
	e.mu.Unlock()
	e.changed()
	return nil
}

func dedupe(timeline []Message) []Message {
	seen := make(map[uint]bool, len(timeline))
	out := timeline[:0]
	for _, m := range timeline {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

// Input records the draft and tells the counterparty we are typing. The
// stopTyping follows TypingIdle after the last call.
func (e *Engine) Input(text string) {
	e.mu.Lock()
	e.draft = text
	peer, sock := e.active, e.sock
	if peer == 0 {
		e.mu.Unlock()
		return
	}
	e.stopTypingTimerLocked()
	e.typingGen++
	gen := e.typingGen
	e.typingTarget = peer
	e.typingTimer = e.clock.AfterFunc(TypingIdle, func() { e.typingIdle(gen) })
	e.mu.Unlock()

	e.emit(sock, &realtime.Typing{TargetUserID: peer})
}

func (e *Engine) typingIdle(gen uint64) {
	e.mu.Lock()
	if gen != e.typingGen {
		e.mu.Unlock()
		return
	}
	sock, target := e.sock, e.takeTypingLocked()
	e.mu.Unlock()

	if target != 0 {
		e.emit(sock, &realtime.StopTyping{TargetUserID: target})
	}
}

func (e *Engine) stopTypingTimerLocked() {
	if e.typingTimer != nil {
		e.typingTimer.Stop()
		e.typingTimer = nil
	}
}

// takeTypingLocked cancels the idle timer and returns who was being told
// we type, if anyone.
func (e *Engine) takeTypingLocked() uint {
	e.stopTypingTimerLocked()
	e.typingGen++
	target := e.typingTarget
	e.typingTarget = 0
	return target
}

// Send submits the draft (or text, when non-empty) to the active
// conversation. On failure the draft is kept for a manual retry.
func (e *Engine) Send(ctx context.Context, text string) error {
	e.mu.Lock()
	if text == "" {
		text = e.draft
	}
	content := strings.TrimSpace(text)
	peer := e.active
	if content == "" || peer == 0 {
		e.mu.Unlock()
		return nil
	}
	sock, target := e.sock, e.takeTypingLocked()
	e.mu.Unlock()

	if target != 0 {
		e.emit(sock, &realtime.StopTyping{TargetUserID: target})
	}

	msg, err := e.api.Send(ctx, peer, content, uuid.NewString())
	if err != nil {
		e.mu.Lock()
		e.draft = text
		e.mu.Unlock()
		logger.Warn("msgsync: send to %d: %v", peer, err)
		e.changed()
		return err
	}

	e.mu.Lock()
	if e.active == peer {
		e.timeline, _ = insertMessage(e.timeline, *msg)
		e.draft = ""
	}
	known := e.bumpLocked(peer, *msg, false)
	e.mu.Unlock()

	if !known {
		e.async(func() {
			_ = e.LoadConversations(context.Background())
		})
	}
	e.changed()
	return nil
}

// Snapshot accessors return copies.

func (e *Engine) Self() uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.self
}

func (e *Engine) Active() uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *Engine) Conversations() []Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Conversation(nil), e.conversations...)
}

func (e *Engine) Timeline() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Message(nil), e.timeline...)
}

func sortedKeys(set map[uint]bool) []uint {
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (e *Engine) Online() []uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.online)
}

func (e *Engine) IsOnline(userID uint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online[userID]
}

func (e *Engine) Typing() []uint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedKeys(e.typing)
}

// Connected reports whether a realtime connection is open.
func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sock != nil
}
