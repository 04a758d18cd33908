package ws

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/models"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queued struct {
	userID    uint
	messageID uint
	payload   string
}

type fakePendingRepo struct {
	mu        sync.Mutex
	items     []queued
	retryable []models.PendingMessage
	attempted []uint
	markErr   error
	cleanups  []time.Duration
}

func (r *fakePendingRepo) Enqueue(userID, messageID uint, payload string, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, queued{userID, messageID, payload})
	return nil
}

func (r *fakePendingRepo) GetPendingForUser(userID uint, limit int) ([]models.PendingMessage, error) {
	return nil, nil
}

func (r *fakePendingRepo) GetRetryable(limit int) ([]models.PendingMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.PendingMessage(nil), r.retryable...), nil
}

func (r *fakePendingRepo) MarkAttempted(id uint, attempts int, nextRetry *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempted = append(r.attempted, id)
	return r.markErr
}

func (r *fakePendingRepo) Delete(id uint) error         { return nil }
func (r *fakePendingRepo) DeleteBatch(ids []uint) error { return nil }

func (r *fakePendingRepo) CleanupOld(olderThan time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, olderThan)
	return nil
}

func (r *fakePendingRepo) snapshot() []queued {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queued(nil), r.items...)
}

func TestSendToOfflineUserQueuesStoredMessages(t *testing.T) {
	repo := &fakePendingRepo{}
	hub := NewHub(repo, nil)
	defer hub.Close()

	ev := &realtime.NewMessage{Message: realtime.Message{ID: 7, SenderID: 1, RecipientID: 2, Content: "hi"}}
	require.NoError(t, hub.SendToUserWithID(2, 7, ev))

	items := repo.snapshot()
	require.Len(t, items, 1)
	assert.Equal(t, uint(2), items[0].userID)
	assert.Equal(t, uint(7), items[0].messageID)

	decoded, err := realtime.Decode([]byte(items[0].payload))
	require.NoError(t, err)
	msg, ok := decoded.(*realtime.NewMessage)
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Content)
}

func TestSendToOfflineUserSkipsEphemeralAndUnidentified(t *testing.T) {
	repo := &fakePendingRepo{}
	hub := NewHub(repo, nil)
	defer hub.Close()

	require.NoError(t, hub.SendToUserWithID(2, 9, &realtime.Typing{UserID: 1}))
	require.NoError(t, hub.SendToUser(2, &realtime.UserOnline{UserID: 1}))
	require.NoError(t, hub.SendToUserWithID(2, 0, &realtime.MessagesRead{RecipientID: 1}))

	assert.Empty(t, repo.snapshot())
}

func TestHubWithoutPendingRepo(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()

	assert.NoError(t, hub.SendToUserWithID(3, 1, &realtime.NewMessage{}))
	assert.NoError(t, hub.FlushPendingMessages(3))
	assert.Equal(t, 0, hub.Count())
	assert.False(t, hub.IsOnline(3))
	assert.Empty(t, hub.GetOnlineUsers())
}

func TestCleanupPendingUsesRetention(t *testing.T) {
	repo := &fakePendingRepo{}
	hub := NewHub(repo, nil)
	defer hub.Close()

	hub.cleanupPending()
	hub.SetPendingRetention(48 * time.Hour)
	hub.SetPendingRetention(0)
	hub.cleanupPending()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []time.Duration{DefaultPendingRetention, 48 * time.Hour}, repo.cleanups)
}

func TestRetryPendingLogsMarkFailures(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)

	repo := &fakePendingRepo{
		retryable: []models.PendingMessage{{ID: 11, UserID: 5}, {ID: 12, UserID: 6}},
		markErr:   errors.New("db locked"),
	}
	hub := NewHub(repo, nil)
	defer hub.Close()

	hub.retryPending()

	repo.mu.Lock()
	assert.Equal(t, []uint{11, 12}, repo.attempted)
	repo.mu.Unlock()
	assert.Contains(t, buf.String(), "pending message 11 attempted")
	assert.Contains(t, buf.String(), "db locked")
}

type relayed struct {
	to uint
	ev realtime.Event
}

type relayLog struct {
	mu   sync.Mutex
	sent []relayed
}

func (l *relayLog) send(to uint, ev realtime.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, relayed{to, ev})
}

func (l *relayLog) all() []relayed {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]relayed(nil), l.sent...)
}

func TestTypingStartAndStop(t *testing.T) {
	log := &relayLog{}
	tracker := NewTypingTracker(clock.NewMock(), DefaultTypingExpiry, log.send)

	tracker.Start(1, 2)
	assert.True(t, tracker.Active(1, 2))
	tracker.Stop(1, 2)
	assert.False(t, tracker.Active(1, 2))

	// already cleared
	tracker.Stop(1, 2)

	sent := log.all()
	require.Len(t, sent, 2)
	assert.Equal(t, uint(2), sent[0].to)
	typing, ok := sent[0].ev.(*realtime.Typing)
	require.True(t, ok)
	assert.Equal(t, uint(1), typing.UserID)
	stop, ok := sent[1].ev.(*realtime.StopTyping)
	require.True(t, ok)
	assert.Equal(t, uint(1), stop.UserID)
}

func TestTypingExpires(t *testing.T) {
	log := &relayLog{}
	mock := clock.NewMock()
	tracker := NewTypingTracker(mock, DefaultTypingExpiry, log.send)

	tracker.Start(1, 2)
	mock.Add(3 * time.Second)
	// renewed before the first expiry
	tracker.Start(1, 2)
	mock.Add(3 * time.Second)
	assert.True(t, tracker.Active(1, 2))

	mock.Add(3 * time.Second)
	assert.Eventually(t, func() bool { return !tracker.Active(1, 2) }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		sent := log.all()
		if len(sent) != 3 {
			return false
		}
		_, ok := sent[2].ev.(*realtime.StopTyping)
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestTypingDisconnectClearsAllTargets(t *testing.T) {
	log := &relayLog{}
	tracker := NewTypingTracker(clock.NewMock(), DefaultTypingExpiry, log.send)

	tracker.Start(1, 2)
	tracker.Start(1, 3)
	tracker.Start(4, 2)
	tracker.Disconnect(1)

	assert.False(t, tracker.Active(1, 2))
	assert.False(t, tracker.Active(1, 3))
	assert.True(t, tracker.Active(4, 2))

	var stops []uint
	for _, r := range log.all() {
		if s, ok := r.ev.(*realtime.StopTyping); ok {
			assert.Equal(t, uint(1), s.UserID)
			stops = append(stops, r.to)
		}
	}
	assert.ElementsMatch(t, []uint{2, 3}, stops)
}

func TestProcessRejectsServerEvents(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	ctx := &MessageContext{UserID: 1, Hub: hub}

	assert.Error(t, Process(ctx, &realtime.NewMessage{}))
	assert.ErrorIs(t, Process(ctx, &realtime.Join{UserID: 2}), ErrJoinMismatch)
	assert.ErrorIs(t, Process(ctx, &realtime.Typing{TargetUserID: 1}), ErrInvalidTarget)
	assert.ErrorIs(t, Process(ctx, &realtime.StopTyping{}), ErrInvalidTarget)
	assert.NoError(t, Process(ctx, &realtime.Pong{}))
}

func TestProcessTypingRelaysThroughHub(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()
	ctx := &MessageContext{UserID: 1, Hub: hub}

	require.NoError(t, Process(ctx, &realtime.Typing{TargetUserID: 2}))
	assert.True(t, hub.Typing().Active(1, 2))
	require.NoError(t, Process(ctx, &realtime.StopTyping{TargetUserID: 2}))
	assert.False(t, hub.Typing().Active(1, 2))
}

func TestBatchEnvelopeCarriesRawFrames(t *testing.T) {
	frame, err := realtime.Encode(&realtime.NewMessage{Message: realtime.Message{ID: 1}})
	require.NoError(t, err)

	data, err := realtime.Encode(&realtime.Batch{Messages: []json.RawMessage{frame}, Count: 1})
	require.NoError(t, err)

	decoded, err := realtime.Decode(data)
	require.NoError(t, err)
	batch, ok := decoded.(*realtime.Batch)
	require.True(t, ok)
	events, errs := realtime.Unbatch(batch)
	assert.Empty(t, errs)
	require.Len(t, events, 1)
	assert.IsType(t, &realtime.NewMessage{}, events[0])
}
