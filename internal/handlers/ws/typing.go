package ws

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/realtime"
)

// DefaultTypingExpiry clears an indicator whose stopTyping never arrived.
const DefaultTypingExpiry = 5 * time.Second

type typingKey struct {
	from uint
	to   uint
}

type typingEntry struct {
	timer *clock.Timer
	gen   uint64
}

// TypingTracker relays typing indicators and remembers which ones are
// active so they can be cleared on expiry or disconnect.
type TypingTracker struct {
	mu     sync.Mutex
	clock  clock.Clock
	expiry time.Duration
	active map[typingKey]typingEntry
	gen    uint64
	send   func(userID uint, ev realtime.Event)
}

func NewTypingTracker(clk clock.Clock, expiry time.Duration, send func(userID uint, ev realtime.Event)) *TypingTracker {
	return &TypingTracker{
		clock:  clk,
		expiry: expiry,
		active: make(map[typingKey]typingEntry),
		send:   send,
	}
}

// Start tells to that from is typing and (re)arms the expiry.
func (t *TypingTracker) Start(from, to uint) {
	key := typingKey{from, to}

	t.mu.Lock()
	if entry, ok := t.active[key]; ok {
		entry.timer.Stop()
	}
	t.gen++
	gen := t.gen
	timer := t.clock.AfterFunc(t.expiry, func() {
		t.expire(key, gen)
	})
	t.active[key] = typingEntry{timer: timer, gen: gen}
	t.mu.Unlock()

	t.send(to, &realtime.Typing{UserID: from})
}

// Stop clears an active indicator. Stops for inactive pairs are dropped.
func (t *TypingTracker) Stop(from, to uint) {
	key := typingKey{from, to}

	t.mu.Lock()
	entry, ok := t.active[key]
	if ok {
		entry.timer.Stop()
		delete(t.active, key)
	}
	t.mu.Unlock()

	if ok {
		t.send(to, &realtime.StopTyping{UserID: from})
	}
}

// Disconnect clears every indicator from has open.
func (t *TypingTracker) Disconnect(from uint) {
	var targets []uint

	t.mu.Lock()
	for key, entry := range t.active {
		if key.from == from {
			entry.timer.Stop()
			delete(t.active, key)
			targets = append(targets, key.to)
		}
	}
	t.mu.Unlock()

	for _, to := range targets {
		t.send(to, &realtime.StopTyping{UserID: from})
	}
}

// Active reports whether from is currently shown as typing to to.
func (t *TypingTracker) Active(from, to uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[typingKey{from, to}]
	return ok
}

func (t *TypingTracker) expire(key typingKey, gen uint64) {
	t.mu.Lock()
	entry, ok := t.active[key]
	// a later Start replaced the timer
	if !ok || entry.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.active, key)
	t.mu.Unlock()

	t.send(key.to, &realtime.StopTyping{UserID: key.from})
}
