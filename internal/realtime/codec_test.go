package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCoversAllEvents(t *testing.T) {
	names := []string{
		EventJoin, EventNewMessage, EventMessagesRead, EventUserOnline, EventUserOffline,
		EventOnlineUsersList, EventTyping, EventStopTyping, EventSessionExpired,
		EventPing, EventPong, EventError, EventBatch,
	}
	reg := GetTypeRegistry()
	for _, n := range names {
		_, ok := reg[n]
		assert.True(t, ok, "event %q not registered", n)
	}
}

func TestEncodeDecodeNewMessage(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	ev := &NewMessage{Message: Message{ID: 9, SenderID: 1, RecipientID: 2, Content: "hi", CreatedAt: created}}

	data, err := Encode(ev)
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &env))
	assert.JSONEq(t, `"newMessage"`, string(env["type"]))

	// Embedded message fields are flattened into the payload.
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(env["payload"], &payload))
	assert.EqualValues(t, 9, payload["id"])

	decoded, err := Decode(data)
	require.NoError(t, err)
	nm, ok := decoded.(*NewMessage)
	require.True(t, ok, "decoded %T", decoded)
	assert.Equal(t, uint(9), nm.ID)
	assert.True(t, nm.CreatedAt.Equal(created))
}

func TestDecodeTypingFromClient(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"typing","payload":{"targetUserId":4}}`))
	require.NoError(t, err)
	typing, ok := ev.(*Typing)
	require.True(t, ok)
	assert.Equal(t, uint(4), typing.TargetUserID)
	assert.Zero(t, typing.UserID)
}

func TestDecodeWithoutPayload(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.IsType(t, &Ping{}, ev)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"bogus","payload":{}}`))
	assert.Error(t, err)
}

func TestUnbatch(t *testing.T) {
	first, err := Encode(&UserOnline{UserID: 3})
	require.NoError(t, err)
	b := &Batch{Messages: []json.RawMessage{first, json.RawMessage(`{"type":"nope"}`)}, Count: 2}

	events, errs := Unbatch(b)
	require.Len(t, events, 1)
	assert.Len(t, errs, 1)
	assert.Equal(t, &UserOnline{UserID: 3}, events[0])
}

func TestCompressRoundTrip(t *testing.T) {
	in := []byte(`{"type":"onlineUsersList","payload":{"userIds":[1,2,3]}}`)
	packed, err := Compress(in)
	require.NoError(t, err)
	out, err := Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEphemeral(t *testing.T) {
	assert.True(t, Ephemeral(EventTyping))
	assert.True(t, Ephemeral(EventUserOnline))
	assert.False(t, Ephemeral(EventNewMessage))
	assert.False(t, Ephemeral(EventMessagesRead))
}
