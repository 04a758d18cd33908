package realtime

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	RegisterType(&Join{})
	RegisterType(&NewMessage{})
	RegisterType(&MessagesRead{})
	RegisterType(&UserOnline{})
	RegisterType(&UserOffline{})
	RegisterType(&OnlineUsersList{})
	RegisterType(&Typing{})
	RegisterType(&StopTyping{})
	RegisterType(&SessionExpired{})
	RegisterType(&Ping{})
	RegisterType(&Pong{})
	RegisterType(&Error{})
	RegisterType(&Batch{})
}

func RegisterType(ev Event) {
	typeRegistry[ev.EventType()] = reflect.TypeOf(ev).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}

func newEvent(eventType string) (Event, error) {
	t, ok := typeRegistry[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	return reflect.New(t).Interface().(Event), nil
}

// Encode wraps ev in an envelope.
func Encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: ev.EventType(), Payload: payload})
}

// Decode parses an envelope into its concrete event type.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return DecodeEnvelope(&env)
}

func DecodeEnvelope(env *Envelope) (Event, error) {
	ev, err := newEvent(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, ev); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	return ev, nil
}

// Unbatch decodes the frames inside a Batch, skipping ones that fail.
func Unbatch(b *Batch) ([]Event, []error) {
	events := make([]Event, 0, len(b.Messages))
	var errs []error
	for _, raw := range b.Messages {
		ev, err := Decode(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}
	return events, errs
}

// Compress gzips a frame.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
