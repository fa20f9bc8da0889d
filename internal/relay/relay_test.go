package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anmol-28/livedatatest/internal/model"
)

type stubReader struct {
	messages [][]byte
	err      error
	pos      int
}

// ReadMessage yields the scripted messages in order, then the scripted error
// or blocks until the context is cancelled.
func (r *stubReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.pos < len(r.messages) {
		m := kafka.Message{Value: r.messages[r.pos]}
		r.pos++
		return m, nil
	}
	if r.err != nil {
		return kafka.Message{}, r.err
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

type stubBroadcaster struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (b *stubBroadcaster) Broadcast(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = append(b.payloads, data)
}

func (b *stubBroadcaster) all() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.payloads))
	copy(out, b.payloads)
	return out
}

func TestRelay_BroadcastsEventsInOrder(t *testing.T) {
	first, err := (model.PositionEvent{Timestamp: 1, Latitude: 1.5, Longitude: 2.5, EventTime: "2024-01-15T15:00:01Z"}).Encode()
	require.NoError(t, err)
	second, err := (model.PositionEvent{Timestamp: 2, Latitude: 3.5, Longitude: 4.5, EventTime: "2024-01-15T15:00:02Z"}).Encode()
	require.NoError(t, err)

	reader := &stubReader{messages: [][]byte{first, second}}
	hub := &stubBroadcaster{}

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- New(reader, hub, testLogger()).Run(ctx) }()

	require.Eventually(t, func() bool { return len(hub.all()) == 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-runDone)

	got := hub.all()
	one, err := model.DecodeEvent(got[0])
	require.NoError(t, err)
	two, err := model.DecodeEvent(got[1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), one.Timestamp)
	assert.Equal(t, int64(2), two.Timestamp)
}

func TestRelay_SkipsUndecodableMessages(t *testing.T) {
	valid, err := (model.PositionEvent{Timestamp: 7, Latitude: 1, Longitude: 2, EventTime: "2024-01-15T15:00:07Z"}).Encode()
	require.NoError(t, err)

	reader := &stubReader{messages: [][]byte{[]byte(`{broken`), valid}}
	hub := &stubBroadcaster{}

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- New(reader, hub, testLogger()).Run(ctx) }()

	require.Eventually(t, func() bool { return len(hub.all()) == 1 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-runDone)

	event, err := model.DecodeEvent(hub.all()[0])
	require.NoError(t, err)
	assert.Equal(t, int64(7), event.Timestamp)
}

func TestRelay_ReadErrorIsFatal(t *testing.T) {
	wantErr := errors.New("broker gone")
	reader := &stubReader{err: wantErr}
	hub := &stubBroadcaster{}

	err := New(reader, hub, testLogger()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, hub.all())
}

func TestRelay_CancelledContextReturnsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(&stubReader{}, &stubBroadcaster{}, testLogger()).Run(ctx)
	require.NoError(t, err)
}
