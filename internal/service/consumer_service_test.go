package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/service"
	"quiknote-be/internal/store"
	internalWS "quiknote-be/internal/websocket"
	"quiknote-be/pkg/events"
)

type recorder struct {
	mu       sync.Mutex
	frames   map[string][]internalWS.Message
	exported []events.Event
	failWith error
}

func newRecorder() *recorder {
	return &recorder{frames: make(map[string][]internalWS.Message)}
}

func (r *recorder) Send(userID string, msg internalWS.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[userID] = append(r.frames[userID], msg)
}

func (r *recorder) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exported = append(r.exported, event)
	return r.failWith
}

func (r *recorder) count() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.frames {
		n += len(f)
	}
	return n, len(r.exported)
}

func TestPublisherToConsumer(t *testing.T) {
	for _, tt := range []struct {
		name     string
		failWith error
	}{
		{name: "exported"},
		{name: "export failure is tolerated", failWith: errors.New("nats down")},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
			rec := newRecorder()
			rec.failWith = tt.failWith

			consumer := service.NewConsumerService(bus, "changes", rec, rec, logger.NewNopLogger())
			require.NoError(t, consumer.Consume(ctx))

			pub := service.NewPublisherService("changes", bus)
			at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
			require.NoError(t, pub.Publish(ctx, store.Change{Kind: store.NoteCreated, UserId: "u1", EntityIds: []string{"n1"}, At: at}))
			require.NoError(t, pub.Publish(ctx, store.Change{Kind: store.NoteTrashed, UserId: "u2", EntityIds: []string{"n2"}, At: at}))

			require.Eventually(t, func() bool {
				frames, exported := rec.count()
				return frames == 2 && exported == 2
			}, time.Second, 5*time.Millisecond)

			rec.mu.Lock()
			defer rec.mu.Unlock()
			require.Len(t, rec.frames["u1"], 1)
			assert.Equal(t, "note.created", rec.frames["u1"][0].Type)
			assert.Equal(t, "note.trashed", rec.exported[1].EventType())
		})
	}
}

func TestConsumer_WithoutExporter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	rec := newRecorder()
	require.NoError(t, service.NewConsumerService(bus, "changes", rec, nil, logger.NewNopLogger()).Consume(ctx))

	require.NoError(t, service.NewPublisherService("changes", bus).Publish(ctx, store.Change{Kind: store.TrashEmptied, UserId: "u1"}))

	require.Eventually(t, func() bool {
		frames, _ := rec.count()
		return frames == 1
	}, time.Second, 5*time.Millisecond)
}

func TestResyncService_Schedule(t *testing.T) {
	f := setup(t)

	disabled := service.NewResyncService("", f.sync, logger.NewNopLogger())
	require.NoError(t, disabled.Start())
	disabled.Stop()

	bad := service.NewResyncService("not a schedule", f.sync, logger.NewNopLogger())
	assert.Error(t, bad.Start())

	ok := service.NewResyncService("@every 1h", f.sync, logger.NewNopLogger())
	require.NoError(t, ok.Start())
	ok.Stop()
}
