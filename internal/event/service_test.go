package event_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casecraft/casecraft-api/internal/event"
	"github.com/casecraft/casecraft-api/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
}

func (f *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if f.handlers == nil {
		f.handlers = make(map[string]mq.HandlerFunc)
	}
	f.handlers[topic] = handler
	return nil
}

func (f *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	return func() {}, nil
}

func TestEventServiceRun(t *testing.T) {
	t.Run("Should register a handler per product lifecycle topic", func(t *testing.T) {
		consumer := &fakeConsumer{}
		svc := event.New(slog.New(slog.DiscardHandler), consumer)

		cleanup, err := svc.Run(context.Background())
		require.NoError(t, err)
		defer cleanup()

		for _, topic := range []string{
			event.TopicProductCreated,
			event.TopicProductUpdated,
			event.TopicProductDeleted,
		} {
			assert.Contains(t, consumer.handlers, topic)
		}
	})

	t.Run("Should handle a well-formed product event", func(t *testing.T) {
		consumer := &fakeConsumer{}
		svc := event.New(slog.New(slog.DiscardHandler), consumer)

		cleanup, err := svc.Run(context.Background())
		require.NoError(t, err)
		defer cleanup()

		handler := consumer.handlers[event.TopicProductCreated]
		err = handler(context.Background(), event.TopicProductCreated,
			[]byte(`{"product_id":42,"name":"Leather Case","price":19.99,"stock":5,"category":"phone-case"}`))
		assert.NoError(t, err)
	})

	t.Run("Should reject a malformed payload", func(t *testing.T) {
		consumer := &fakeConsumer{}
		svc := event.New(slog.New(slog.DiscardHandler), consumer)

		cleanup, err := svc.Run(context.Background())
		require.NoError(t, err)
		defer cleanup()

		handler := consumer.handlers[event.TopicProductUpdated]
		err = handler(context.Background(), event.TopicProductUpdated, []byte(`not-json`))
		assert.Error(t, err)
	})
}
