package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrade/trading-service/internal/models"
)

// fakeQuoteStore records applied quotes
type fakeQuoteStore struct {
	applied []models.Quote
	err     error
}

func (f *fakeQuoteStore) ApplyQuote(q models.Quote) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, q)
	return nil
}

// fakeQuoteCache records cached quotes
type fakeQuoteCache struct {
	cached []models.Quote
	err    error
}

func (f *fakeQuoteCache) Put(_ context.Context, q models.Quote) error {
	if f.err != nil {
		return f.err
	}
	f.cached = append(f.cached, q)
	return nil
}

func quoteMessage(t *testing.T, event models.QuoteEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.Symbol), Value: data}
}

func TestProcessMessage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("applies quote update to store and cache", func(t *testing.T) {
		store := &fakeQuoteStore{}
		cache := &fakeQuoteCache{}
		consumer := &QuoteConsumer{store: store, cache: cache}

		msg := quoteMessage(t, models.QuoteEvent{
			EventType: models.EventQuoteUpdated,
			Symbol:    "AAPL",
			Quote: models.Quote{
				Symbol:        "AAPL",
				Price:         decimal.NewFromFloat(187.25),
				PreviousClose: decimal.NewFromFloat(185.00),
				Timestamp:     now,
			},
			Timestamp: now,
		})

		err := consumer.processMessage(context.Background(), msg)
		require.NoError(t, err)

		require.Len(t, store.applied, 1)
		assert.Equal(t, "AAPL", store.applied[0].Symbol)
		assert.True(t, store.applied[0].Price.Equal(decimal.NewFromFloat(187.25)))

		require.Len(t, cache.cached, 1)
		assert.Equal(t, "AAPL", cache.cached[0].Symbol)
	})

	t.Run("fills in symbol and timestamp from envelope", func(t *testing.T) {
		store := &fakeQuoteStore{}
		consumer := &QuoteConsumer{store: store}

		msg := quoteMessage(t, models.QuoteEvent{
			EventType: models.EventQuoteUpdated,
			Symbol:    "GOOGL",
			Quote: models.Quote{
				Price:         decimal.NewFromFloat(141.50),
				PreviousClose: decimal.NewFromFloat(140.00),
			},
			Timestamp: now,
		})

		err := consumer.processMessage(context.Background(), msg)
		require.NoError(t, err)

		require.Len(t, store.applied, 1)
		assert.Equal(t, "GOOGL", store.applied[0].Symbol)
		assert.Equal(t, now, store.applied[0].Timestamp)
	})

	t.Run("ignores other event types", func(t *testing.T) {
		store := &fakeQuoteStore{}
		consumer := &QuoteConsumer{store: store}

		msg := quoteMessage(t, models.QuoteEvent{
			EventType: models.EventTradeExecuted,
			Symbol:    "AAPL",
		})

		err := consumer.processMessage(context.Background(), msg)
		require.NoError(t, err)
		assert.Empty(t, store.applied)
	})

	t.Run("rejects non-positive prices", func(t *testing.T) {
		store := &fakeQuoteStore{}
		consumer := &QuoteConsumer{store: store}

		msg := quoteMessage(t, models.QuoteEvent{
			EventType: models.EventQuoteUpdated,
			Symbol:    "AAPL",
			Quote: models.Quote{
				Symbol: "AAPL",
				Price:  decimal.Zero,
			},
		})

		err := consumer.processMessage(context.Background(), msg)
		assert.Error(t, err)
		assert.Empty(t, store.applied)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		store := &fakeQuoteStore{}
		consumer := &QuoteConsumer{store: store}

		err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("not json")})
		assert.Error(t, err)
		assert.Empty(t, store.applied)
	})

	t.Run("propagates store failures", func(t *testing.T) {
		store := &fakeQuoteStore{err: assert.AnError}
		cache := &fakeQuoteCache{}
		consumer := &QuoteConsumer{store: store, cache: cache}

		msg := quoteMessage(t, models.QuoteEvent{
			EventType: models.EventQuoteUpdated,
			Symbol:    "AAPL",
			Quote: models.Quote{
				Symbol: "AAPL",
				Price:  decimal.NewFromFloat(187.25),
			},
		})

		err := consumer.processMessage(context.Background(), msg)
		assert.Error(t, err)
		assert.Empty(t, cache.cached)
	})

	t.Run("cache failure does not fail the message", func(t *testing.T) {
		store := &fakeQuoteStore{}
		cache := &fakeQuoteCache{err: assert.AnError}
		consumer := &QuoteConsumer{store: store, cache: cache}

		msg := quoteMessage(t, models.QuoteEvent{
			EventType: models.EventQuoteUpdated,
			Symbol:    "AAPL",
			Quote: models.Quote{
				Symbol: "AAPL",
				Price:  decimal.NewFromFloat(187.25),
			},
		})

		err := consumer.processMessage(context.Background(), msg)
		assert.NoError(t, err)
		assert.Len(t, store.applied, 1)
	})
}
