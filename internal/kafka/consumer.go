package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/papertrade/trading-service/internal/models"
)

// QuoteStore applies price updates to the stored stock universe.
type QuoteStore interface {
	ApplyQuote(q models.Quote) error
}

// QuoteCache caches the latest quote per symbol for fast reads.
type QuoteCache interface {
	Put(ctx context.Context, q models.Quote) error
}

// QuoteConsumer consumes market quote events and fans them out to the stock
// universe and the quote cache. It never touches positions or funds; the
// trade engine is the only writer there.
type QuoteConsumer struct {
	reader *kafka.Reader
	store  QuoteStore
	cache  QuoteCache
}

// NewQuoteConsumer creates a Kafka consumer for quote events
func NewQuoteConsumer(brokers []string, topic, groupID string, store QuoteStore, cache QuoteCache) *QuoteConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &QuoteConsumer{
		reader: reader,
		store:  store,
		cache:  cache,
	}
}

// Start begins consuming messages from Kafka
func (c *QuoteConsumer) Start(ctx context.Context) error {
	log.Printf("Starting quote consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Quote consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single quote message
func (c *QuoteConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.QuoteEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal quote event: %w", err)
	}

	if event.EventType != models.EventQuoteUpdated {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}

	quote := event.Quote
	if quote.Symbol == "" {
		quote.Symbol = event.Symbol
	}
	if !quote.Price.IsPositive() {
		return fmt.Errorf("invalid quote price for %s: %s", quote.Symbol, quote.Price)
	}
	if quote.Timestamp.IsZero() {
		quote.Timestamp = event.Timestamp
	}

	if err := c.store.ApplyQuote(quote); err != nil {
		return fmt.Errorf("failed to apply quote for %s: %w", quote.Symbol, err)
	}

	// The cache is best-effort; a miss falls back to the stocks table.
	if c.cache != nil {
		if err := c.cache.Put(ctx, quote); err != nil {
			log.Printf("Error caching quote for %s: %v", quote.Symbol, err)
		}
	}

	return nil
}

// Close closes the Kafka consumer
func (c *QuoteConsumer) Close() error {
	return c.reader.Close()
}
