package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/papertrade/trading-service/internal/models"
)

const keyPrefix = "quote:"

// Loader supplies reference price data for symbols missing from the cache.
type Loader interface {
	GetStocksBySymbols(symbols []string) ([]*models.Stock, error)
}

// Cache is a Redis-backed quote cache. Quotes are written by the market feed
// consumer and read by portfolio reconciliation; cache misses fall back to
// the stored stock universe and are backfilled.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	loader Loader
}

// New creates a Cache with the given TTL and fallback loader.
func New(client *redis.Client, ttl time.Duration, loader Loader) *Cache {
	return &Cache{client: client, ttl: ttl, loader: loader}
}

// Put stores a quote under its symbol key.
func (c *Cache) Put(ctx context.Context, q models.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+q.Symbol, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote for %s: %w", q.Symbol, err)
	}
	return nil
}

// Quotes returns the latest quotes for the given symbols. Symbols missing
// from Redis are loaded from the stock universe and backfilled best-effort;
// symbols unknown there too are simply absent from the result.
func (c *Cache) Quotes(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	result := make(map[string]models.Quote, len(symbols))
	if len(symbols) == 0 {
		return result, nil
	}

	keys := make([]string, len(symbols))
	for i, symbol := range symbols {
		keys[i] = keyPrefix + symbol
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read quote cache: %w", err)
	}

	var missing []string
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			missing = append(missing, symbols[i])
			continue
		}

		var q models.Quote
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			log.Printf("Dropping unreadable cached quote for %s: %v", symbols[i], err)
			missing = append(missing, symbols[i])
			continue
		}
		result[q.Symbol] = q
	}

	if len(missing) > 0 && c.loader != nil {
		stocks, err := c.loader.GetStocksBySymbols(missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load quotes for %v: %w", missing, err)
		}
		for _, s := range stocks {
			q := models.Quote{
				Symbol:        s.Symbol,
				Price:         s.CurrentPrice,
				PreviousClose: s.PreviousClose,
				Timestamp:     s.LastUpdated,
			}
			result[s.Symbol] = q

			if err := c.Put(ctx, q); err != nil {
				log.Printf("Error backfilling quote cache for %s: %v", s.Symbol, err)
			}
		}
	}

	return result, nil
}
