package portfolio

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/papertrade/trading-service/internal/models"
)

// QuoteSource supplies the latest quotes for a set of symbols.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) (map[string]models.Quote, error)
}

// SymbolLister reports which symbols are currently held by any user.
type SymbolLister interface {
	HeldSymbols() ([]string, error)
}

// Refresher periodically pulls quotes for all held symbols and keeps an
// in-memory snapshot for reconciliation. It only reads; a stale snapshot is
// at most one interval old.
type Refresher struct {
	source   QuoteSource
	lister   SymbolLister
	interval time.Duration

	mu     sync.RWMutex
	latest map[string]models.Quote
}

// NewRefresher creates a Refresher polling at the given interval.
func NewRefresher(source QuoteSource, lister SymbolLister, interval time.Duration) *Refresher {
	return &Refresher{
		source:   source,
		lister:   lister,
		interval: interval,
		latest:   make(map[string]models.Quote),
	}
}

// Start refreshes once immediately, then on every tick until ctx is canceled.
func (r *Refresher) Start(ctx context.Context) {
	log.Printf("Starting portfolio quote refresher (interval: %s)", r.interval)

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Portfolio quote refresher shutting down...")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	symbols, err := r.lister.HeldSymbols()
	if err != nil {
		log.Printf("Error listing held symbols: %v", err)
		return
	}
	if len(symbols) == 0 {
		return
	}

	quotes, err := r.source.Quotes(ctx, symbols)
	if err != nil {
		log.Printf("Error refreshing quotes: %v", err)
		return
	}

	r.mu.Lock()
	r.latest = quotes
	r.mu.Unlock()
}

// Snapshot returns the most recent quote map. The returned map is a copy.
func (r *Refresher) Snapshot() map[string]models.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]models.Quote, len(r.latest))
	for symbol, quote := range r.latest {
		snapshot[symbol] = quote
	}
	return snapshot
}
