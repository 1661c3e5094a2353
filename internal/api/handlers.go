package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/papertrade/trading-service/internal/database"
	"github.com/papertrade/trading-service/internal/engine"
	"github.com/papertrade/trading-service/internal/models"
	"github.com/papertrade/trading-service/internal/portfolio"
)

const defaultHistoryLimit = 50

// Store is the read/write surface the handlers need from the database.
type Store interface {
	GetStock(symbol string) (*models.Stock, error)
	GetAllStocks() ([]*models.Stock, error)
	GetPositionsByUser(userID string) ([]*models.Position, error)
	GetTransactionsByUser(userID string, limit int) ([]*models.Transaction, error)
	GetTransactionsBySymbol(userID, symbol string, limit int) ([]*models.Transaction, error)
	GetUserFunds(userID string) (*models.UserFunds, error)
	GetFundTransactionsByUser(userID string, limit int) ([]*models.FundTransaction, error)
	AddWishlistItem(w *models.WishlistItem) error
	GetWishlistByUser(userID string) ([]*models.WishlistItem, error)
	RemoveWishlistItem(userID, symbol string) error
}

// TradeService executes trades and fund movements.
type TradeService interface {
	ExecuteTrade(ctx context.Context, req engine.TradeRequest) (*models.Transaction, error)
	Deposit(ctx context.Context, userID, amount string) (*models.FundTransaction, error)
	Withdraw(ctx context.Context, userID, amount string) (*models.FundTransaction, error)
}

// QuoteView exposes the latest known quote per symbol.
type QuoteView interface {
	Snapshot() map[string]models.Quote
}

// EventPublisher publishes trade events after execution.
type EventPublisher interface {
	PublishTradeExecuted(ctx context.Context, t *models.Transaction) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db       Store
	trades   TradeService
	quotes   QuoteView
	producer EventPublisher
}

// NewHandler creates a new Handler
func NewHandler(db Store, trades TradeService, quotes QuoteView, producer EventPublisher) *Handler {
	return &Handler{
		db:       db,
		trades:   trades,
		quotes:   quotes,
		producer: producer,
	}
}

// flexString decodes a JSON number or string into its textual form, so
// clients may send "quantity": 5 or "quantity": "5".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// userID extracts the authenticated user from the request. Authentication is
// handled upstream; the gateway injects the verified user id.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func historyLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			return limit
		}
	}
	return defaultHistoryLimit
}

// ExecuteTrade handles POST /trades
func (h *Handler) ExecuteTrade(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		Symbol   string     `json:"symbol"`
		Quantity flexString `json:"quantity"`
		Type     string     `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	stock, err := h.db.GetStock(req.Symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	transaction, err := h.trades.ExecuteTrade(r.Context(), engine.TradeRequest{
		User:     &models.User{ID: uid},
		Stock:    stock,
		Quantity: string(req.Quantity),
		Side:     req.Type,
	})
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	// Publish Kafka event
	if h.producer != nil {
		if err := h.producer.PublishTradeExecuted(r.Context(), transaction); err != nil {
			// Log error but don't fail the request
			log.Printf("Error publishing trade event: %v", err)
		}
	}

	respondJSON(w, http.StatusCreated, transaction)
}

// GetPortfolio handles GET /portfolio
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	positions, err := h.db.GetPositionsByUser(uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var quotes map[string]models.Quote
	if h.quotes != nil {
		quotes = h.quotes.Snapshot()
	}

	reconciled := portfolio.Reconcile(positions, quotes)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"positions": reconciled,
		"summary":   portfolio.Summarize(reconciled),
	})
}

// GetTransactions handles GET /transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	limit := historyLimit(r)

	var (
		transactions []*models.Transaction
		err          error
	)
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		transactions, err = h.db.GetTransactionsBySymbol(uid, symbol, limit)
	} else {
		transactions, err = h.db.GetTransactionsByUser(uid, limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}

// GetFunds handles GET /funds
func (h *Handler) GetFunds(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	funds, err := h.db.GetUserFunds(uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, funds)
}

// MoveFunds handles POST /funds/transactions
func (h *Handler) MoveFunds(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		Type   string     `json:"type"`
		Amount flexString `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var (
		ft  *models.FundTransaction
		err error
	)
	switch req.Type {
	case models.FundTypeDeposit:
		ft, err = h.trades.Deposit(r.Context(), uid, string(req.Amount))
	case models.FundTypeWithdrawal:
		ft, err = h.trades.Withdraw(r.Context(), uid, string(req.Amount))
	default:
		http.Error(w, "type must be DEPOSIT or WITHDRAWAL", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusCreated, ft)
}

// GetFundTransactions handles GET /funds/transactions
func (h *Handler) GetFundTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	history, err := h.db.GetFundTransactionsByUser(uid, historyLimit(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// GetWishlist handles GET /wishlist
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	items, err := h.db.GetWishlistByUser(uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// AddToWishlist handles POST /wishlist
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	item := &models.WishlistItem{
		UserID:      uid,
		StockSymbol: req.Symbol,
		StockName:   req.Name,
	}
	if err := h.db.AddWishlistItem(item); err != nil {
		if errors.Is(err, database.ErrAlreadyInWishlist) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// RemoveFromWishlist handles DELETE /wishlist/{symbol}
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	if err := h.db.RemoveWishlistItem(uid, vars["symbol"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAllStocks handles GET /stocks
func (h *Handler) GetAllStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.db.GetAllStocks()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, stocks)
}

// GetStock handles GET /stocks/{symbol}
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	stock, err := h.db.GetStock(vars["symbol"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, stock)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// statusForError maps trade engine errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrInvalidQuantity),
		errors.Is(err, engine.ErrInvalidPrice),
		errors.Is(err, engine.ErrInvalidSide),
		errors.Is(err, engine.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrNoPosition),
		errors.Is(err, engine.ErrInsufficientShares):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
