package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Trading
	api.HandleFunc("/trades", handler.ExecuteTrade).Methods("POST")
	api.HandleFunc("/transactions", handler.GetTransactions).Methods("GET")

	// Portfolio
	api.HandleFunc("/portfolio", handler.GetPortfolio).Methods("GET")

	// Funds
	api.HandleFunc("/funds", handler.GetFunds).Methods("GET")
	api.HandleFunc("/funds/transactions", handler.MoveFunds).Methods("POST")
	api.HandleFunc("/funds/transactions", handler.GetFundTransactions).Methods("GET")

	// Wishlist
	api.HandleFunc("/wishlist", handler.GetWishlist).Methods("GET")
	api.HandleFunc("/wishlist", handler.AddToWishlist).Methods("POST")
	api.HandleFunc("/wishlist/{symbol}", handler.RemoveFromWishlist).Methods("DELETE")

	// Stock universe
	api.HandleFunc("/stocks", handler.GetAllStocks).Methods("GET")
	api.HandleFunc("/stocks/{symbol}", handler.GetStock).Methods("GET")

	return r
}
