package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Public routes
	r.HandleFunc("/register", handler.Register).Methods("POST")
	r.HandleFunc("/login", handler.Login).Methods("POST")
	r.HandleFunc("/logout", handler.Logout).Methods("GET")

	// Authenticated routes
	r.Handle("/", handler.RequireSession(handler.Index)).Methods("GET")
	r.Handle("/quote", handler.RequireSession(handler.Quote)).Methods("POST")
	r.Handle("/buy", handler.RequireSession(handler.Buy)).Methods("POST")
	r.Handle("/sell", handler.RequireSession(handler.Sell)).Methods("POST")
	r.Handle("/history", handler.RequireSession(handler.History)).Methods("GET")
	r.Handle("/profile", handler.RequireSession(handler.Profile)).Methods("GET")
	r.Handle("/profile", handler.RequireSession(handler.UpdateProfile)).Methods("POST")
	r.Handle("/cash", handler.RequireSession(handler.AddCash)).Methods("POST")

	return r
}
