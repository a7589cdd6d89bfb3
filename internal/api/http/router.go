package http

import (
	"rentool-backend/internal/security"

	"github.com/gorilla/mux"
)

// NewRouter mounts the rental and tool endpoints under /api/v1. When a
// token manager is supplied, every endpoint requires a verified bearer
// identity.
func NewRouter(rentalHandler *RentalHandler, toolHandler *ToolHandler, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogging)

	api := router.PathPrefix("/api/v1").Subrouter()
	if tm != nil {
		api.Use(RequireAuth(tm))
	}

	api.HandleFunc("/rentals", rentalHandler.List).Methods("GET")
	api.HandleFunc("/rentals", rentalHandler.Create).Methods("POST")
	api.HandleFunc("/rentals/{rentalId}", rentalHandler.Get).Methods("GET")
	api.HandleFunc("/rentals/{rentalId}", rentalHandler.Update).Methods("PUT", "PATCH")
	api.HandleFunc("/rentals/{rentalId}", rentalHandler.Cancel).Methods("DELETE")
	api.HandleFunc("/rentals/{rentalId}/force", rentalHandler.ForceCancel).Methods("DELETE")
	api.HandleFunc("/rentals/{rentalId}/settle", rentalHandler.Settle).Methods("POST")

	api.HandleFunc("/tools", toolHandler.List).Methods("GET")
	api.HandleFunc("/tools/{toolId}", toolHandler.Get).Methods("GET")

	return router
}
