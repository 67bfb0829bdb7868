package router

import (
	"net/http"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/handlers"
	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router. requireAuth guards the
// reservation and profile routes; ws serves the per-flight seat feed.
func SetupRouter(h *handlers.Handler, requireAuth mux.MiddlewareFunc, ws http.HandlerFunc) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware
	r.Use(corsMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Accounts
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost, http.MethodOptions)

	// Flights
	api.HandleFunc("/airports", h.ListAirports).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/search", h.SearchFlights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}/quote", h.QuoteFare).Methods(http.MethodGet, http.MethodOptions)

	// WebSocket for real-time seat counts
	api.HandleFunc("/flights/{id}/ws", ws).Methods(http.MethodGet)

	// Reservations and profile
	private := api.NewRoute().Subrouter()
	private.Use(requireAuth)
	private.HandleFunc("/reservations", h.ListReservations).Methods(http.MethodGet, http.MethodOptions)
	private.HandleFunc("/reservations", h.BookTicket).Methods(http.MethodPost, http.MethodOptions)
	private.HandleFunc("/reservations/{id}", h.CancelReservation).Methods(http.MethodDelete, http.MethodOptions)
	private.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet, http.MethodOptions)
	private.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPut, http.MethodOptions)

	// Health check
	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
