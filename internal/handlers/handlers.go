package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/apperr"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/auth"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service"
	"github.com/gorilla/mux"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	accountService service.AccountService
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, accountService service.AccountService) *Handler {
	return &Handler{
		bookingService: bookingService,
		accountService: accountService,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string, kind apperr.Kind) {
	respondJSON(w, status, map[string]string{"error": message, "kind": string(kind)})
}

// respondAppError maps an error kind onto the HTTP status
func respondAppError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	message := apperr.MessageOf(err)

	switch kind {
	case apperr.KindValidation, apperr.KindInvalidUser:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindCapacity, apperr.KindSeatTaken, apperr.KindConflict:
		status = http.StatusConflict
	default:
		log.Printf("request failed: %v", err)
		message = "internal server error"
	}
	respondError(w, status, message, kind)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", apperr.KindValidation)
		return false
	}
	return true
}

// ListAirports handles GET /api/airports
func (h *Handler) ListAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.bookingService.ListAirports(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, airports)
}

// SearchFlights handles GET /api/flights/search
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.SearchRequest{
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
		Date:        q.Get("date"),
		Class:       models.FlightClass(q.Get("class")),
	}

	flights, err := h.bookingService.SearchFlights(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flight, err := h.bookingService.GetFlight(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// QuoteFare handles GET /api/flights/{id}/quote?extras=a,b
func (h *Handler) QuoteFare(w http.ResponseWriter, r *http.Request) {
	var extras []string
	if raw := r.URL.Query().Get("extras"); raw != "" {
		extras = strings.Split(raw, ",")
	}

	quote, err := h.bookingService.QuoteFare(r.Context(), mux.Vars(r)["id"], extras)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// ListReservations handles GET /api/reservations
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.bookingService.ListReservations(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservations)
}

// BookTicket handles POST /api/reservations
func (h *Handler) BookTicket(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.bookingService.BookTicket(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// CancelReservation handles DELETE /api/reservations/{id}
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid reservation id", apperr.KindValidation)
		return
	}

	res, err := h.bookingService.CancelReservation(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
