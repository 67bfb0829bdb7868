package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/auth"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/handlers"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (http.Handler, *mocks.MockBookingService, *auth.Tokens) {
	t.Helper()
	bookings := new(mocks.MockBookingService)
	tokens := auth.NewTokens("router-secret", time.Hour)
	h := handlers.NewHandler(bookings, new(mocks.MockAccountService))
	ws := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }
	return SetupRouter(h, tokens.Middleware, ws), bookings, tokens
}

func TestHealthCheck(t *testing.T) {
	r, _, _ := setup(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r, _, _ := setup(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/reservations", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReservationsRequireToken(t *testing.T) {
	r, bookings, tokens := setup(t)
	bookings.On("ListReservations", mock.Anything, int64(5)).Return([]models.Reservation{}, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reservations", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := tokens.Issue(5, "asha", false)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/reservations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	bookings.AssertExpectations(t)
}

func TestSearchRouteIsNotAFlightID(t *testing.T) {
	r, bookings, _ := setup(t)
	bookings.On("SearchFlights", mock.Anything, mock.Anything).Return([]models.Flight{}, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/flights/search?origin=DEL&destination=BOM", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	bookings.AssertNotCalled(t, "GetFlight", mock.Anything, mock.Anything)
}

func TestWebsocketRouteIsPublic(t *testing.T) {
	r, _, _ := setup(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/flights/f-1/ws", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
