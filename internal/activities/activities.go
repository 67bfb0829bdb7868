package activities

import (
	"context"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/apperr"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"go.temporal.io/sdk/activity"
)

// MaxIngestRounds bounds how often offers with a taken flight number are renumbered.
const MaxIngestRounds = 3

// FlightSource produces flight offers for a route
type FlightSource interface {
	Generate(origin, destination, date string, class models.FlightClass) []models.Flight
	Renumber(f models.Flight) models.Flight
}

// Ledger is the persistence used by the activities
type Ledger interface {
	IngestOffers(ctx context.Context, offers []models.Flight) ([]string, error)
	Book(ctx context.Context, req models.BookRequest) (*models.Reservation, error)
	Cancel(ctx context.Context, reservationID int64) (*models.Reservation, error)
}

// Activities holds dependencies for activities
type Activities struct {
	flights FlightSource
	ledger  Ledger
}

// NewActivities creates a new Activities instance
func NewActivities(flights FlightSource, ledger Ledger) *Activities {
	return &Activities{flights: flights, ledger: ledger}
}

// SearchFlights generates offers for the route and records them so they can be booked.
// Offers whose flight number is already taken get a new number; offers that still
// cannot be stored are left out of the result.
func (a *Activities) SearchFlights(ctx context.Context, req models.SearchRequest) (*models.SearchFlightsResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Searching flights", "origin", req.Origin, "destination", req.Destination, "date", req.Date, "class", req.Class)

	offers := a.flights.Generate(req.Origin, req.Destination, req.Date, req.Class)
	latest := make(map[string]models.Flight, len(offers))
	for _, f := range offers {
		latest[f.ID] = f
	}

	stored := make(map[string]bool, len(offers))
	pending := offers
	for round := 0; round < MaxIngestRounds && len(pending) > 0; round++ {
		ids, err := a.ledger.IngestOffers(ctx, pending)
		if err != nil {
			logger.Error("Failed to ingest offers", "error", err)
			return nil, apperr.ToApplicationError(err)
		}
		for _, id := range ids {
			stored[id] = true
		}

		var retry []models.Flight
		for _, f := range pending {
			if !stored[f.ID] {
				f = a.flights.Renumber(f)
				latest[f.ID] = f
				retry = append(retry, f)
			}
		}
		pending = retry
	}

	bookable := make([]models.Flight, 0, len(offers))
	for _, f := range offers {
		if stored[f.ID] {
			bookable = append(bookable, latest[f.ID])
		}
	}

	logger.Info("Flights generated", "offers", len(offers), "bookable", len(bookable))
	return &models.SearchFlightsResult{Flights: bookable, Inserted: len(bookable)}, nil
}

// BookTicket reserves a seat
func (a *Activities) BookTicket(ctx context.Context, req models.BookRequest) (*models.Reservation, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Booking ticket", "flightId", req.FlightID, "seat", req.SeatNumber, "userId", req.UserID)

	res, err := a.ledger.Book(ctx, req)
	if err != nil {
		logger.Warn("Booking rejected", "flightId", req.FlightID, "kind", apperr.KindOf(err), "error", err)
		return nil, apperr.ToApplicationError(err)
	}

	logger.Info("Ticket booked", "ticketId", res.TicketID, "seatsAvailable", res.SeatsAvailable)
	return res, nil
}

// CancelReservation cancels a confirmed reservation and returns its seat
func (a *Activities) CancelReservation(ctx context.Context, input models.CancelReservationInput) (*models.Reservation, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Cancelling reservation", "reservationId", input.ReservationID)

	res, err := a.ledger.Cancel(ctx, input.ReservationID)
	if err != nil {
		logger.Warn("Cancellation rejected", "reservationId", input.ReservationID, "kind", apperr.KindOf(err), "error", err)
		return nil, apperr.ToApplicationError(err)
	}

	logger.Info("Reservation cancelled", "ticketId", res.TicketID)
	return res, nil
}
