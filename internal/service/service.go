package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/apperr"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/fare"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
)

// BookingService defines the booking service interface
type BookingService interface {
	ListAirports(ctx context.Context) ([]models.Airport, error)
	SearchFlights(ctx context.Context, req models.SearchRequest) ([]models.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	QuoteFare(ctx context.Context, flightID string, extras []string) (*fare.Quote, error)
	BookTicket(ctx context.Context, userID int64, req models.BookRequest) (*models.Reservation, error)
	CancelReservation(ctx context.Context, userID, reservationID int64) (*models.Reservation, error)
	ListReservations(ctx context.Context, userID int64) ([]models.Reservation, error)
}

// Reader serves the read-only queries straight from the database
type Reader interface {
	ListAirports(ctx context.Context) ([]models.Airport, error)
	GetFlight(ctx context.Context, id string) (*models.Flight, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Reservation, error)
}

// Notifier receives seat count changes after a booking or cancellation
type Notifier interface {
	BroadcastSeatAvailability(flightID string, seatsAvailable int)
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	temporalClient client.Client
	taskQueue      string
	reader         Reader
	notifier       Notifier
}

// NewBookingService creates a new BookingService. notifier may be nil.
func NewBookingService(temporalClient client.Client, taskQueue string, reader Reader, notifier Notifier) BookingService {
	return &bookingServiceImpl{
		temporalClient: temporalClient,
		taskQueue:      taskQueue,
		reader:         reader,
		notifier:       notifier,
	}
}

func (s *bookingServiceImpl) ListAirports(ctx context.Context) ([]models.Airport, error) {
	return s.reader.ListAirports(ctx)
}

func (s *bookingServiceImpl) SearchFlights(ctx context.Context, req models.SearchRequest) ([]models.Flight, error) {
	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	req.Date = strings.TrimSpace(req.Date)

	if !isAirportCode(req.Origin) || !isAirportCode(req.Destination) {
		return nil, apperr.Validation("origin and destination must be 3-letter airport codes")
	}
	if req.Origin == req.Destination {
		return nil, apperr.Validation("origin and destination must differ")
	}
	class, err := models.ParseFlightClass(string(req.Class))
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	req.Class = class

	var result models.SearchFlightsResult
	if err := s.execute(ctx, "search", models.SearchFlightsWorkflowName, req, &result); err != nil {
		return nil, err
	}
	if result.Flights == nil {
		return []models.Flight{}, nil
	}
	return result.Flights, nil
}

func (s *bookingServiceImpl) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	return s.reader.GetFlight(ctx, flightID)
}

func (s *bookingServiceImpl) QuoteFare(ctx context.Context, flightID string, extras []string) (*fare.Quote, error) {
	flight, err := s.reader.GetFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	q := fare.Calculate(flight.Price, extras)
	return &q, nil
}

// BookTicket books on behalf of the authenticated user; any user id in req is replaced.
func (s *bookingServiceImpl) BookTicket(ctx context.Context, userID int64, req models.BookRequest) (*models.Reservation, error) {
	req.UserID = strconv.FormatInt(userID, 10)

	var res models.Reservation
	if err := s.execute(ctx, "book", models.BookTicketWorkflowName, req, &res); err != nil {
		return nil, err
	}
	s.notify(res.FlightID, res.SeatsAvailable)
	return &res, nil
}

// CancelReservation cancels a reservation owned by userID. Reservations of
// other users are reported as not found.
func (s *bookingServiceImpl) CancelReservation(ctx context.Context, userID, reservationID int64) (*models.Reservation, error) {
	existing, err := s.reader.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, apperr.NotFound("reservation %d not found", reservationID)
	}

	var res models.Reservation
	input := models.CancelReservationInput{ReservationID: reservationID}
	if err := s.execute(ctx, "cancel", models.CancelReservationWorkflowName, input, &res); err != nil {
		return nil, err
	}
	if res.SeatReleased {
		s.notify(res.FlightID, res.SeatsAvailable)
	}
	return &res, nil
}

func (s *bookingServiceImpl) ListReservations(ctx context.Context, userID int64) ([]models.Reservation, error) {
	return s.reader.ListByUser(ctx, userID)
}

// execute runs a workflow to completion and decodes its result into out.
func (s *bookingServiceImpl) execute(ctx context.Context, prefix, workflowName string, input, out interface{}) error {
	workflowOptions := client.StartWorkflowOptions{
		ID:        prefix + "-" + uuid.New().String(),
		TaskQueue: s.taskQueue,
	}

	run, err := s.temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflowName, input)
	if err != nil {
		return apperr.Storage("failed to start workflow", err)
	}
	if err := run.Get(ctx, out); err != nil {
		return apperr.FromWorkflowError(err)
	}
	return nil
}

func (s *bookingServiceImpl) notify(flightID string, seatsAvailable int) {
	if s.notifier != nil && flightID != "" {
		s.notifier.BroadcastSeatAvailability(flightID, seatsAvailable)
	}
}

func isAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
