// Package ledger owns flight inventory and reservation state in Postgres.
package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/apperr"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MaxTicketAttempts bounds how many fresh ticket ids a booking tries on collision.
const MaxTicketAttempts = 5

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgUndefinedTable      = "42P01"

	confirmedSeatIndex = "reservations_confirmed_seat_idx"
)

//go:embed schema.sql
var schema string

// DBTX is the subset of pgxpool.Pool the ledger needs
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger handles inventory and reservation transitions
type Ledger struct {
	db        DBTX
	now       func() time.Time
	newTicket func() string
}

type Option func(*Ledger)

// WithClock overrides the booking timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithTicketFunc overrides ticket id generation.
func WithTicketFunc(newTicket func() string) Option {
	return func(l *Ledger) { l.newTicket = newTicket }
}

// New creates a new ledger
func New(db DBTX, opts ...Option) *Ledger {
	l := &Ledger{
		db:        db,
		now:       time.Now,
		newTicket: NewTicketID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewTicketID returns a user-facing ticket code such as TKT-48213.
func NewTicketID() string {
	return fmt.Sprintf("TKT-%05d", 10000+rand.Intn(90000))
}

// Migrate creates the tables and seeds the airport reference data.
func (l *Ledger) Migrate(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// --- Inventory ---

// IngestOffers stores offers whose flight number is not yet known and skips the rest.
// It returns the ids of the stored offers. The batch is committed as a whole or not at all.
func (l *Ledger) IngestOffers(ctx context.Context, offers []models.Flight) ([]string, error) {
	stored := []string{}
	if len(offers) == 0 {
		return stored, nil
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, apperr.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	for _, f := range offers {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO flights (
				id, flight_number, airline, aircraft, origin, destination,
				departure_at, arrival_at, duration_minutes, price, seats_available, class
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (flight_number) DO NOTHING
			RETURNING id
		`, f.ID, f.FlightNumber, f.Airline, f.AircraftType, f.Origin, f.Destination,
			f.DepartureAt, f.ArrivalAt, f.DurationMinutes, f.Price, f.SeatsAvailable, string(f.Class)).Scan(&id)
		switch {
		case err == nil:
			stored = append(stored, id)
		case errors.Is(err, pgx.ErrNoRows):
			// flight number already known
		default:
			return nil, apperr.Storage(fmt.Sprintf("failed to store flight %s", f.FlightNumber), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Storage("failed to commit flights", err)
	}
	return stored, nil
}

// GetFlight returns a stored flight by id
func (l *Ledger) GetFlight(ctx context.Context, id string) (*models.Flight, error) {
	var f models.Flight
	var class string
	err := l.db.QueryRow(ctx, `
		SELECT id, flight_number, airline, aircraft, origin, destination,
		       departure_at, arrival_at, duration_minutes, price, seats_available, class
		FROM flights
		WHERE id = $1
	`, id).Scan(
		&f.ID, &f.FlightNumber, &f.Airline, &f.AircraftType, &f.Origin, &f.Destination,
		&f.DepartureAt, &f.ArrivalAt, &f.DurationMinutes, &f.Price, &f.SeatsAvailable, &class,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("flight %s not found", id)
		}
		return nil, apperr.Storage("failed to get flight", err)
	}
	f.Class = models.FlightClass(class)
	return &f, nil
}

// ListAirports returns the airport reference table ordered by city
func (l *Ledger) ListAirports(ctx context.Context) ([]models.Airport, error) {
	rows, err := l.db.Query(ctx, `SELECT code, name, city, country FROM airports ORDER BY city`)
	if err != nil {
		return nil, apperr.Storage("failed to query airports", err)
	}
	defer rows.Close()

	airports := []models.Airport{}
	for rows.Next() {
		var a models.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.City, &a.Country); err != nil {
			return nil, apperr.Storage("failed to scan airport", err)
		}
		a.Code = strings.TrimSpace(a.Code)
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("failed to read airports", err)
	}
	return airports, nil
}

// --- Reservations ---

// Book reserves a seat on a flight. The seat counter is decremented in the same
// transaction that creates the reservation, and only while seats remain.
func (l *Ledger) Book(ctx context.Context, req models.BookRequest) (*models.Reservation, error) {
	req.PassengerName = strings.TrimSpace(req.PassengerName)
	req.FlightID = strings.TrimSpace(req.FlightID)
	req.SeatNumber = strings.ToUpper(strings.TrimSpace(req.SeatNumber))
	req.UserID = strings.TrimSpace(req.UserID)

	if req.PassengerName == "" || req.FlightID == "" || req.SeatNumber == "" || req.UserID == "" {
		return nil, apperr.Validation("passenger name, flight, seat and user are required")
	}
	if !models.ValidSeatNumber(req.SeatNumber) {
		return nil, apperr.Validation("invalid seat number %q", req.SeatNumber)
	}
	userID, err := strconv.ParseInt(req.UserID, 10, 64)
	if err != nil || userID <= 0 {
		return nil, apperr.New(apperr.KindInvalidUser, "invalid user id %q", req.UserID)
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, apperr.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	res := &models.Reservation{
		UserID:        userID,
		FlightID:      req.FlightID,
		PassengerName: req.PassengerName,
		SeatNumber:    req.SeatNumber,
		Extras:        models.SplitExtras(models.JoinExtras(req.Extras)),
		Status:        models.ReservationConfirmed,
		BookingDate:   l.now().UTC(),
	}

	err = tx.QueryRow(ctx, `
		UPDATE flights
		SET seats_available = seats_available - 1
		WHERE id = $1 AND seats_available > 0
		RETURNING flight_number, seats_available
	`, req.FlightID).Scan(&res.FlightNumber, &res.SeatsAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, l.unavailable(ctx, tx, req.FlightID)
	}
	if err != nil {
		return nil, apperr.Storage("failed to reserve seat", err)
	}

	var taken bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE flight_id = $1 AND seat_number = $2 AND status = $3
		)
	`, req.FlightID, req.SeatNumber, string(models.ReservationConfirmed)).Scan(&taken)
	if err != nil {
		return nil, apperr.Storage("failed to check seat", err)
	}
	if taken {
		return nil, apperr.New(apperr.KindSeatTaken, "seat %s is already booked on flight %s", req.SeatNumber, res.FlightNumber)
	}

	extras := models.JoinExtras(req.Extras)
	for attempt := 0; attempt < MaxTicketAttempts && res.ID == 0; attempt++ {
		ticket := l.newTicket()
		err = tx.QueryRow(ctx, `
			INSERT INTO reservations (
				user_id, flight_id, flight_number, passenger_name, seat_number,
				booking_date, status, ticket_id, extras
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (ticket_id) DO NOTHING
			RETURNING id
		`, userID, req.FlightID, res.FlightNumber, req.PassengerName, req.SeatNumber,
			res.BookingDate, string(models.ReservationConfirmed), ticket, extras).Scan(&res.ID)
		switch {
		case err == nil:
			res.TicketID = ticket
		case errors.Is(err, pgx.ErrNoRows):
			// ticket collision, draw again
		default:
			return nil, bookingFailure(err, userID, req.SeatNumber)
		}
	}
	if res.ID == 0 {
		return nil, apperr.Storage("failed to book ticket", errors.New("could not allocate a unique ticket id"))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Storage("failed to commit booking", err)
	}
	return res, nil
}

// unavailable tells a missing flight apart from a sold out one.
func (l *Ledger) unavailable(ctx context.Context, tx pgx.Tx, flightID string) error {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id = $1)`, flightID).Scan(&exists)
	if err != nil {
		return apperr.Storage("failed to look up flight", err)
	}
	if !exists {
		return apperr.NotFound("flight %s not found", flightID)
	}
	return apperr.New(apperr.KindCapacity, "no seats left on flight %s", flightID)
}

func bookingFailure(err error, userID int64, seat string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgForeignKeyViolation:
			return apperr.New(apperr.KindInvalidUser, "user %d does not exist", userID)
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == confirmedSeatIndex:
			return apperr.New(apperr.KindSeatTaken, "seat %s is already booked", seat)
		}
	}
	return apperr.Storage("failed to book ticket", err)
}

// Cancel marks a confirmed reservation as cancelled and gives its seat back.
// Cancelling an unknown or already cancelled reservation reports NotFoundError.
func (l *Ledger) Cancel(ctx context.Context, reservationID int64) (*models.Reservation, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, apperr.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	res := &models.Reservation{ID: reservationID, Status: models.ReservationCancelled}
	var extras string
	err = tx.QueryRow(ctx, `
		UPDATE reservations
		SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING user_id, flight_id, flight_number, passenger_name, seat_number,
		          extras, ticket_id, booking_date
	`, string(models.ReservationCancelled), reservationID, string(models.ReservationConfirmed)).Scan(
		&res.UserID, &res.FlightID, &res.FlightNumber, &res.PassengerName, &res.SeatNumber,
		&extras, &res.TicketID, &res.BookingDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("reservation %d not found", reservationID)
		}
		return nil, apperr.Storage("failed to cancel reservation", err)
	}
	res.Extras = models.SplitExtras(extras)

	// flight_id is a weak reference; a missing flight leaves nothing to restore
	err = tx.QueryRow(ctx, `
		UPDATE flights
		SET seats_available = seats_available + 1
		WHERE id = $1
		RETURNING seats_available
	`, res.FlightID).Scan(&res.SeatsAvailable)
	switch {
	case err == nil:
		res.SeatReleased = true
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, apperr.Storage("failed to restore seat", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Storage("failed to commit cancellation", err)
	}
	return res, nil
}

const reservationColumns = `
	r.id, r.user_id, r.flight_id, r.flight_number, r.passenger_name, r.seat_number,
	r.extras, r.status, r.ticket_id, r.booking_date,
	f.id IS NOT NULL,
	COALESCE(f.airline, ''), COALESCE(f.origin, ''), COALESCE(f.destination, ''),
	COALESCE(f.departure_at, 'epoch'::timestamp), COALESCE(f.arrival_at, 'epoch'::timestamp),
	COALESCE(f.price, 0), COALESCE(f.class, '')
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		r         models.Reservation
		s         models.FlightSummary
		extras    string
		status    string
		class     string
		hasFlight bool
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.FlightID, &r.FlightNumber, &r.PassengerName, &r.SeatNumber,
		&extras, &status, &r.TicketID, &r.BookingDate,
		&hasFlight,
		&s.Airline, &s.Origin, &s.Destination, &s.DepartureAt, &s.ArrivalAt, &s.Price, &class,
	)
	if err != nil {
		return nil, err
	}
	r.Extras = models.SplitExtras(extras)
	r.Status = models.ReservationStatus(status)
	if hasFlight {
		s.Origin = strings.TrimSpace(s.Origin)
		s.Destination = strings.TrimSpace(s.Destination)
		s.Class = models.FlightClass(class)
		r.Flight = &s
	}
	return &r, nil
}

// GetReservation returns a reservation with its flight summary
func (l *Ledger) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	row := l.db.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		LEFT JOIN flights f ON f.id = r.flight_id
		WHERE r.id = $1
	`, id)
	r, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("reservation %d not found", id)
		}
		return nil, apperr.Storage("failed to get reservation", err)
	}
	return r, nil
}

// ListByUser returns the user's reservations, most recent booking first. A ledger
// whose schema has not been created yet holds no reservations.
func (l *Ledger) ListByUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	reservations := []models.Reservation{}

	rows, err := l.db.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		LEFT JOIN flights f ON f.id = r.flight_id
		WHERE r.user_id = $1
		ORDER BY r.booking_date DESC, r.id DESC
	`, userID)
	if err != nil {
		if isUndefinedTable(err) {
			return reservations, nil
		}
		return nil, apperr.Storage("failed to query reservations", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, apperr.Storage("failed to scan reservation", err)
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return []models.Reservation{}, nil
		}
		return nil, apperr.Storage("failed to read reservations", err)
	}
	return reservations, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
