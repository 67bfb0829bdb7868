package models

import (
	"regexp"
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "Confirmed"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// NoExtras is the stored value of a reservation without add-ons
const NoExtras = "None"

var seatNumberPattern = regexp.MustCompile(`^[A-F][1-9][0-9]?$`)

// ValidSeatNumber reports whether s is a row letter A-F followed by a seat number 1-99.
func ValidSeatNumber(s string) bool {
	return seatNumberPattern.MatchString(s)
}

// Reservation is a booking against exactly one flight. SeatReleased is set by a
// cancellation that gave the seat back to a stored flight.
type Reservation struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"userId"`
	FlightID       string            `json:"flightId"`
	FlightNumber   string            `json:"flightNumber"`
	PassengerName  string            `json:"passengerName"`
	SeatNumber     string            `json:"seatNumber"`
	Extras         []string          `json:"extras"`
	Status         ReservationStatus `json:"status"`
	TicketID       string            `json:"ticketId"`
	BookingDate    time.Time         `json:"bookingDate"`
	SeatsAvailable int               `json:"seatsAvailable"`
	SeatReleased   bool              `json:"seatReleased,omitempty"`
	Flight         *FlightSummary    `json:"flight,omitempty"`
}

// FlightSummary is the flight data shown next to a reservation. Absent when the
// referenced flight row no longer exists.
type FlightSummary struct {
	Airline     string      `json:"airline"`
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	DepartureAt time.Time   `json:"departureAt"`
	ArrivalAt   time.Time   `json:"arrivalAt"`
	Price       float64     `json:"price"`
	Class       FlightClass `json:"class"`
}

// BookRequest carries the inputs of a booking. UserID stays a string until the
// ledger validates it.
type BookRequest struct {
	PassengerName string   `json:"passengerName"`
	FlightID      string   `json:"flightId"`
	SeatNumber    string   `json:"seatNumber"`
	UserID        string   `json:"userId"`
	Extras        []string `json:"extras,omitempty"`
}

// JoinExtras encodes add-ons the way they are persisted.
func JoinExtras(extras []string) string {
	cleaned := make([]string, 0, len(extras))
	for _, e := range extras {
		if e = strings.TrimSpace(e); e != "" && e != NoExtras {
			cleaned = append(cleaned, e)
		}
	}
	if len(cleaned) == 0 {
		return NoExtras
	}
	return strings.Join(cleaned, ", ")
}

// SplitExtras is the inverse of JoinExtras.
func SplitExtras(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == NoExtras {
		return []string{}
	}
	parts := strings.Split(s, ",")
	extras := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			extras = append(extras, p)
		}
	}
	return extras
}
