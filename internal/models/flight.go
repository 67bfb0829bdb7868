package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Airport is a static reference row seeded at migration time
type Airport struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type FlightClass string

const (
	ClassEconomy  FlightClass = "Economy"
	ClassBusiness FlightClass = "Business"
	ClassFirst    FlightClass = "First"
)

// ParseFlightClass accepts the class names case-insensitively. An empty value means Economy.
func ParseFlightClass(s string) (FlightClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "economy":
		return ClassEconomy, nil
	case "business":
		return ClassBusiness, nil
	case "first":
		return ClassFirst, nil
	}
	return "", fmt.Errorf("unknown flight class %q", s)
}

// Flight represents a generated, bookable flight offer
type Flight struct {
	ID              string      `json:"id"`
	FlightNumber    string      `json:"flightNumber"`
	Airline         string      `json:"airline"`
	AircraftType    string      `json:"aircraftType"`
	Origin          string      `json:"origin"`
	Destination     string      `json:"destination"`
	DepartureAt     time.Time   `json:"departureAt"`
	ArrivalAt       time.Time   `json:"arrivalAt"`
	DurationMinutes int         `json:"durationMinutes"`
	Price           float64     `json:"price"`
	SeatsAvailable  int         `json:"seatsAvailable"`
	Class           FlightClass `json:"class"`
}

func (f *Flight) DepartureDate() string { return f.DepartureAt.Format(DateLayout) }
func (f *Flight) DepartureTime() string { return f.DepartureAt.Format(TimeLayout) }
func (f *Flight) ArrivalDate() string   { return f.ArrivalAt.Format(DateLayout) }
func (f *Flight) ArrivalTime() string   { return f.ArrivalAt.Format(TimeLayout) }

// Duration renders the flight time as "2h 05m".
func (f *Flight) Duration() string {
	return fmt.Sprintf("%dh %02dm", f.DurationMinutes/60, f.DurationMinutes%60)
}

// SearchRequest is the input of a flight search
type SearchRequest struct {
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Date        string      `json:"date"`
	Class       FlightClass `json:"class"`
}
