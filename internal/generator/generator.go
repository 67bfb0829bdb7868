// Package generator fabricates mock flight offers for a route search.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/google/uuid"
)

const (
	MinFlights = 5
	MaxFlights = 6

	MinDurationMinutes = 60
	MaxDurationMinutes = 180

	MinBaseFare = 2000
	MaxBaseFare = 5000

	MinSeats = 5
	MaxSeats = 50
)

type airline struct {
	Code string
	Name string
}

var airlines = []airline{
	{Code: "AI", Name: "Air India"},
	{Code: "BA", Name: "British Airways"},
	{Code: "LH", Name: "Lufthansa"},
	{Code: "EK", Name: "Emirates"},
	{Code: "QR", Name: "Qatar Airways"},
	{Code: "SQ", Name: "Singapore Airlines"},
}

var aircraftTypes = []string{
	"Boeing 777-300ER",
	"Boeing 787-9",
	"Airbus A380-800",
	"Airbus A350-900",
	"Boeing 737-800",
	"Airbus A320neo",
}

// morning, midday, afternoon and evening slots
var departureHours = []int{7, 9, 12, 14, 17, 20}

var departureMinutes = []int{0, 15, 30, 45}

var classMultipliers = map[models.FlightClass]float64{
	models.ClassEconomy:  1,
	models.ClassBusiness: 2.5,
	models.ClassFirst:    4,
}

// Generator produces synthetic flight offers. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
	newID func() string
}

type Option func(*Generator)

// WithRand replaces the random source, mostly for tests.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// WithClock sets the clock used when the requested date does not parse.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDFunc sets how offer ids are assigned.
func WithIDFunc(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// New creates a Generator seeded from the current time
func New(opts ...Option) *Generator {
	g := &Generator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns 5 or 6 offers for the route, sorted by departure time.
// An unparsable date falls back to today; the route itself is not validated here.
func (g *Generator) Generate(origin, destination, date string, class models.FlightClass) []models.Flight {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		today := g.now()
		day = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	}
	if _, ok := classMultipliers[class]; !ok {
		class = models.ClassEconomy
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	count := MinFlights + g.rng.Intn(MaxFlights-MinFlights+1)
	flights := make([]models.Flight, 0, count)

	for i := 0; i < count; i++ {
		carrier := airlines[i%len(airlines)]
		hour := departureHours[i%len(departureHours)]
		minute := departureMinutes[g.rng.Intn(len(departureMinutes))]
		duration := g.between(MinDurationMinutes, MaxDurationMinutes)

		departure := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)

		flights = append(flights, models.Flight{
			ID:              g.newID(),
			FlightNumber:    fmt.Sprintf("%s%d", carrier.Code, g.between(100, 999)),
			Airline:         carrier.Name,
			AircraftType:    aircraftTypes[i%len(aircraftTypes)],
			Origin:          origin,
			Destination:     destination,
			DepartureAt:     departure,
			ArrivalAt:       departure.Add(time.Duration(duration) * time.Minute),
			DurationMinutes: duration,
			Price:           Fare(g.between(MinBaseFare, MaxBaseFare), class),
			SeatsAvailable:  g.between(MinSeats, MaxSeats),
			Class:           class,
		})
	}

	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].DepartureTime() < flights[j].DepartureTime()
	})

	return flights
}

// Renumber returns f with a freshly drawn flight number from the same carrier.
func (g *Generator) Renumber(f models.Flight) models.Flight {
	code := strings.TrimRight(f.FlightNumber, "0123456789")

	g.mu.Lock()
	defer g.mu.Unlock()
	f.FlightNumber = fmt.Sprintf("%s%d", code, g.between(100, 999))
	return f
}

// Fare applies the class multiplier to a base fare and rounds to a whole unit.
func Fare(base int, class models.FlightClass) float64 {
	multiplier, ok := classMultipliers[class]
	if !ok {
		multiplier = 1
	}
	return math.Round(float64(base) * multiplier)
}

// between draws uniformly from [lo, hi]. Callers hold g.mu.
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}
