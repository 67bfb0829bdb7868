// Package workflows runs each reservation operation as a single-activity workflow.
package workflows

import (
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ActivityTimeout bounds every reservation activity
const ActivityTimeout = 10 * time.Second

// Booking writes are not idempotent, so a failed attempt is reported instead of retried.
func withActivityOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
}

// SearchFlightsWorkflow generates and records offers for a route
func SearchFlightsWorkflow(ctx workflow.Context, req models.SearchRequest) (*models.SearchFlightsResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Search workflow started", "origin", req.Origin, "destination", req.Destination, "date", req.Date)

	var result models.SearchFlightsResult
	err := workflow.ExecuteActivity(withActivityOptions(ctx), models.SearchFlightsActivityName, req).Get(ctx, &result)
	if err != nil {
		logger.Error("Search failed", "error", err)
		return nil, err
	}
	return &result, nil
}

// BookTicketWorkflow reserves a seat for a passenger
func BookTicketWorkflow(ctx workflow.Context, req models.BookRequest) (*models.Reservation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Booking workflow started", "flightId", req.FlightID, "seat", req.SeatNumber)

	var res models.Reservation
	err := workflow.ExecuteActivity(withActivityOptions(ctx), models.BookTicketActivityName, req).Get(ctx, &res)
	if err != nil {
		logger.Warn("Booking failed", "flightId", req.FlightID, "error", err)
		return nil, err
	}

	logger.Info("Booking workflow completed", "ticketId", res.TicketID)
	return &res, nil
}

// CancelReservationWorkflow cancels a reservation
func CancelReservationWorkflow(ctx workflow.Context, input models.CancelReservationInput) (*models.Reservation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Cancel workflow started", "reservationId", input.ReservationID)

	var res models.Reservation
	err := workflow.ExecuteActivity(withActivityOptions(ctx), models.CancelReservationActivityName, input).Get(ctx, &res)
	if err != nil {
		logger.Warn("Cancellation failed", "reservationId", input.ReservationID, "error", err)
		return nil, err
	}
	return &res, nil
}
