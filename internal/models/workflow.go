package models

// Workflow and activity names shared by the API server and the worker
const (
	SearchFlightsWorkflowName     = "SearchFlightsWorkflow"
	BookTicketWorkflowName        = "BookTicketWorkflow"
	CancelReservationWorkflowName = "CancelReservationWorkflow"

	SearchFlightsActivityName     = "SearchFlights"
	BookTicketActivityName        = "BookTicket"
	CancelReservationActivityName = "CancelReservation"
)

// SearchFlightsResult is returned by the search workflow
type SearchFlightsResult struct {
	Flights  []Flight `json:"flights"`
	Inserted int      `json:"inserted"`
}

// CancelReservationInput identifies the reservation to cancel
type CancelReservationInput struct {
	ReservationID int64 `json:"reservationId"`
}
