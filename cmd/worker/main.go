package main

import (
	"context"
	"log"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/activities"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/config"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/generator"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/ledger"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/models"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/workflows"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	log.Println("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	store := ledger.New(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Connected to database")

	// Connect to Temporal
	log.Printf("Connecting to Temporal at %s...", cfg.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer c.Close()
	log.Println("Connected to Temporal")

	// Create worker
	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflowWithOptions(workflows.SearchFlightsWorkflow, workflow.RegisterOptions{Name: models.SearchFlightsWorkflowName})
	w.RegisterWorkflowWithOptions(workflows.BookTicketWorkflow, workflow.RegisterOptions{Name: models.BookTicketWorkflowName})
	w.RegisterWorkflowWithOptions(workflows.CancelReservationWorkflow, workflow.RegisterOptions{Name: models.CancelReservationWorkflowName})

	// Create and register activities
	acts := activities.NewActivities(generator.New(), store)
	w.RegisterActivityWithOptions(acts.SearchFlights, activity.RegisterOptions{Name: models.SearchFlightsActivityName})
	w.RegisterActivityWithOptions(acts.BookTicket, activity.RegisterOptions{Name: models.BookTicketActivityName})
	w.RegisterActivityWithOptions(acts.CancelReservation, activity.RegisterOptions{Name: models.CancelReservationActivityName})

	// Start worker
	log.Printf("Starting Temporal worker on queue %s...", cfg.TaskQueue)
	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
