package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feastline/order-svc/internal/dal/directory"
	"github.com/feastline/order-svc/internal/dal/geo"
	"github.com/feastline/order-svc/internal/dal/postgres"
	"github.com/feastline/order-svc/internal/dal/rabbitmq"
	notificationrepo "github.com/feastline/order-svc/internal/dal/repositories/notification/rabbitmq"
	outboxrepo "github.com/feastline/order-svc/internal/dal/repositories/outbox/postgres"
	"github.com/feastline/order-svc/internal/otel"
	"github.com/feastline/order-svc/internal/service/services/addressresolver"
	"github.com/feastline/order-svc/internal/service/services/ordersvc"
	httptransport "github.com/feastline/order-svc/internal/transport/http"
	"github.com/feastline/order-svc/internal/worker/notifier"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	notifier       *notifier.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	resolver := addressresolver.NewResolver(geo.NewClient())

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithAddressResolver(resolver),
	)

	notifierWorker := notifier.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		directory.NewClient(),
		notificationrepo.NewNotificationRabbitMQRepository(rabbitClient),
	)

	transport := httptransport.NewHTTPTransport(orderSvc)
	transport.RegisterRoutes()

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		notifier:       notifierWorker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go a.notifier.Start(context.Background())

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.notifier.Stop()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
