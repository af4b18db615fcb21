package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commercekit/oms/internal/dal/postgres"
	"github.com/commercekit/oms/internal/dal/rabbitmq"
	"github.com/commercekit/oms/internal/dal/repositories/notifier"
	ordereventrepo "github.com/commercekit/oms/internal/dal/repositories/orderevent/postgres"
	outboxrepo "github.com/commercekit/oms/internal/dal/repositories/outbox/postgres"
	"github.com/commercekit/oms/internal/otel"
	"github.com/commercekit/oms/internal/service/services/fulfillmentsvc"
	"github.com/commercekit/oms/internal/service/services/invoicesvc"
	"github.com/commercekit/oms/internal/service/services/ordersvc"
	"github.com/commercekit/oms/internal/service/services/paymentsvc"
	httptransport "github.com/commercekit/oms/internal/transport/http"
	"github.com/commercekit/oms/internal/worker/outbox"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outbox.Worker
	otelController *otel.OtelController
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	workerCancel   context.CancelFunc
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	outboxRepository := outboxrepo.NewOutboxRepository(postgresClient.Pool())
	eventRepository := ordereventrepo.NewPostgresOrderEventRepository(postgresClient.Pool())
	orderNotifier := notifier.NewRabbitMQNotifier(rabbitClient, outboxRepository)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithEventRepository(eventRepository),
	)
	fulfillmentSvc := fulfillmentsvc.MustNewFulfillmentService(
		fulfillmentsvc.WithPostgresClient(postgresClient),
		fulfillmentsvc.WithEventRepository(eventRepository),
		fulfillmentsvc.WithNotifier(orderNotifier),
	)
	paymentSvc := paymentsvc.MustNewPaymentService(
		paymentsvc.WithPostgresClient(postgresClient),
		paymentsvc.WithEventRepository(eventRepository),
		paymentsvc.WithNotifier(orderNotifier),
	)
	invoiceSvc := invoicesvc.MustNewInvoiceService(
		invoicesvc.WithPostgresClient(postgresClient),
		invoicesvc.WithEventRepository(eventRepository),
		invoicesvc.WithNotifier(orderNotifier),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, fulfillmentSvc, paymentSvc, invoiceSvc)
	transport.RegisterRoutes()

	outboxWorker := outbox.NewWorker(outboxRepository, rabbitClient)

	return &App{
		transport:      transport,
		outboxWorker:   outboxWorker,
		otelController: otelController,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	a.workerCancel = workerCancel
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.workerCancel()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
