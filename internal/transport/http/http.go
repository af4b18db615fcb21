package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/commercekit/oms/internal/service/services/fulfillmentsvc"
	"github.com/commercekit/oms/internal/service/services/invoicesvc"
	"github.com/commercekit/oms/internal/service/services/ordersvc"
	"github.com/commercekit/oms/internal/service/services/paymentsvc"
	createfulfillment "github.com/commercekit/oms/internal/transport/http/create_fulfillment"
	createorders "github.com/commercekit/oms/internal/transport/http/create_orders"
	fulfillmentactions "github.com/commercekit/oms/internal/transport/http/fulfillment_actions"
	invoiceactions "github.com/commercekit/oms/internal/transport/http/invoice_actions"
	listorders "github.com/commercekit/oms/internal/transport/http/list_orders"
	orderactions "github.com/commercekit/oms/internal/transport/http/order_actions"
	recordpayment "github.com/commercekit/oms/internal/transport/http/record_payment"
	recordrefund "github.com/commercekit/oms/internal/transport/http/record_refund"
	"github.com/commercekit/oms/pkg/http/middleware/trace"
	"github.com/commercekit/oms/pkg/logger"
)

type HTTPTransport struct {
	server       *http.Server
	router       *chi.Mux
	orders       *ordersvc.OrderService
	fulfillments *fulfillmentsvc.FulfillmentService
	payments     *paymentsvc.PaymentService
	invoices     *invoicesvc.InvoiceService
}

func NewHTTPTransport(
	orders *ordersvc.OrderService,
	fulfillments *fulfillmentsvc.FulfillmentService,
	payments *paymentsvc.PaymentService,
	invoices *invoicesvc.InvoiceService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:       server,
		router:       router,
		orders:       orders,
		fulfillments: fulfillments,
		payments:     payments,
		invoices:     invoices,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrders)

			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", h.getOrder)
				r.Post("/cancel", h.cancelOrder)
				r.Post("/notes", h.addNote)
				r.Get("/events", h.listEvents)
				r.Post("/fulfillments", h.createFulfillment)
				r.Get("/payments", h.listTransactions)
				r.Post("/payments", h.recordPayment)
				r.Post("/refunds", h.recordRefund)
				r.Post("/invoices", h.generateInvoice)
			})
		})

		r.Route("/fulfillments/{fulfillmentID}", func(r chi.Router) {
			r.Post("/approve", h.approveFulfillment)
			r.Post("/ship", h.shipFulfillment)
			r.Post("/deliver", h.deliverFulfillment)
			r.Post("/cancel", h.cancelFulfillment)
			r.Put("/tracking", h.updateTracking)
		})

		r.Route("/invoices/{invoiceID}", func(r chi.Router) {
			r.Post("/send", h.sendInvoice)
			r.Post("/mark-paid", h.markInvoicePaid)
			r.Post("/cancel", h.cancelInvoice)
		})
	})
}

func (h *HTTPTransport) createOrders(w http.ResponseWriter, r *http.Request) {
	createorders.CreateOrders(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	orderactions.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderactions.CancelOrder(w, r, h.orders)
}

func (h *HTTPTransport) addNote(w http.ResponseWriter, r *http.Request) {
	orderactions.AddNote(w, r, h.orders)
}

func (h *HTTPTransport) listEvents(w http.ResponseWriter, r *http.Request) {
	orderactions.ListEvents(w, r, h.orders)
}

func (h *HTTPTransport) createFulfillment(w http.ResponseWriter, r *http.Request) {
	createfulfillment.CreateFulfillment(w, r, h.fulfillments)
}

func (h *HTTPTransport) approveFulfillment(w http.ResponseWriter, r *http.Request) {
	fulfillmentactions.Approve(w, r, h.fulfillments)
}

func (h *HTTPTransport) shipFulfillment(w http.ResponseWriter, r *http.Request) {
	fulfillmentactions.Ship(w, r, h.fulfillments)
}

func (h *HTTPTransport) deliverFulfillment(w http.ResponseWriter, r *http.Request) {
	fulfillmentactions.Deliver(w, r, h.fulfillments)
}

func (h *HTTPTransport) cancelFulfillment(w http.ResponseWriter, r *http.Request) {
	fulfillmentactions.Cancel(w, r, h.fulfillments)
}

func (h *HTTPTransport) updateTracking(w http.ResponseWriter, r *http.Request) {
	fulfillmentactions.UpdateTracking(w, r, h.fulfillments)
}

func (h *HTTPTransport) recordPayment(w http.ResponseWriter, r *http.Request) {
	recordpayment.RecordPayment(w, r, h.payments)
}

func (h *HTTPTransport) listTransactions(w http.ResponseWriter, r *http.Request) {
	recordpayment.ListTransactions(w, r, h.payments)
}

func (h *HTTPTransport) recordRefund(w http.ResponseWriter, r *http.Request) {
	recordrefund.RecordRefund(w, r, h.payments)
}

func (h *HTTPTransport) generateInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceactions.Generate(w, r, h.invoices)
}

func (h *HTTPTransport) sendInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceactions.Send(w, r, h.invoices)
}

func (h *HTTPTransport) markInvoicePaid(w http.ResponseWriter, r *http.Request) {
	invoiceactions.MarkPaid(w, r, h.invoices)
}

func (h *HTTPTransport) cancelInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceactions.Cancel(w, r, h.invoices)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
