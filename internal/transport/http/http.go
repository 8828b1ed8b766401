package httptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/transport/http/health"
	neworder "github.com/feastline/order-svc/internal/transport/http/new_order"
	restaurantorders "github.com/feastline/order-svc/internal/transport/http/restaurant_orders"
	updatestatus "github.com/feastline/order-svc/internal/transport/http/update_status"
	userorders "github.com/feastline/order-svc/internal/transport/http/user_orders"
	"github.com/feastline/order-svc/pkg/http/middleware/trace"
	"github.com/feastline/order-svc/pkg/logger"
)

type service interface {
	SubmitOrder(ctx context.Context, p *order.Payload) (*order.Order, error)
	TransitionStatus(ctx context.Context, orderID int64, newStatus order.Status) error
	OrdersByCustomer(ctx context.Context, customerID int64) ([]order.Order, error)
	OrdersByRestaurant(ctx context.Context, restaurantID int64) ([]order.Order, error)
	Ping(ctx context.Context) error
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
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
	h.router.Get("/", h.hello)
	h.router.Post("/new_order", h.newOrder)
	h.router.Get("/get_user_orders", h.userOrders)
	h.router.Get("/get_restaurant_orders", h.restaurantOrders)
	h.router.Post("/update_order_status", h.updateStatus)
	h.router.Get("/health", h.health)
}

func (h *HTTPTransport) hello(w http.ResponseWriter, _ *http.Request) {
	name := os.Getenv("NAME")
	if name == "" {
		name = "world"
	}
	hostname, _ := os.Hostname()

	fmt.Fprintf(w, "Hello %s!\nHostname: %s", name, hostname)
}

func (h *HTTPTransport) newOrder(w http.ResponseWriter, r *http.Request) {
	neworder.NewOrder(w, r, h.service)
}

func (h *HTTPTransport) userOrders(w http.ResponseWriter, r *http.Request) {
	userorders.UserOrders(w, r, h.service)
}

func (h *HTTPTransport) restaurantOrders(w http.ResponseWriter, r *http.Request) {
	restaurantorders.RestaurantOrders(w, r, h.service)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.service)
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	health.Health(w, r, h.service)
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
