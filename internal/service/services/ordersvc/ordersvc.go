package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/feastline/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/feastline/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/feastline/order-svc/internal/dal/postgres"
	"github.com/feastline/order-svc/internal/dal/uow"
	"github.com/feastline/order-svc/internal/pkg/errs"
	"github.com/feastline/order-svc/internal/service/models/address"
	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/service/models/outbox"
)

// OrderService drives the order ingestion and lifecycle pipeline:
// validation, address resolution, persistence and notification enqueueing.
type OrderService struct {
	pgClient   *postgres.Client
	resolver   addressResolver
	uowFactory func() UnitOfWork
}

// addressResolver turns a delivery-address descriptor into the persisted
// address string.
type addressResolver interface {
	Resolve(ctx context.Context, d address.Descriptor) (string, error)
}

// UnitOfWork is the transaction boundary the pipeline runs its writes in.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

func (s *OrderService) newUOW() UnitOfWork {
	return s.uowFactory()
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		s.uowFactory = func() UnitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithAddressResolver sets the delivery-address resolver.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAddressResolver(r addressResolver) option {
	return func(s *OrderService) {
		s.resolver = r
	}
}

// WithUnitOfWorkFactory overrides how units of work are created.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() UnitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// SubmitOrder runs the full ingestion pipeline. Validation and address
// resolution happen before any write; the order row and its order_created
// notification commit in one transaction, so no notification can exist for
// an order that was never persisted.
func (s *OrderService) SubmitOrder(ctx context.Context, p *order.Payload) (*order.Order, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, *p.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	o := order.Order{
		CustomerID:      *p.CustomerID,
		RestaurantID:    *p.RestaurantID,
		OrderDate:       order.FormatOrderDate(time.Now()),
		TotalAmount:     *p.TotalAmount,
		Items:           p.Items,
		Status:          order.StatusPlaced,
		DeliveryAddress: resolved,
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, errs.NewStorageError("begin", err)
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	id, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, errs.NewStorageError("insert order", err)
	}
	o.ID = id

	msg, err := newOutboxMessage(outbox.KindOrderCreated, outbox.OrderCreatedPayload{
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		RestaurantID: o.RestaurantID,
	})
	if err != nil {
		return nil, errs.NewStorageError("enqueue notification", err)
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		return nil, errs.NewStorageError("enqueue notification", err)
	}

	if err := work.Commit(ctx); err != nil {
		return nil, errs.NewStorageError("commit", err)
	}

	return &o, nil
}

// TransitionStatus moves an order to a new lifecycle status. The current row
// is locked for the transition-table check, and the status_changed
// notification commits with the update.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID int64, newStatus order.Status) error {
	if orderID <= 0 {
		return errs.NewValidationError("invalid order id")
	}
	if !newStatus.Valid() {
		return errs.NewValidationError("invalid status")
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return errs.NewStorageError("begin", err)
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	current, err := work.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			return err
		}
		return errs.NewStorageError("get order", err)
	}

	if !current.Status.CanTransitionTo(newStatus) {
		return errs.NewInvalidTransitionError(current.Status, newStatus)
	}

	if err := work.OrderRepository().UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			return err
		}
		return errs.NewStorageError("update status", err)
	}

	msg, err := newOutboxMessage(outbox.KindStatusChanged, outbox.StatusChangedPayload{
		OrderID:      orderID,
		CustomerID:   current.CustomerID,
		RestaurantID: current.RestaurantID,
		Status:       int(newStatus),
	})
	if err != nil {
		return errs.NewStorageError("enqueue notification", err)
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		return errs.NewStorageError("enqueue notification", err)
	}

	if err := work.Commit(ctx); err != nil {
		return errs.NewStorageError("commit", err)
	}

	return nil
}

// OrdersByCustomer retrieves all orders for a customer. No orders is an
// empty slice, not an error.
func (s *OrderService) OrdersByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{CustomerID: customerID})
	if err != nil {
		return nil, errs.NewStorageError("query orders", err)
	}

	return orders, nil
}

// OrdersByRestaurant retrieves all orders for a restaurant.
func (s *OrderService) OrdersByRestaurant(ctx context.Context, restaurantID int64) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{RestaurantID: restaurantID})
	if err != nil {
		return nil, errs.NewStorageError("query orders", err)
	}

	return orders, nil
}

// Ping probes row-store connectivity for the health endpoint.
func (s *OrderService) Ping(ctx context.Context) error {
	return s.pgClient.Ping(ctx)
}

func newOutboxMessage(kind outbox.Kind, payload any) (outbox.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return outbox.Message{}, err
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	now := time.Now()

	return outbox.Message{
		EventID:     uuid.New(),
		Kind:        kind,
		Payload:     data,
		MaxRetries:  maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}, nil
}
