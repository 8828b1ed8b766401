package ordersvc_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/feastline/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/feastline/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/feastline/order-svc/internal/pkg/errs"
	"github.com/feastline/order-svc/internal/service/models/address"
	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/service/models/outbox"
	"github.com/feastline/order-svc/internal/service/services/ordersvc"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Insert(ctx context.Context, o order.Order) (int64, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.Status) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Insert(ctx context.Context, msg outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetPendingMessages(ctx context.Context, limit int) ([]outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]outbox.Message), args.Error(1)
}

func (m *MockOutboxRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, retryCount, lastError, nextRetryAt)
	return args.Error(0)
}

type MockUnitOfWork struct {
	mock.Mock
	orderRepo  *MockOrderRepository
	outboxRepo *MockOutboxRepository
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return m.orderRepo
}

func (m *MockUnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return m.outboxRepo
}

type stubResolver struct {
	result string
	err    error
	calls  int
}

func (s *stubResolver) Resolve(_ context.Context, d address.Descriptor) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.result != "" {
		return s.result, nil
	}
	return d.Value, nil
}

func newMockUOW() *MockUnitOfWork {
	return &MockUnitOfWork{
		orderRepo:  new(MockOrderRepository),
		outboxRepo: new(MockOutboxRepository),
	}
}

func newService(uow *MockUnitOfWork, resolver *stubResolver, uowCalls *int) *ordersvc.OrderService {
	return ordersvc.MustNewOrderService(
		ordersvc.WithAddressResolver(resolver),
		ordersvc.WithUnitOfWorkFactory(func() ordersvc.UnitOfWork {
			if uowCalls != nil {
				*uowCalls++
			}
			return uow
		}),
	)
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func validPayload() *order.Payload {
	return &order.Payload{
		RestaurantID: int64Ptr(2),
		Items:        []int64{10, 11},
		CustomerID:   int64Ptr(1),
		TotalAmount:  float64Ptr(25.5),
		DeliveryAddress: &address.Descriptor{
			Parse: false,
			Value: "1 Main St",
		},
	}
}

func TestSubmitOrder_Success(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	uow.On("Begin", ctx).Return(nil).Once()
	uow.orderRepo.On("Insert", mock.Anything, mock.AnythingOfType("order.Order")).Return(int64(7), nil).Once()
	uow.outboxRepo.On("Insert", mock.Anything, mock.AnythingOfType("outbox.Message")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	svc := newService(uow, &stubResolver{}, nil)

	o, err := svc.SubmitOrder(ctx, validPayload())
	require.NoError(t, err)
	require.NotNil(t, o)

	assert.Equal(t, int64(7), o.ID)
	assert.Equal(t, order.StatusPlaced, o.Status)
	assert.Equal(t, "1 Main St", o.DeliveryAddress)
	assert.Equal(t, []int64{10, 11}, o.Items)

	// order_date is pipeline-assigned in the canonical layout
	parsed, err := time.Parse(order.DateLayout, o.OrderDate)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)

	inserted := uow.orderRepo.Calls[0].Arguments.Get(1).(order.Order)
	assert.Equal(t, order.StatusPlaced, inserted.Status)
	assert.Equal(t, "1 Main St", inserted.DeliveryAddress)

	msg := uow.outboxRepo.Calls[0].Arguments.Get(1).(outbox.Message)
	assert.Equal(t, outbox.KindOrderCreated, msg.Kind)
	var payload outbox.OrderCreatedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, int64(7), payload.OrderID)
	assert.Equal(t, int64(1), payload.CustomerID)
	assert.Equal(t, int64(2), payload.RestaurantID)

	uow.AssertExpectations(t)
	uow.orderRepo.AssertExpectations(t)
	uow.outboxRepo.AssertExpectations(t)
}

func TestSubmitOrder_ClientSuppliedDateAndStatusIgnored(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	uow.On("Begin", ctx).Return(nil).Once()
	uow.orderRepo.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
	uow.outboxRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	svc := newService(uow, &stubResolver{}, nil)

	p := validPayload()
	p.OrderDate = "01/01/1999 00:00:00"
	p.Status = int(order.StatusDelivered)

	o, err := svc.SubmitOrder(ctx, p)
	require.NoError(t, err)
	assert.NotEqual(t, "01/01/1999 00:00:00", o.OrderDate)
	assert.Equal(t, order.StatusPlaced, o.Status)
}

func TestSubmitOrder_ValidationFailureTouchesNothing(t *testing.T) {
	uowCalls := 0
	svc := newService(newMockUOW(), &stubResolver{}, &uowCalls)

	p := validPayload()
	p.CustomerID = nil

	o, err := svc.SubmitOrder(t.Context(), p)
	require.Error(t, err)
	require.Nil(t, o)

	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "invalid customer id", validationErr.Message)
	assert.Zero(t, uowCalls, "no unit of work may be created on validation failure")
}

func TestSubmitOrder_ResolutionFailureWritesNothing(t *testing.T) {
	uowCalls := 0
	resolver := &stubResolver{err: errs.NewResolutionError(errs.ResolutionTimeout, errors.New("deadline"))}
	svc := newService(newMockUOW(), resolver, &uowCalls)

	p := validPayload()
	p.DeliveryAddress = &address.Descriptor{Parse: true, Value: "8.8.8.8"}

	o, err := svc.SubmitOrder(t.Context(), p)
	require.Error(t, err)
	require.Nil(t, o)

	var resolutionErr *errs.ResolutionError
	require.ErrorAs(t, err, &resolutionErr)
	assert.Equal(t, 1, resolver.calls)
	assert.Zero(t, uowCalls, "no unit of work may be created on resolution failure")
}

func TestSubmitOrder_ResolvedAddressPersisted(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	uow.On("Begin", ctx).Return(nil).Once()
	uow.orderRepo.On("Insert", mock.Anything, mock.Anything).Return(int64(3), nil).Once()
	uow.outboxRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	resolver := &stubResolver{result: "lat: 51.51, long: -0.13"}
	svc := newService(uow, resolver, nil)

	p := validPayload()
	p.DeliveryAddress = &address.Descriptor{Parse: true, Value: "8.8.8.8"}

	o, err := svc.SubmitOrder(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "lat: 51.51, long: -0.13", o.DeliveryAddress)

	inserted := uow.orderRepo.Calls[0].Arguments.Get(1).(order.Order)
	assert.Equal(t, "lat: 51.51, long: -0.13", inserted.DeliveryAddress)
}

func TestSubmitOrder_InsertErrorRollsBack(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	uow.On("Begin", ctx).Return(nil).Once()
	uow.orderRepo.On("Insert", mock.Anything, mock.Anything).Return(int64(0), errors.New("constraint violation")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	svc := newService(uow, &stubResolver{}, nil)

	o, err := svc.SubmitOrder(ctx, validPayload())
	require.Error(t, err)
	require.Nil(t, o)

	var storageErr *errs.StorageError
	require.ErrorAs(t, err, &storageErr)

	uow.AssertExpectations(t)
	uow.outboxRepo.AssertNotCalled(t, "Insert")
	uow.AssertNotCalled(t, "Commit")
}

func TestTransitionStatus_Success(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	current := &order.Order{ID: 5, CustomerID: 1, RestaurantID: 2, Status: order.StatusPlaced}

	uow.On("Begin", ctx).Return(nil).Once()
	uow.orderRepo.On("GetForUpdate", mock.Anything, int64(5)).Return(current, nil).Once()
	uow.orderRepo.On("UpdateStatus", mock.Anything, int64(5), order.StatusConfirmed).Return(nil).Once()
	uow.outboxRepo.On("Insert", mock.Anything, mock.AnythingOfType("outbox.Message")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	svc := newService(uow, &stubResolver{}, nil)

	require.NoError(t, svc.TransitionStatus(ctx, 5, order.StatusConfirmed))

	msg := uow.outboxRepo.Calls[0].Arguments.Get(1).(outbox.Message)
	assert.Equal(t, outbox.KindStatusChanged, msg.Kind)
	var payload outbox.StatusChangedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, int64(5), payload.OrderID)
	assert.Equal(t, int64(1), payload.CustomerID)
	assert.Equal(t, int(order.StatusConfirmed), payload.Status)

	uow.AssertExpectations(t)
	uow.orderRepo.AssertExpectations(t)
}

func TestTransitionStatus_InvalidIdentifiers(t *testing.T) {
	uowCalls := 0
	svc := newService(newMockUOW(), &stubResolver{}, &uowCalls)

	var validationErr *errs.ValidationError

	err := svc.TransitionStatus(t.Context(), 0, order.StatusConfirmed)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "invalid order id", validationErr.Message)

	err = svc.TransitionStatus(t.Context(), 5, order.Status(99))
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "invalid status", validationErr.Message)

	assert.Zero(t, uowCalls)
}

func TestTransitionStatus_NotFound(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	uow.On("Begin", ctx).Return(nil).Once()
	uow.orderRepo.On("GetForUpdate", mock.Anything, int64(404)).Return(nil, errs.ErrOrderNotFound).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	svc := newService(uow, &stubResolver{}, nil)

	err := svc.TransitionStatus(ctx, 404, order.StatusConfirmed)
	require.ErrorIs(t, err, errs.ErrOrderNotFound)

	uow.orderRepo.AssertNotCalled(t, "UpdateStatus")
	uow.AssertNotCalled(t, "Commit")
}

func TestTransitionStatus_RejectedByTransitionTable(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	current := &order.Order{ID: 5, Status: order.StatusDelivered}

	uow.On("Begin", ctx).Return(nil).Once()
	uow.orderRepo.On("GetForUpdate", mock.Anything, int64(5)).Return(current, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	svc := newService(uow, &stubResolver{}, nil)

	err := svc.TransitionStatus(ctx, 5, order.StatusConfirmed)
	require.Error(t, err)

	var transitionErr *errs.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	uow.orderRepo.AssertNotCalled(t, "UpdateStatus")
	uow.outboxRepo.AssertNotCalled(t, "Insert")
	uow.AssertNotCalled(t, "Commit")
}

func TestTransitionStatus_SameStatusIsIdempotent(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	current := &order.Order{ID: 5, CustomerID: 1, RestaurantID: 2, Status: order.StatusConfirmed}

	uow.On("Begin", ctx).Return(nil).Twice()
	uow.orderRepo.On("GetForUpdate", mock.Anything, int64(5)).Return(current, nil).Twice()
	uow.orderRepo.On("UpdateStatus", mock.Anything, int64(5), order.StatusConfirmed).Return(nil).Twice()
	uow.outboxRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Twice()
	uow.On("Commit", ctx).Return(nil).Twice()
	uow.On("Rollback", ctx).Return(nil).Twice()

	svc := newService(uow, &stubResolver{}, nil)

	require.NoError(t, svc.TransitionStatus(ctx, 5, order.StatusConfirmed))
	require.NoError(t, svc.TransitionStatus(ctx, 5, order.StatusConfirmed))

	uow.AssertExpectations(t)
}

func TestOrdersByCustomer_EmptyResultIsNotAnError(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	uow.orderRepo.On("Query", mock.Anything, &order.QueryOrdersModel{CustomerID: 42}).
		Return([]order.Order{}, nil).Once()

	svc := newService(uow, &stubResolver{}, nil)

	orders, err := svc.OrdersByCustomer(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NotNil(t, orders)
}

func TestOrdersByRestaurant_QueryErrorWrapped(t *testing.T) {
	ctx := t.Context()
	uow := newMockUOW()

	uow.orderRepo.On("Query", mock.Anything, &order.QueryOrdersModel{RestaurantID: 2}).
		Return(nil, errors.New("connection refused")).Once()

	svc := newService(uow, &stubResolver{}, nil)

	orders, err := svc.OrdersByRestaurant(ctx, 2)
	require.Error(t, err)
	require.Nil(t, orders)

	var storageErr *errs.StorageError
	require.ErrorAs(t, err, &storageErr)
}
