package restaurantorders_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/feastline/order-svc/internal/pkg/errs"
	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/transport/http/response"
	restaurantorders "github.com/feastline/order-svc/internal/transport/http/restaurant_orders"
)

type MockService struct{ mock.Mock }

func (m *MockService) OrdersByRestaurant(ctx context.Context, restaurantID int64) ([]order.Order, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func doRequest(t *testing.T, svc *MockService, query string) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/get_restaurant_orders"+query, nil)
	rec := httptest.NewRecorder()

	restaurantorders.RestaurantOrders(rec, req, svc)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	return rec, envelope
}

func TestRestaurantOrders_Success(t *testing.T) {
	svc := &MockService{}
	svc.On("OrdersByRestaurant", mock.Anything, int64(3)).Return([]order.Order{
		{ID: 1, RestaurantID: 3, Status: order.StatusPlaced},
	}, nil)

	rec, envelope := doRequest(t, svc, "?restaurant_id=3")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", envelope.Message)

	data, ok := envelope.Data.([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestRestaurantOrders_InvalidRestaurantID(t *testing.T) {
	for _, query := range []string{"", "?restaurant_id=abc", "?restaurant_id=0", "?restaurant_id=-1"} {
		svc := &MockService{}

		rec, envelope := doRequest(t, svc, query)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
		assert.Equal(t, "invalid restaurant id", envelope.Message)
		svc.AssertNotCalled(t, "OrdersByRestaurant", mock.Anything, mock.Anything)
	}
}

func TestRestaurantOrders_StorageFailure(t *testing.T) {
	svc := &MockService{}
	svc.On("OrdersByRestaurant", mock.Anything, int64(3)).
		Return(nil, errs.NewStorageError("query orders", errors.New("connection reset")))

	rec, envelope := doRequest(t, svc, "?restaurant_id=3")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", envelope.Message)
}
