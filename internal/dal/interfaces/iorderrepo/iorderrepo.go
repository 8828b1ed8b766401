package iorderrepo

import (
	"context"

	"github.com/feastline/order-svc/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	// Insert persists a new order and returns the store-assigned id.
	Insert(ctx context.Context, o order.Order) (int64, error)

	// Query retrieves orders matching the filter. No matches is an empty
	// slice, not an error.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// GetForUpdate loads an order row, locking it for the transition check.
	GetForUpdate(ctx context.Context, orderID int64) (*order.Order, error)

	// UpdateStatus overwrites the status field of an existing order.
	UpdateStatus(ctx context.Context, orderID int64, status order.Status) error
}
