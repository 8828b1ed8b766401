package userorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/transport/http/response"
)

type service interface {
	OrdersByCustomer(ctx context.Context, customerID int64) ([]order.Order, error)
}

type queryUserOrdersRequest struct {
	CustomerID int64 `schema:"customer_id,required"`
}

// UserOrders handles the lookup of all orders placed by one customer. A
// non-integer id is rejected before any store access happens.
func UserOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryUserOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil || query.CustomerID <= 0 {
		response.Write(w, http.StatusBadRequest, "invalid customer id", nil)

		return
	}

	orders, err := service.OrdersByCustomer(r.Context(), query.CustomerID)
	if err != nil {
		response.WriteError(w, err)
		slog.Error("Error getting customer orders", "error", err)

		return
	}

	response.Write(w, http.StatusOK, "success", orders)
}
