package restaurantorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/transport/http/response"
)

type service interface {
	OrdersByRestaurant(ctx context.Context, restaurantID int64) ([]order.Order, error)
}

type queryRestaurantOrdersRequest struct {
	RestaurantID int64 `schema:"restaurant_id,required"`
}

// RestaurantOrders handles the lookup of all orders placed at one restaurant.
func RestaurantOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &queryRestaurantOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil || query.RestaurantID <= 0 {
		response.Write(w, http.StatusBadRequest, "invalid restaurant id", nil)

		return
	}

	orders, err := service.OrdersByRestaurant(r.Context(), query.RestaurantID)
	if err != nil {
		response.WriteError(w, err)
		slog.Error("Error getting restaurant orders", "error", err)

		return
	}

	response.Write(w, http.StatusOK, "success", orders)
}
