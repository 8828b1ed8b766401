package order

// QueryOrdersModel represents filter parameters for querying orders.
// Exactly one of the id filters is set by the lookup operations.
type QueryOrdersModel struct {
	CustomerID   int64 `json:"customer_id,omitempty"`
	RestaurantID int64 `json:"restaurant_id,omitempty"`
}
