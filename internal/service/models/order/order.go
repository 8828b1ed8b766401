package order

import (
	"time"
)

// DateLayout is the fixed format orders carry their submission timestamp in.
const DateLayout = "02/01/2006 15:04:05"

// Order represents a persisted restaurant order.
type Order struct {
	ID              int64   `json:"id"`
	CustomerID      int64   `json:"customer_id"`
	RestaurantID    int64   `json:"restaurant_id"`
	OrderDate       string  `json:"order_date"`
	TotalAmount     float64 `json:"total_amount"`
	Items           []int64 `json:"items"`
	Status          Status  `json:"status"`
	DeliveryAddress string  `json:"delivery_address"`
}

// FormatOrderDate renders a submission timestamp in the canonical layout.
func FormatOrderDate(t time.Time) string {
	return t.Format(DateLayout)
}
