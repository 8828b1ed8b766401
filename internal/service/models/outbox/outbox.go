package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a queued notification.
type Kind string

const (
	KindOrderCreated  Kind = "order_created"
	KindStatusChanged Kind = "status_changed"
)

// Message is a notification queued in the outbox table. It is written in the
// same transaction as the order change it announces and delivered later by
// the notifier worker.
type Message struct {
	ID          int64
	EventID     uuid.UUID
	Kind        Kind
	Payload     []byte
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}

// OrderCreatedPayload is the outbox payload for a freshly placed order.
type OrderCreatedPayload struct {
	OrderID      int64 `json:"order_id"`
	CustomerID   int64 `json:"customer_id"`
	RestaurantID int64 `json:"restaurant_id"`
}

// StatusChangedPayload is the outbox payload for a lifecycle transition.
type StatusChangedPayload struct {
	OrderID      int64 `json:"order_id"`
	CustomerID   int64 `json:"customer_id"`
	RestaurantID int64 `json:"restaurant_id"`
	Status       int   `json:"status"`
}
