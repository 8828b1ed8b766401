package order

// Status is the lifecycle state of an order. The zero value is invalid so
// uninitialized statuses never pass validation.
type Status int

const (
	// StatusPlaced is assigned by the pipeline at creation time.
	StatusPlaced Status = iota + 1
	StatusConfirmed
	StatusDelivered
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusPlaced:    "placed",
	StatusConfirmed: "confirmed",
	StatusDelivered: "delivered",
	StatusCancelled: "cancelled",
}

// transitions holds the allowed lifecycle moves. Delivered and cancelled are
// terminal. Self-transitions are handled separately so re-applying a status
// stays idempotent.
var transitions = map[Status][]Status{
	StatusPlaced:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// String returns the human-readable name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is a member of the closed lifecycle set.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle table permits moving from s
// to next. Applying the current status again is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}
