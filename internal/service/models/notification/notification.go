package notification

import (
	"github.com/google/uuid"
)

// Email is the message handed to the outbound delivery collaborator.
type Email struct {
	EventID uuid.UUID `json:"event_id"`
	Email   string    `json:"email"`
	Message string    `json:"message"`
}
