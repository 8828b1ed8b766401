package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/feastline/order-svc/internal/pkg/errs"
)

// Envelope is the JSON body every endpoint answers with. Status mirrors the
// HTTP status code so clients can treat the body as self-contained.
type Envelope struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
}

// Write sends an envelope with the given status, message and optional data.
func Write(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Envelope{
		Message: message,
		Status:  status,
		Data:    data,
	}); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// WriteError maps the error taxonomy onto the envelope. Order-not-found is
// handled by the endpoints themselves since its message carries the order id.
func WriteError(w http.ResponseWriter, err error) {
	var validationErr *errs.ValidationError
	if errors.As(err, &validationErr) {
		Write(w, http.StatusBadRequest, validationErr.Message, nil)

		return
	}

	var resolutionErr *errs.ResolutionError
	if errors.As(err, &resolutionErr) {
		Write(w, http.StatusBadGateway, "could not resolve delivery address", nil)

		return
	}

	var transitionErr *errs.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		Write(w, http.StatusConflict, transitionErr.Error(), nil)

		return
	}

	Write(w, http.StatusInternalServerError, "internal server error", nil)
}
