package neworder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	SubmitOrder(ctx context.Context, p *order.Payload) (*order.Order, error)
}

// NewOrder handles the order submission request.
func NewOrder(w http.ResponseWriter, r *http.Request, service service) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Write(w, http.StatusBadRequest, "no data provided", nil)
		slog.Error("Error reading request body for new order", "error", err)

		return
	}

	// Emptiness is decided on the decoded object, not the raw bytes, so a
	// body of `{ }` is rejected the same way `{}` is.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		response.Write(w, http.StatusBadRequest, "no data provided", nil)

		return
	}

	var payload order.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		response.Write(w, http.StatusBadRequest, decodeErrorMessage(err), nil)
		slog.Error("Error decoding request body for new order", "error", err)

		return
	}

	o, err := service.SubmitOrder(r.Context(), &payload)
	if err != nil {
		response.WriteError(w, err)
		slog.Error("Error submitting order", "error", err)

		return
	}

	response.Write(w, http.StatusOK, fmt.Sprintf("success, order '%d' saved", o.ID), nil)
}

// decodeErrorMessage turns a JSON type mismatch into the same canonical
// reason the semantic validator would report for that field.
func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field, _, _ := strings.Cut(typeErr.Field, ".")
		if msg := order.TypeMismatchMessage(field); msg != "" {
			return msg
		}
	}

	return "no data provided"
}
