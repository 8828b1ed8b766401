package updatestatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/feastline/order-svc/internal/pkg/errs"
	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/transport/http/response"
)

// service is an interface for the service layer.
type service interface {
	TransitionStatus(ctx context.Context, orderID int64, newStatus order.Status) error
}

// updateOrderStatusRequest represents an update order status request.
// Fields are declared in validation order.
type updateOrderStatusRequest struct {
	OrderID *int64 `json:"order_id" validate:"required,gt=0"`
	Status  *int   `json:"status"   validate:"required"`
}

var validate = validator.New()

var fieldMessages = map[string]string{
	"OrderID": "invalid order id",
	"Status":  "invalid status",
}

// Validate validates the update order status request.
func (r *updateOrderStatusRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return errs.NewValidationError(fieldMessages[fieldErrs[0].StructField()])
		}
		return errs.NewValidationError("invalid order id")
	}
	return nil
}

// UpdateStatus handles the status transition request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	req := updateOrderStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Write(w, http.StatusBadRequest, decodeErrorMessage(err), nil)
		slog.Error("Error decoding request body for status update", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		response.WriteError(w, err)

		return
	}

	if err := service.TransitionStatus(r.Context(), *req.OrderID, order.Status(*req.Status)); err != nil {
		if errors.Is(err, errs.ErrOrderNotFound) {
			response.Write(w, http.StatusNotFound, fmt.Sprintf("order '%d' not found", *req.OrderID), nil)

			return
		}
		response.WriteError(w, err)
		slog.Error("Error updating order status", "error", err)

		return
	}

	response.Write(w, http.StatusOK, fmt.Sprintf("order '%d' updated to '%d'", *req.OrderID, *req.Status), nil)
}

func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "status" {
		return "invalid status"
	}

	return "invalid order id"
}
