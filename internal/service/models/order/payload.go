package order

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/feastline/order-svc/internal/pkg/errs"
	"github.com/feastline/order-svc/internal/service/models/address"
)

// Payload is the decoded body of a new-order request. Fields are declared in
// validation order: the first failing field decides the reported reason.
// OrderDate and Status are accepted but ignored, the pipeline assigns both.
type Payload struct {
	RestaurantID    *int64              `json:"restaurant_id"    validate:"required,gt=0"`
	Items           []int64             `json:"items"            validate:"required,min=1"`
	CustomerID      *int64              `json:"customer_id"      validate:"required,gt=0"`
	TotalAmount     *float64            `json:"total_amount"     validate:"required,gt=0"`
	DeliveryAddress *address.Descriptor `json:"delivery_address" validate:"required"`
	OrderDate       string              `json:"order_date"`
	Status          int                 `json:"status"`
}

var validate = validator.New()

// validationMessages maps failing payload fields to their canonical reason
// strings. One message per condition, returned to the client verbatim.
var validationMessages = map[string]string{
	"RestaurantID":    "invalid restaurant id",
	"Items":           "order items invalid",
	"CustomerID":      "invalid customer id",
	"TotalAmount":     "invalid total price",
	"DeliveryAddress": "delivery address not provided",
}

// typeMismatchMessages maps JSON field names to the canonical reason reported
// when a field carries the wrong type. delivery_address differs from the
// semantic set: a malformed address is "invalid", a missing one "not provided".
var typeMismatchMessages = map[string]string{
	"restaurant_id":    "invalid restaurant id",
	"items":            "order items invalid",
	"customer_id":      "invalid customer id",
	"total_amount":     "invalid total price",
	"delivery_address": "invalid delivery address",
}

// TypeMismatchMessage returns the canonical reason for a JSON field that
// failed to decode, or an empty string for unknown fields. The transport
// layer uses it to map JSON type mismatches onto the same reasons semantic
// checks produce.
func TypeMismatchMessage(jsonField string) string {
	return typeMismatchMessages[jsonField]
}

// Validate checks the payload semantically, short-circuiting on the first
// failing field. Pure function, no side effects.
func (p *Payload) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return errs.NewValidationError(validationMessages[fieldErrs[0].StructField()])
		}
		return errs.NewValidationError("no data provided")
	}
	if p.DeliveryAddress.Value == "" {
		return errs.NewValidationError("invalid delivery address")
	}
	return nil
}
