package addressresolver

import (
	"context"
	"fmt"

	"github.com/feastline/order-svc/internal/dal/geo"
	"github.com/feastline/order-svc/internal/service/models/address"
)

// locator is the geolocation collaborator boundary.
type locator interface {
	Locate(ctx context.Context, hint string) (*geo.Location, error)
}

// Resolver turns a delivery-address descriptor into the final address string
// that gets persisted.
type Resolver struct {
	locator locator
}

// NewResolver creates a Resolver backed by the given geolocation client.
func NewResolver(l locator) *Resolver {
	return &Resolver{
		locator: l,
	}
}

// Resolve returns the descriptor value verbatim for literal addresses, and
// a formatted coordinate string for hints that need resolution. A failed
// lookup surfaces as a ResolutionError and aborts the submission; nothing is
// defaulted silently.
func (r *Resolver) Resolve(ctx context.Context, d address.Descriptor) (string, error) {
	if !d.Parse {
		return d.Value, nil
	}

	loc, err := r.locator.Locate(ctx, d.Value)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("lat: %v, long: %v", loc.Latitude, loc.Longitude), nil
}
