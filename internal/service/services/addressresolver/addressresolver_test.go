package addressresolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/feastline/order-svc/internal/dal/geo"
	"github.com/feastline/order-svc/internal/pkg/errs"
	"github.com/feastline/order-svc/internal/service/models/address"
	"github.com/feastline/order-svc/internal/service/services/addressresolver"
)

type MockLocator struct{ mock.Mock }

func (m *MockLocator) Locate(ctx context.Context, hint string) (*geo.Location, error) {
	args := m.Called(ctx, hint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Location), args.Error(1)
}

func TestResolve_LiteralAddressPassedThroughVerbatim(t *testing.T) {
	locator := new(MockLocator)
	r := addressresolver.NewResolver(locator)

	resolved, err := r.Resolve(t.Context(), address.Descriptor{Parse: false, Value: "1 Main St"})
	require.NoError(t, err)
	require.Equal(t, "1 Main St", resolved)

	locator.AssertNotCalled(t, "Locate")
}

func TestResolve_HintFormattedFromCoordinates(t *testing.T) {
	locator := new(MockLocator)
	locator.On("Locate", mock.Anything, "8.8.8.8").
		Return(&geo.Location{Latitude: 51.51, Longitude: -0.13}, nil).Once()

	r := addressresolver.NewResolver(locator)

	resolved, err := r.Resolve(t.Context(), address.Descriptor{Parse: true, Value: "8.8.8.8"})
	require.NoError(t, err)
	require.Equal(t, "lat: 51.51, long: -0.13", resolved)

	locator.AssertExpectations(t)
}

func TestResolve_LookupFailureAbortsResolution(t *testing.T) {
	cause := errs.NewResolutionError(errs.ResolutionMissingField, nil)

	locator := new(MockLocator)
	locator.On("Locate", mock.Anything, "8.8.8.8").Return(nil, cause).Once()

	r := addressresolver.NewResolver(locator)

	resolved, err := r.Resolve(t.Context(), address.Descriptor{Parse: true, Value: "8.8.8.8"})
	require.Error(t, err)
	require.Empty(t, resolved)

	var resolutionErr *errs.ResolutionError
	require.ErrorAs(t, err, &resolutionErr)

	locator.AssertExpectations(t)
}
