package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/feastline/order-svc/internal/pkg/errs"
)

// Location is the coordinate pair the geolocation collaborator resolves a
// hint into.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Client calls the external geolocation service.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a geolocation client with an explicit per-call timeout so
// a slow collaborator cannot block a submission indefinitely.
func NewClient() *Client {
	timeoutSeconds := viper.GetInt("geo.timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		endpoint: os.Getenv("GEO_ENDPOINT"),
	}
}

// locateResponse uses pointer fields so an absent coordinate is
// distinguishable from zero.
type locateResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Locate resolves a location hint into coordinates. Every failure mode maps
// to a distinct ResolutionError, never a silent default.
func (c *Client) Locate(ctx context.Context, hint string) (*Location, error) {
	reqURL := fmt.Sprintf("%s?ip=%s", c.endpoint, url.QueryEscape(hint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errs.NewResolutionError(errs.ResolutionUnreachable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, errs.NewResolutionError(errs.ResolutionTimeout, err)
		}
		return nil, errs.NewResolutionError(errs.ResolutionUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errs.NewResolutionError(
			errs.ResolutionBadStatus,
			fmt.Errorf("geolocation service returned %d", resp.StatusCode),
		)
	}

	var body locateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errs.NewResolutionError(errs.ResolutionMalformed, err)
	}

	if body.Latitude == nil {
		return nil, errs.NewResolutionError(errs.ResolutionMissingField, errors.New("latitude missing"))
	}
	if body.Longitude == nil {
		return nil, errs.NewResolutionError(errs.ResolutionMissingField, errors.New("longitude missing"))
	}

	return &Location{
		Latitude:  *body.Latitude,
		Longitude: *body.Longitude,
	}, nil
}
