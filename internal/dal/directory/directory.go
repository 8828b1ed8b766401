package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Restaurant is a directory listing entry.
type Restaurant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client talks to the customer and restaurant directory services. The data
// is only used to compose notification content.
type Client struct {
	httpClient          *http.Client
	customersEndpoint   string
	restaurantsEndpoint string
}

// NewClient creates a directory client with a per-call timeout.
func NewClient() *Client {
	timeoutSeconds := viper.GetInt("directory.timeout_seconds")
	if timeoutSeconds == 0 {
		timeoutSeconds = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		customersEndpoint:   os.Getenv("CUSTOMERS_ENDPOINT"),
		restaurantsEndpoint: os.Getenv("RESTAURANTS_ENDPOINT"),
	}
}

// CustomerEmail looks up the contact address for a customer id.
func (c *Client) CustomerEmail(ctx context.Context, customerID int64) (string, error) {
	reqURL := fmt.Sprintf("%s/%d", c.customersEndpoint, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("customer directory lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("customer directory returned %d for customer %d", resp.StatusCode, customerID)
	}

	var body struct {
		UserEmail string `json:"user_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode customer directory response: %w", err)
	}
	if body.UserEmail == "" {
		return "", fmt.Errorf("customer directory has no email for customer %d", customerID)
	}

	return body.UserEmail, nil
}

// RestaurantName resolves a restaurant id to its display name through the
// directory listing. An unknown id is not an error here, the caller decides
// how much a missing name matters.
func (c *Client) RestaurantName(ctx context.Context, restaurantID int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restaurantsEndpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("restaurant directory lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("restaurant directory returned %d", resp.StatusCode)
	}

	var listing []Restaurant
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return "", fmt.Errorf("failed to decode restaurant directory response: %w", err)
	}

	for _, r := range listing {
		if r.ID == restaurantID {
			return r.Name, nil
		}
	}

	return "", nil
}
