// Package client is a Go client for the order API, including the poller a
// customer view uses to follow status changes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/foodhub/api/internal/orderstatus"
)

// Error kinds matched by *APIError via errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// Is maps the HTTP status to one of the error kinds above.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return target == ErrInvalidArgument
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrConflict
	}
	return e.StatusCode >= 500 && target == ErrInternal
}

type CartItem struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
}

type DeliveryDetails struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
}

// Restaurant is the summary embedded in order responses.
type Restaurant struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	EstimatedDeliveryTime int32  `json:"estimated_delivery_time"`
	ImageURL              string `json:"image_url"`
}

// Order is an order as returned by the API.
type Order struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	RestaurantID    string             `json:"restaurant_id"`
	Restaurant      *Restaurant        `json:"restaurant,omitempty"`
	CartItems       []CartItem         `json:"cart_items"`
	DeliveryDetails DeliveryDetails    `json:"delivery_details"`
	TotalAmount     int64              `json:"total_amount"`
	Total           string             `json:"total"`
	Status          orderstatus.Status `json:"status"`
	StatusLabel     string             `json:"status_label"`
	Progress        int                `json:"progress"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Client calls the order API with a bearer token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New returns a Client for baseURL (for example "http://localhost:8081").
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListMyOrders returns the orders placed by the caller, newest first.
func (c *Client) ListMyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/order", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListRestaurantOrders returns the orders of the caller's restaurant, newest
// first.
func (c *Client) ListRestaurantOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/my/restaurant/order", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns a single order visible to the caller.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, "/api/order/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus sets the status of an order owned by the caller's
// restaurant.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status orderstatus.Status) (*Order, error) {
	body := map[string]string{"status": string(status)}
	path := "/api/my/restaurant/order/" + url.PathEscape(orderID) + "/status"

	var order Order
	if err := c.do(ctx, http.MethodPatch, path, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
