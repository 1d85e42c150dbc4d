package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/foodhub/api/internal/database"
	"github.com/foodhub/api/internal/orderstatus"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Errors returned by the order service.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrForbidden          = errors.New("order does not belong to your restaurant")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTransition  = errors.New("status transition not allowed")
	ErrEmptyCart          = errors.New("cart_items are required")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrInvalidDelivery    = errors.New("delivery_details requires name, email, address_line1 and city")
	ErrTotalTooLarge      = errors.New("order total is too large")
)

// OrderStore defines the record methods the order service needs.
// Satisfied by *database.Queries and *docstore.Store.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	GetRestaurantByUser(ctx context.Context, userID uuid.UUID) (database.Restaurant, error)
}

// OrderDetail is an order together with the restaurant it was placed with.
type OrderDetail struct {
	Order      database.Order
	Restaurant database.Restaurant
}

// CreateOrderRequest is the checkout payload for a new order.
type CreateOrderRequest struct {
	CustomerID   uuid.UUID
	RestaurantID uuid.UUID
	Items        []CartItemRequest
	Delivery     database.DeliveryDetails
}

// CartItemRequest is a single line of the cart as sent by the client.
type CartItemRequest struct {
	MenuItemID string
	Quantity   int32
}

// OrderService handles order business logic.
type OrderService struct {
	store  OrderStore
	policy orderstatus.Policy
}

// NewOrderService creates a new OrderService. policy controls which status
// changes UpdateStatus accepts.
func NewOrderService(store OrderStore, policy orderstatus.Policy) *OrderService {
	if policy == "" {
		policy = orderstatus.PolicyAny
	}
	return &OrderService{store: store, policy: policy}
}

// UpdateStatus applies a status change on behalf of ownerID. Checks run in
// order: status membership, order existence, restaurant ownership, then the
// transition policy. Only the status field is written.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, rawStatus string) (database.Order, error) {
	next, err := orderstatus.Parse(rawStatus)
	if err != nil {
		return database.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	current, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	restaurant, err := s.store.GetRestaurant(ctx, current.RestaurantID)
	if err != nil {
		// An order whose restaurant is gone has no owner who may change it.
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrForbidden
		}
		return database.Order{}, fmt.Errorf("get restaurant: %w", err)
	}
	if restaurant.UserID != ownerID {
		return database.Order{}, ErrForbidden
	}

	if !s.policy.Allows(current.Status, next) {
		return database.Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: next,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}
	return updated, nil
}

// ListRestaurantOrders returns the orders of the restaurant owned by ownerID,
// newest first. An owner without a restaurant gets an empty list.
func (s *OrderService) ListRestaurantOrders(ctx context.Context, ownerID uuid.UUID) ([]OrderDetail, error) {
	restaurant, err := s.store.GetRestaurantByUser(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []OrderDetail{}, nil
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	orders, err := s.store.ListOrdersByRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("list restaurant orders: %w", err)
	}

	out := make([]OrderDetail, len(orders))
	for i, o := range orders {
		out[i] = OrderDetail{Order: o, Restaurant: restaurant}
	}
	return out, nil
}

// ListCustomerOrders returns the orders placed by customerID, newest first,
// each with its restaurant.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]OrderDetail, error) {
	orders, err := s.store.ListOrdersByUser(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}

	restaurants := make(map[uuid.UUID]database.Restaurant)
	out := make([]OrderDetail, len(orders))
	for i, o := range orders {
		r, ok := restaurants[o.RestaurantID]
		if !ok {
			r, err = s.restaurantOrStub(ctx, o.RestaurantID)
			if err != nil {
				return nil, err
			}
			restaurants[o.RestaurantID] = r
		}
		out[i] = OrderDetail{Order: o, Restaurant: r}
	}
	return out, nil
}

// GetOrder returns one order if callerID placed it or owns its restaurant.
// Any other caller gets ErrOrderNotFound so existence is not disclosed.
func (s *OrderService) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	restaurant, err := s.restaurantOrStub(ctx, order.RestaurantID)
	if err != nil {
		return nil, err
	}

	if order.UserID != callerID && restaurant.UserID != callerID {
		return nil, ErrOrderNotFound
	}
	return &OrderDetail{Order: order, Restaurant: restaurant}, nil
}

// CreateOrder records an order once checkout has completed. Item names are
// snapshotted from the menu and the total is the sum of line prices plus the
// restaurant's delivery price. New orders start as placed.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderDetail, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if err := validateDelivery(req.Delivery); err != nil {
		return nil, err
	}

	restaurant, err := s.store.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	menu := make(map[string]database.MenuItem, len(restaurant.MenuItems))
	for _, m := range restaurant.MenuItems {
		menu[m.ID] = m
	}

	total := restaurant.DeliveryPrice
	items := make([]database.CartItem, len(req.Items))
	for i, item := range req.Items {
		m, ok := menu[item.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemNotFound, item.MenuItemID)
		}
		if total, err = addLine(total, m.Price, item.Quantity); err != nil {
			return nil, err
		}
		items[i] = database.CartItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Quantity:   item.Quantity,
		}
	}

	order, err := s.store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:          req.CustomerID,
		RestaurantID:    restaurant.ID,
		CartItems:       items,
		DeliveryDetails: req.Delivery,
		TotalAmount:     total,
		Status:          orderstatus.Placed,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &OrderDetail{Order: order, Restaurant: restaurant}, nil
}

// restaurantOrStub loads a restaurant, substituting an empty record that
// keeps only the ID when it no longer exists.
func (s *OrderService) restaurantOrStub(ctx context.Context, id uuid.UUID) (database.Restaurant, error) {
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Restaurant{ID: id}, nil
		}
		return database.Restaurant{}, fmt.Errorf("get restaurant: %w", err)
	}
	return r, nil
}

// addLine adds price*qty to total, failing instead of wrapping past
// math.MaxInt64. total and price are never negative.
func addLine(total, price int64, qty int32) (int64, error) {
	if price > 0 && int64(qty) > (math.MaxInt64-total)/price {
		return 0, ErrTotalTooLarge
	}
	return total + price*int64(qty), nil
}

func validateDelivery(d database.DeliveryDetails) error {
	if strings.TrimSpace(d.Name) == "" ||
		strings.TrimSpace(d.Email) == "" ||
		strings.TrimSpace(d.AddressLine1) == "" ||
		strings.TrimSpace(d.City) == "" {
		return ErrInvalidDelivery
	}
	return nil
}
