package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/foodhub/api/internal/database"
	"github.com/foodhub/api/internal/middleware"
	"github.com/foodhub/api/internal/orderstatus"
	"github.com/foodhub/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, status string) (database.Order, error)
	ListRestaurantOrders(ctx context.Context, ownerID uuid.UUID) ([]service.OrderDetail, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID) ([]service.OrderDetail, error)
	GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*service.OrderDetail, error)
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderDetail, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers the customer order endpoints.
// Expected to be mounted at /api/order behind ResolveUser.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/checkout", h.Checkout)
	r.Get("/{orderId}", h.Get)
}

// RegisterOwnerRoutes registers the restaurant owner order endpoints.
// Expected to be mounted at /api/my/restaurant/order behind ResolveUser.
func (h *OrderHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/", h.ListRestaurantOrders)
	r.Patch("/{orderId}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type checkoutRequest struct {
	RestaurantID    string                 `json:"restaurant_id"`
	CartItems       []checkoutItemRequest  `json:"cart_items"`
	DeliveryDetails deliveryDetailsPayload `json:"delivery_details"`
}

type checkoutItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
}

type deliveryDetailsPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
}

type cartItemResponse struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
}

type restaurantSummary struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	EstimatedDeliveryTime int32     `json:"estimated_delivery_time"`
	ImageURL              string    `json:"image_url"`
}

type orderResponse struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	RestaurantID    uuid.UUID              `json:"restaurant_id"`
	Restaurant      *restaurantSummary     `json:"restaurant,omitempty"`
	CartItems       []cartItemResponse     `json:"cart_items"`
	DeliveryDetails deliveryDetailsPayload `json:"delivery_details"`
	TotalAmount     int64                  `json:"total_amount"`
	Total           string                 `json:"total"`
	Status          string                 `json:"status"`
	StatusLabel     string                 `json:"status_label"`
	Progress        int                    `json:"progress"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// --- Handlers ---

// List handles GET /api/order.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orders, err := h.svc.ListCustomerOrders(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR: list customer orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponses(orders))
}

// ListRestaurantOrders handles GET /api/my/restaurant/order.
func (h *OrderHandler) ListRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orders, err := h.svc.ListRestaurantOrders(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR: list restaurant orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponses(orders))
}

// Get handles GET /api/order/{orderId}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), user.ID, orderID)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(*detail))
}

// UpdateStatus handles PATCH /api/my/restaurant/order/{orderId}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), user.ID, orderID, req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// Checkout handles POST /api/order/checkout. It records the order once the
// external checkout has completed; payment capture happens elsewhere.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	restaurantID, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant_id"})
		return
	}

	for i, item := range req.CartItems {
		if item.MenuItemID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "menu_item_id is required"),
			})
			return
		}
	}

	items := make([]service.CartItemRequest, len(req.CartItems))
	for i, item := range req.CartItems {
		items[i] = service.CartItemRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		}
	}

	detail, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CustomerID:   user.ID,
		RestaurantID: restaurantID,
		Items:        items,
		Delivery: database.DeliveryDetails{
			Name:         req.DeliveryDetails.Name,
			Email:        req.DeliveryDetails.Email,
			AddressLine1: req.DeliveryDetails.AddressLine1,
			City:         req.DeliveryDetails.City,
		},
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderDetailResponse(*detail))
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return "cart_items[" + strconv.Itoa(idx) + "]: " + msg
}

// writeServiceError maps service sentinels to status codes. Anything
// unrecognised is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrRestaurantNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", action, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrInvalidStatus) ||
		errors.Is(err, service.ErrEmptyCart) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrInvalidDelivery) ||
		errors.Is(err, service.ErrTotalTooLarge)
}

// formatMinor renders an amount in minor currency units as "12.34".
func formatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

func dbOrderToResponse(o database.Order) orderResponse {
	info := orderstatus.Lookup(o.Status)
	resp := orderResponse{
		ID:           o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		DeliveryDetails: deliveryDetailsPayload{
			Name:         o.DeliveryDetails.Name,
			Email:        o.DeliveryDetails.Email,
			AddressLine1: o.DeliveryDetails.AddressLine1,
			City:         o.DeliveryDetails.City,
		},
		TotalAmount: o.TotalAmount,
		Total:       formatMinor(o.TotalAmount),
		Status:      string(o.Status),
		StatusLabel: info.Label,
		Progress:    info.Progress,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}

	resp.CartItems = make([]cartItemResponse, len(o.CartItems))
	for i, item := range o.CartItems {
		resp.CartItems[i] = cartItemResponse{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
		}
	}

	return resp
}

func toOrderDetailResponse(d service.OrderDetail) orderResponse {
	resp := dbOrderToResponse(d.Order)
	resp.Restaurant = &restaurantSummary{
		ID:                    d.Restaurant.ID,
		Name:                  d.Restaurant.Name,
		EstimatedDeliveryTime: d.Restaurant.EstimatedDeliveryTime,
		ImageURL:              d.Restaurant.ImageURL,
	}
	return resp
}

func toOrderDetailResponses(details []service.OrderDetail) []orderResponse {
	resp := make([]orderResponse, len(details))
	for i, d := range details {
		resp[i] = toOrderDetailResponse(d)
	}
	return resp
}
