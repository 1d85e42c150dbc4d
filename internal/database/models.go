package database

import (
	"time"

	"github.com/foodhub/api/internal/orderstatus"
	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Auth0ID      string
	Email        string
	Name         string
	AddressLine1 string
	City         string
	Country      string
	CreatedAt    time.Time
}

// MenuItem prices are in minor currency units.
type MenuItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type Restaurant struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	Name                  string
	City                  string
	Country               string
	DeliveryPrice         int64
	EstimatedDeliveryTime int32
	Cuisines              []string
	MenuItems             []MenuItem
	ImageURL              string
	LastUpdated           time.Time
}

// CartItem is a line item snapshot taken when the order is created.
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

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	RestaurantID    uuid.UUID
	CartItems       []CartItem
	DeliveryDetails DeliveryDetails
	TotalAmount     int64
	Status          orderstatus.Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
