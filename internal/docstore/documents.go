package docstore

import (
	"time"

	"github.com/foodhub/api/internal/database"
	"github.com/foodhub/api/internal/orderstatus"
	"github.com/google/uuid"
)

// Documents use string ids so they stay readable in the mongo shell.

type userDoc struct {
	ID           string    `bson:"_id"`
	Auth0ID      string    `bson:"auth0_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	AddressLine1 string    `bson:"address_line1"`
	City         string    `bson:"city"`
	Country      string    `bson:"country"`
	CreatedAt    time.Time `bson:"created_at"`
}

type menuItemDoc struct {
	ID    string `bson:"id"`
	Name  string `bson:"name"`
	Price int64  `bson:"price"`
}

type restaurantDoc struct {
	ID                    string        `bson:"_id"`
	UserID                string        `bson:"user_id"`
	Name                  string        `bson:"name"`
	City                  string        `bson:"city"`
	Country               string        `bson:"country"`
	DeliveryPrice         int64         `bson:"delivery_price"`
	EstimatedDeliveryTime int32         `bson:"estimated_delivery_time"`
	Cuisines              []string      `bson:"cuisines"`
	MenuItems             []menuItemDoc `bson:"menu_items"`
	ImageURL              string        `bson:"image_url"`
	LastUpdated           time.Time     `bson:"last_updated"`
}

type cartItemDoc struct {
	MenuItemID string `bson:"menu_item_id"`
	Name       string `bson:"name"`
	Quantity   int32  `bson:"quantity"`
}

type deliveryDoc struct {
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	AddressLine1 string `bson:"address_line1"`
	City         string `bson:"city"`
}

type orderDoc struct {
	ID              string        `bson:"_id"`
	UserID          string        `bson:"user_id"`
	RestaurantID    string        `bson:"restaurant_id"`
	CartItems       []cartItemDoc `bson:"cart_items"`
	DeliveryDetails deliveryDoc   `bson:"delivery_details"`
	TotalAmount     int64         `bson:"total_amount"`
	Status          string        `bson:"status"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}

// parseID tolerates malformed stored ids; they decode to uuid.Nil.
func parseID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func (d userDoc) model() database.User {
	return database.User{
		ID:           parseID(d.ID),
		Auth0ID:      d.Auth0ID,
		Email:        d.Email,
		Name:         d.Name,
		AddressLine1: d.AddressLine1,
		City:         d.City,
		Country:      d.Country,
		CreatedAt:    d.CreatedAt,
	}
}

func (d restaurantDoc) model() database.Restaurant {
	menu := make([]database.MenuItem, len(d.MenuItems))
	for i, m := range d.MenuItems {
		menu[i] = database.MenuItem{ID: m.ID, Name: m.Name, Price: m.Price}
	}
	cuisines := d.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	return database.Restaurant{
		ID:                    parseID(d.ID),
		UserID:                parseID(d.UserID),
		Name:                  d.Name,
		City:                  d.City,
		Country:               d.Country,
		DeliveryPrice:         d.DeliveryPrice,
		EstimatedDeliveryTime: d.EstimatedDeliveryTime,
		Cuisines:              cuisines,
		MenuItems:             menu,
		ImageURL:              d.ImageURL,
		LastUpdated:           d.LastUpdated,
	}
}

func (d orderDoc) model() database.Order {
	items := make([]database.CartItem, len(d.CartItems))
	for i, c := range d.CartItems {
		items[i] = database.CartItem{MenuItemID: c.MenuItemID, Name: c.Name, Quantity: c.Quantity}
	}
	return database.Order{
		ID:           parseID(d.ID),
		UserID:       parseID(d.UserID),
		RestaurantID: parseID(d.RestaurantID),
		CartItems:    items,
		DeliveryDetails: database.DeliveryDetails{
			Name:         d.DeliveryDetails.Name,
			Email:        d.DeliveryDetails.Email,
			AddressLine1: d.DeliveryDetails.AddressLine1,
			City:         d.DeliveryDetails.City,
		},
		TotalAmount: d.TotalAmount,
		Status:      orderstatus.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func newOrderDoc(arg database.CreateOrderParams, now time.Time) orderDoc {
	items := make([]cartItemDoc, len(arg.CartItems))
	for i, c := range arg.CartItems {
		items[i] = cartItemDoc{MenuItemID: c.MenuItemID, Name: c.Name, Quantity: c.Quantity}
	}
	status := arg.Status
	if status == "" {
		status = orderstatus.Placed
	}
	return orderDoc{
		ID:           uuid.NewString(),
		UserID:       arg.UserID.String(),
		RestaurantID: arg.RestaurantID.String(),
		CartItems:    items,
		DeliveryDetails: deliveryDoc{
			Name:         arg.DeliveryDetails.Name,
			Email:        arg.DeliveryDetails.Email,
			AddressLine1: arg.DeliveryDetails.AddressLine1,
			City:         arg.DeliveryDetails.City,
		},
		TotalAmount: arg.TotalAmount,
		Status:      string(status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newRestaurantDoc(arg database.CreateRestaurantParams, now time.Time) restaurantDoc {
	menu := make([]menuItemDoc, len(arg.MenuItems))
	for i, m := range arg.MenuItems {
		menu[i] = menuItemDoc{ID: m.ID, Name: m.Name, Price: m.Price}
	}
	cuisines := arg.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	return restaurantDoc{
		ID:                    uuid.NewString(),
		UserID:                arg.UserID.String(),
		Name:                  arg.Name,
		City:                  arg.City,
		Country:               arg.Country,
		DeliveryPrice:         arg.DeliveryPrice,
		EstimatedDeliveryTime: arg.EstimatedDeliveryTime,
		Cuisines:              cuisines,
		MenuItems:             menu,
		ImageURL:              arg.ImageURL,
		LastUpdated:           now,
	}
}
