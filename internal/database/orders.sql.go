package database

import (
	"context"

	"github.com/foodhub/api/internal/orderstatus"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, user_id, restaurant_id, cart_items, delivery_details,
total_amount, status, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.RestaurantID,
		&o.CartItems,
		&o.DeliveryDetails,
		&o.TotalAmount,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	o.Status = orderstatus.Status(status)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const listOrdersByRestaurant = `SELECT ` + orderColumns + ` FROM orders
WHERE restaurant_id = $1
ORDER BY created_at DESC, id`

func (q *Queries) ListOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

const listOrdersByUser = `SELECT ` + orderColumns + ` FROM orders
WHERE user_id = $1
ORDER BY created_at DESC, id`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

type CreateOrderParams struct {
	UserID          uuid.UUID
	RestaurantID    uuid.UUID
	CartItems       []CartItem
	DeliveryDetails DeliveryDetails
	TotalAmount     int64
	Status          orderstatus.Status
}

const createOrder = `INSERT INTO orders (
    user_id, restaurant_id, cart_items, delivery_details, total_amount, status
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.UserID,
		arg.RestaurantID,
		arg.CartItems,
		arg.DeliveryDetails,
		arg.TotalAmount,
		string(arg.Status),
	))
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status orderstatus.Status
}

// Unconditional write: concurrent updates to the same order are last-write-wins.
const updateOrderStatus = `UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, string(arg.Status)))
}
