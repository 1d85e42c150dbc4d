package database

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, auth0_id, email, name, address_line1, city, country, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Auth0ID,
		&u.Email,
		&u.Name,
		&u.AddressLine1,
		&u.City,
		&u.Country,
		&u.CreatedAt,
	)
	return u, err
}

const getUserByAuth0ID = `SELECT ` + userColumns + ` FROM users WHERE auth0_id = $1`

func (q *Queries) GetUserByAuth0ID(ctx context.Context, auth0ID string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByAuth0ID, auth0ID))
}

type CreateUserParams struct {
	Auth0ID string
	Email   string
}

const createUser = `INSERT INTO users (auth0_id, email) VALUES ($1, $2)
RETURNING ` + userColumns

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, createUser, arg.Auth0ID, arg.Email))
	return u, duplicate(err)
}

type UpdateUserParams struct {
	ID           uuid.UUID
	Name         string
	AddressLine1 string
	City         string
	Country      string
}

const updateUser = `UPDATE users
SET name = $2, address_line1 = $3, city = $4, country = $5
WHERE id = $1
RETURNING ` + userColumns

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, updateUser,
		arg.ID,
		arg.Name,
		arg.AddressLine1,
		arg.City,
		arg.Country,
	))
}
