package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const restaurantColumns = `id, user_id, name, city, country, delivery_price,
estimated_delivery_time, cuisines, menu_items, image_url, last_updated`

func scanRestaurant(row interface{ Scan(...interface{}) error }) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Name,
		&r.City,
		&r.Country,
		&r.DeliveryPrice,
		&r.EstimatedDeliveryTime,
		&r.Cuisines,
		&r.MenuItems,
		&r.ImageURL,
		&r.LastUpdated,
	)
	return r, err
}

const getRestaurant = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, getRestaurant, id))
}

const getRestaurantByUser = `SELECT ` + restaurantColumns + ` FROM restaurants WHERE user_id = $1`

func (q *Queries) GetRestaurantByUser(ctx context.Context, userID uuid.UUID) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, getRestaurantByUser, userID))
}

type CreateRestaurantParams struct {
	UserID                uuid.UUID
	Name                  string
	City                  string
	Country               string
	DeliveryPrice         int64
	EstimatedDeliveryTime int32
	Cuisines              []string
	MenuItems             []MenuItem
	ImageURL              string
}

const createRestaurant = `INSERT INTO restaurants (
    user_id, name, city, country, delivery_price,
    estimated_delivery_time, cuisines, menu_items, image_url
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + restaurantColumns

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	cuisines := arg.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	menu := arg.MenuItems
	if menu == nil {
		menu = []MenuItem{}
	}
	r, err := scanRestaurant(q.db.QueryRow(ctx, createRestaurant,
		arg.UserID,
		arg.Name,
		arg.City,
		arg.Country,
		arg.DeliveryPrice,
		arg.EstimatedDeliveryTime,
		cuisines,
		menu,
		arg.ImageURL,
	))
	return r, duplicate(err)
}

type UpdateRestaurantParams struct {
	ID                    uuid.UUID
	Name                  string
	City                  string
	Country               string
	DeliveryPrice         int64
	EstimatedDeliveryTime int32
	Cuisines              []string
	MenuItems             []MenuItem
	ImageURL              string
}

const updateRestaurant = `UPDATE restaurants
SET name = $2, city = $3, country = $4, delivery_price = $5,
    estimated_delivery_time = $6, cuisines = $7, menu_items = $8,
    image_url = $9, last_updated = now()
WHERE id = $1
RETURNING ` + restaurantColumns

func (q *Queries) UpdateRestaurant(ctx context.Context, arg UpdateRestaurantParams) (Restaurant, error) {
	cuisines := arg.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	menu := arg.MenuItems
	if menu == nil {
		menu = []MenuItem{}
	}
	return scanRestaurant(q.db.QueryRow(ctx, updateRestaurant,
		arg.ID,
		arg.Name,
		arg.City,
		arg.Country,
		arg.DeliveryPrice,
		arg.EstimatedDeliveryTime,
		cuisines,
		menu,
		arg.ImageURL,
	))
}

// RestaurantSort names the orderings SearchRestaurants accepts.
type RestaurantSort string

const (
	SortBestMatch             RestaurantSort = "bestMatch"
	SortDeliveryPrice         RestaurantSort = "deliveryPrice"
	SortEstimatedDeliveryTime RestaurantSort = "estimatedDeliveryTime"
	SortLastUpdated           RestaurantSort = "lastUpdated"
)

// SearchRestaurantsParams filters restaurants by city, optional free text
// (name or cuisine) and cuisines that must all be present. Matching is
// case-insensitive.
type SearchRestaurantsParams struct {
	City     string
	Query    string
	Cuisines []string
	Sort     RestaurantSort
	Limit    int64
	Offset   int64
}

const searchRestaurantsWhere = `
WHERE city ILIKE '%' || $1::text || '%' ESCAPE '\'
  AND ARRAY(SELECT lower(c) FROM unnest(cuisines) AS c) @> $2::text[]
  AND ($3::text = ''
       OR name ILIKE '%' || $3::text || '%' ESCAPE '\'
       OR EXISTS (SELECT 1 FROM unnest(cuisines) AS c WHERE c ILIKE '%' || $3::text || '%' ESCAPE '\'))`

var restaurantOrderBy = map[RestaurantSort]string{
	SortBestMatch:             `name, id`,
	SortDeliveryPrice:         `delivery_price, name, id`,
	SortEstimatedDeliveryTime: `estimated_delivery_time, name, id`,
	SortLastUpdated:           `last_updated DESC, id`,
}

const countRestaurants = `SELECT count(*) FROM restaurants` + searchRestaurantsWhere

// SearchRestaurants returns one page of matches and the total number of
// matches across all pages.
func (q *Queries) SearchRestaurants(ctx context.Context, arg SearchRestaurantsParams) ([]Restaurant, int64, error) {
	orderBy, ok := restaurantOrderBy[arg.Sort]
	if !ok {
		orderBy = restaurantOrderBy[SortBestMatch]
	}

	cuisines := make([]string, 0, len(arg.Cuisines))
	for _, c := range arg.Cuisines {
		cuisines = append(cuisines, strings.ToLower(c))
	}
	city := escapeLike(arg.City)
	text := escapeLike(arg.Query)

	var total int64
	if err := q.db.QueryRow(ctx, countRestaurants, city, cuisines, text).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + restaurantColumns + ` FROM restaurants` + searchRestaurantsWhere +
		`
ORDER BY ` + orderBy + `
LIMIT $4 OFFSET $5`
	rows, err := q.db.Query(ctx, query, city, cuisines, text, arg.Limit, arg.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Restaurant{}
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
