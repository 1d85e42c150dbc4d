// Package docstore keeps users, restaurants and orders in MongoDB. It
// returns the same record types as package database so either backend can
// serve the handlers.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/foodhub/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection       = "users"
	restaurantsCollection = "restaurants"
	ordersCollection      = "orders"
)

// Store is a MongoDB-backed record store.
type Store struct {
	users       *mongo.Collection
	restaurants *mongo.Collection
	orders      *mongo.Collection
	now         func() time.Time
}

// New wraps an already connected database.
func New(db *mongo.Database) *Store {
	return &Store{
		users:       db.Collection(usersCollection),
		restaurants: db.Collection(restaurantsCollection),
		orders:      db.Collection(ordersCollection),
		now:         bsonNow,
	}
}

// bsonNow matches the millisecond precision of BSON dates so returned
// records equal what a later read decodes.
func bsonNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Connect dials uri, pings the primary and returns the client together with
// a Store for dbName. The caller owns the client and must Disconnect it.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, New(client.Database(dbName)), nil
}

// EnsureIndexes creates the unique and listing indexes. Safe to call on
// every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "auth0_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.restaurants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("restaurants index: %w", err)
	}
	if _, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("orders index: %w", err)
	}
	return nil
}

// notFound translates the driver's sentinel into pgx.ErrNoRows, which is
// what the service and handler layers test for.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return pgx.ErrNoRows
	}
	return err
}

// duplicate translates a unique-index violation into database.ErrDuplicate.
func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", database.ErrDuplicate, err)
	}
	return err
}

// --- Users ---

func (s *Store) GetUserByAuth0ID(ctx context.Context, auth0ID string) (database.User, error) {
	var d userDoc
	if err := s.users.FindOne(ctx, bson.M{"auth0_id": auth0ID}).Decode(&d); err != nil {
		return database.User{}, notFound(err)
	}
	return d.model(), nil
}

func (s *Store) CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
	d := userDoc{
		ID:        uuid.NewString(),
		Auth0ID:   arg.Auth0ID,
		Email:     arg.Email,
		CreatedAt: s.now(),
	}
	if _, err := s.users.InsertOne(ctx, d); err != nil {
		return database.User{}, fmt.Errorf("insert user: %w", duplicate(err))
	}
	return d.model(), nil
}

func (s *Store) UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error) {
	var d userDoc
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": arg.ID.String()},
		bson.M{"$set": bson.M{
			"name":          arg.Name,
			"address_line1": arg.AddressLine1,
			"city":          arg.City,
			"country":       arg.Country,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return database.User{}, notFound(err)
	}
	return d.model(), nil
}

// --- Restaurants ---

func (s *Store) GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error) {
	var d restaurantDoc
	if err := s.restaurants.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&d); err != nil {
		return database.Restaurant{}, notFound(err)
	}
	return d.model(), nil
}

func (s *Store) GetRestaurantByUser(ctx context.Context, userID uuid.UUID) (database.Restaurant, error) {
	var d restaurantDoc
	if err := s.restaurants.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&d); err != nil {
		return database.Restaurant{}, notFound(err)
	}
	return d.model(), nil
}

func (s *Store) CreateRestaurant(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error) {
	d := newRestaurantDoc(arg, s.now())
	if _, err := s.restaurants.InsertOne(ctx, d); err != nil {
		return database.Restaurant{}, fmt.Errorf("insert restaurant: %w", duplicate(err))
	}
	return d.model(), nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, arg database.UpdateRestaurantParams) (database.Restaurant, error) {
	menu := make([]menuItemDoc, len(arg.MenuItems))
	for i, m := range arg.MenuItems {
		menu[i] = menuItemDoc{ID: m.ID, Name: m.Name, Price: m.Price}
	}
	cuisines := arg.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	update := bson.M{"$set": bson.M{
		"name":                    arg.Name,
		"city":                    arg.City,
		"country":                 arg.Country,
		"delivery_price":          arg.DeliveryPrice,
		"estimated_delivery_time": arg.EstimatedDeliveryTime,
		"cuisines":                cuisines,
		"menu_items":              menu,
		"image_url":               arg.ImageURL,
		"last_updated":            s.now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d restaurantDoc
	if err := s.restaurants.FindOneAndUpdate(ctx, bson.M{"_id": arg.ID.String()}, update, opts).Decode(&d); err != nil {
		return database.Restaurant{}, notFound(err)
	}
	return d.model(), nil
}

var restaurantSorts = map[database.RestaurantSort]bson.D{
	database.SortBestMatch:             {{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
	database.SortDeliveryPrice:         {{Key: "delivery_price", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}},
	database.SortEstimatedDeliveryTime: {{Key: "estimated_delivery_time", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}},
	database.SortLastUpdated:           {{Key: "last_updated", Value: -1}, {Key: "_id", Value: 1}},
}

// containsFold matches s anywhere in a string field, ignoring case.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func searchFilter(arg database.SearchRestaurantsParams) bson.M {
	filter := bson.M{"city": containsFold(arg.City)}
	if len(arg.Cuisines) > 0 {
		all := make(bson.A, len(arg.Cuisines))
		for i, c := range arg.Cuisines {
			all[i] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(c) + "$", Options: "i"}
		}
		filter["cuisines"] = bson.M{"$all": all}
	}
	if arg.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"name": containsFold(arg.Query)},
			bson.M{"cuisines": containsFold(arg.Query)},
		}
	}
	return filter
}

// SearchRestaurants returns one page of matches and the total number of
// matches across all pages.
func (s *Store) SearchRestaurants(ctx context.Context, arg database.SearchRestaurantsParams) ([]database.Restaurant, int64, error) {
	filter := searchFilter(arg)
	total, err := s.restaurants.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count restaurants: %w", err)
	}

	sort, ok := restaurantSorts[arg.Sort]
	if !ok {
		sort = restaurantSorts[database.SortBestMatch]
	}
	opts := options.Find().SetSort(sort).SetSkip(arg.Offset).SetLimit(arg.Limit)
	cur, err := s.restaurants.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find restaurants: %w", err)
	}
	var docs []restaurantDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode restaurants: %w", err)
	}
	out := make([]database.Restaurant, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, total, nil
}

// --- Orders ---

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	var d orderDoc
	if err := s.orders.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&d); err != nil {
		return database.Order{}, notFound(err)
	}
	return d.model(), nil
}

func (s *Store) listOrders(ctx context.Context, filter bson.M) ([]database.Order, error) {
	cur, err := s.orders.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]database.Order, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

func (s *Store) ListOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Order, error) {
	return s.listOrders(ctx, bson.M{"restaurant_id": restaurantID.String()})
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error) {
	return s.listOrders(ctx, bson.M{"user_id": userID.String()})
}

func (s *Store) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	d := newOrderDoc(arg, s.now())
	if _, err := s.orders.InsertOne(ctx, d); err != nil {
		return database.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return d.model(), nil
}

// UpdateOrderStatus sets only status and updated_at. No version check is
// made, so concurrent writers are last-write-wins.
func (s *Store) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	var d orderDoc
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": arg.ID.String()},
		bson.M{"$set": bson.M{
			"status":     string(arg.Status),
			"updated_at": s.now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return database.Order{}, notFound(err)
	}
	return d.model(), nil
}
