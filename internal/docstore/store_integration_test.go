//go:build integration

package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodhub/api/internal/database"
	"github.com/foodhub/api/internal/docstore"
	"github.com/foodhub/api/internal/orderstatus"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupMongo(t *testing.T, ctx context.Context) *docstore.Store {
	t.Helper()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	client, store, err := docstore.Connect(ctx, uri, "foodhub_test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return store
}

func TestStoreOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupMongo(t, ctx)

	// --- Users ---
	owner, err := store.CreateUser(ctx, database.CreateUserParams{Auth0ID: "auth0|owner", Email: "owner@test.com"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	customer, err := store.CreateUser(ctx, database.CreateUserParams{Auth0ID: "auth0|customer", Email: "c@test.com"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if _, err := store.CreateUser(ctx, database.CreateUserParams{Auth0ID: "auth0|owner", Email: "dup@test.com"}); !errors.Is(err, database.ErrDuplicate) {
		t.Errorf("duplicate auth0 id: got %v, want database.ErrDuplicate", err)
	}
	if _, err := store.GetUserByAuth0ID(ctx, "auth0|nobody"); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("unknown user: got %v, want pgx.ErrNoRows", err)
	}

	updatedUser, err := store.UpdateUser(ctx, database.UpdateUserParams{
		ID: customer.ID, Name: "Cust", AddressLine1: "1 Main St", City: "Leeds", Country: "UK",
	})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updatedUser.City != "Leeds" || updatedUser.Email != "c@test.com" {
		t.Errorf("updated user: got %+v", updatedUser)
	}

	// --- Restaurant ---
	restaurant, err := store.CreateRestaurant(ctx, database.CreateRestaurantParams{
		UserID:                owner.ID,
		Name:                  "Test Kitchen",
		City:                  "Leeds",
		Country:               "UK",
		DeliveryPrice:         350,
		EstimatedDeliveryTime: 30,
		Cuisines:              []string{"Pizza"},
		MenuItems:             []database.MenuItem{{ID: "m1", Name: "Margherita", Price: 1000}},
	})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	byOwner, err := store.GetRestaurantByUser(ctx, owner.ID)
	if err != nil || byOwner.ID != restaurant.ID {
		t.Fatalf("get restaurant by user: %v (%v)", err, byOwner.ID)
	}
	renamed, err := store.UpdateRestaurant(ctx, database.UpdateRestaurantParams{
		ID:                    restaurant.ID,
		Name:                  "Renamed Kitchen",
		City:                  "Leeds",
		Country:               "UK",
		DeliveryPrice:         400,
		EstimatedDeliveryTime: 25,
		Cuisines:              []string{"Pizza"},
		MenuItems:             restaurant.MenuItems,
	})
	if err != nil {
		t.Fatalf("update restaurant: %v", err)
	}
	if renamed.Name != "Renamed Kitchen" || renamed.DeliveryPrice != 400 || renamed.UserID != owner.ID {
		t.Errorf("updated restaurant: got %+v", renamed)
	}

	// --- Search ---
	searches := []struct {
		arg       database.SearchRestaurantsParams
		wantTotal int64
	}{
		{database.SearchRestaurantsParams{City: "leeds", Limit: 10}, 1},
		{database.SearchRestaurantsParams{City: "LEE", Cuisines: []string{"pizza"}, Query: "renamed", Limit: 10}, 1},
		{database.SearchRestaurantsParams{City: "leeds", Cuisines: []string{"sushi"}, Limit: 10}, 0},
		{database.SearchRestaurantsParams{City: "york", Limit: 10}, 0},
		{database.SearchRestaurantsParams{City: "leeds", Sort: database.SortLastUpdated, Limit: 10, Offset: 10}, 1},
	}
	for _, tc := range searches {
		found, total, err := store.SearchRestaurants(ctx, tc.arg)
		if err != nil {
			t.Fatalf("search %+v: %v", tc.arg, err)
		}
		if total != tc.wantTotal {
			t.Errorf("search %+v: total %d, want %d", tc.arg, total, tc.wantTotal)
		}
		if tc.arg.Offset == 0 && int64(len(found)) != tc.wantTotal {
			t.Errorf("search %+v: %d results, want %d", tc.arg, len(found), tc.wantTotal)
		}
		if tc.arg.Offset > 0 && len(found) != 0 {
			t.Errorf("search %+v: past the last page got %d results", tc.arg, len(found))
		}
	}

	// --- Orders ---
	if orders, err := store.ListOrdersByRestaurant(ctx, restaurant.ID); err != nil || orders == nil || len(orders) != 0 {
		t.Fatalf("empty list: got %v, %v", orders, err)
	}

	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		o, err := store.CreateOrder(ctx, database.CreateOrderParams{
			UserID:          customer.ID,
			RestaurantID:    restaurant.ID,
			CartItems:       []database.CartItem{{MenuItemID: "m1", Name: "Margherita", Quantity: int32(i + 1)}},
			DeliveryDetails: database.DeliveryDetails{Name: "Cust", Email: "c@test.com", AddressLine1: "1 Main St", City: "Leeds"},
			TotalAmount:     int64(1000*(i+1) + 350),
			Status:          orderstatus.Placed,
		})
		if err != nil {
			t.Fatalf("create order: %v", err)
		}
		ids = append(ids, o.ID)
		time.Sleep(5 * time.Millisecond)
	}

	listed, err := store.ListOrdersByUser(ctx, customer.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != ids[1] {
		t.Fatalf("newest first: got %v", listed)
	}

	before, err := store.GetOrder(ctx, ids[0])
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	after, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: ids[0], Status: orderstatus.InProgress})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if after.Status != orderstatus.InProgress {
		t.Errorf("status: got %q", after.Status)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) || after.TotalAmount != before.TotalAmount || len(after.CartItems) != 1 {
		t.Errorf("only status should change: before %+v after %+v", before, after)
	}

	if _, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: uuid.New(), Status: orderstatus.Paid}); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("unknown order: got %v, want pgx.ErrNoRows", err)
	}
}
