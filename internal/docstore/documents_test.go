package docstore

import (
	"errors"
	"testing"
	"time"

	"github.com/foodhub/api/internal/database"
	"github.com/foodhub/api/internal/orderstatus"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewOrderDocDefaultsToPlaced(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	restaurantID := uuid.New()

	d := newOrderDoc(database.CreateOrderParams{
		UserID:       userID,
		RestaurantID: restaurantID,
		CartItems:    []database.CartItem{{MenuItemID: "m1", Name: "Margherita", Quantity: 2}},
		DeliveryDetails: database.DeliveryDetails{
			Name: "Ann", Email: "ann@example.com", AddressLine1: "1 Main St", City: "Leeds",
		},
		TotalAmount: 2350,
	}, now)

	if d.Status != string(orderstatus.Placed) {
		t.Errorf("status: got %q, want %q", d.Status, orderstatus.Placed)
	}
	if !d.CreatedAt.Equal(now) || !d.UpdatedAt.Equal(now) {
		t.Errorf("timestamps: got %v/%v, want %v", d.CreatedAt, d.UpdatedAt, now)
	}

	o := d.model()
	if o.ID == uuid.Nil {
		t.Error("expected generated order ID")
	}
	if o.UserID != userID || o.RestaurantID != restaurantID {
		t.Errorf("references not preserved: %v %v", o.UserID, o.RestaurantID)
	}
	if len(o.CartItems) != 1 || o.CartItems[0].Name != "Margherita" || o.CartItems[0].Quantity != 2 {
		t.Errorf("cart items: got %+v", o.CartItems)
	}
	if o.DeliveryDetails.City != "Leeds" {
		t.Errorf("delivery city: got %q", o.DeliveryDetails.City)
	}
	if o.TotalAmount != 2350 {
		t.Errorf("total: got %d", o.TotalAmount)
	}
}

func TestRestaurantDocModel(t *testing.T) {
	ownerID := uuid.New()
	d := newRestaurantDoc(database.CreateRestaurantParams{
		UserID:                ownerID,
		Name:                  "Luigi's",
		DeliveryPrice:         250,
		EstimatedDeliveryTime: 30,
		MenuItems:             []database.MenuItem{{ID: "m1", Name: "Margherita", Price: 1050}},
	}, time.Now())

	r := d.model()
	if r.UserID != ownerID {
		t.Errorf("owner: got %v, want %v", r.UserID, ownerID)
	}
	if r.Cuisines == nil {
		t.Error("cuisines should be an empty slice, not nil")
	}
	if len(r.MenuItems) != 1 || r.MenuItems[0].Price != 1050 {
		t.Errorf("menu: got %+v", r.MenuItems)
	}
}

func TestParseIDToleratesGarbage(t *testing.T) {
	if parseID("not-a-uuid") != uuid.Nil {
		t.Error("expected uuid.Nil for malformed id")
	}
}

func TestNotFoundMapsToNoRows(t *testing.T) {
	if !errors.Is(notFound(mongo.ErrNoDocuments), pgx.ErrNoRows) {
		t.Error("mongo.ErrNoDocuments should map to pgx.ErrNoRows")
	}
	other := errors.New("boom")
	if notFound(other) != other {
		t.Error("other errors should pass through")
	}
}

func TestDuplicateMapsToErrDuplicate(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}}}
	if !errors.Is(duplicate(dup), database.ErrDuplicate) {
		t.Error("duplicate key write error should map to database.ErrDuplicate")
	}
	other := errors.New("boom")
	if duplicate(other) != other {
		t.Error("other errors should pass through")
	}
}

func TestSearchFilter(t *testing.T) {
	f := searchFilter(database.SearchRestaurantsParams{
		City:     "St. Albans",
		Query:    "pi(zz)a",
		Cuisines: []string{"Pizza", "C++"},
	})

	city, ok := f["city"].(primitive.Regex)
	if !ok || city.Pattern != `St\. Albans` || city.Options != "i" {
		t.Errorf("city: got %#v", f["city"])
	}

	all := f["cuisines"].(bson.M)["$all"].(bson.A)
	if len(all) != 2 || all[1].(primitive.Regex).Pattern != `^C\+\+$` {
		t.Errorf("cuisines: got %#v", all)
	}

	or := f["$or"].(bson.A)
	if len(or) != 2 || or[0].(bson.M)["name"].(primitive.Regex).Pattern != `pi\(zz\)a` {
		t.Errorf("$or: got %#v", or)
	}
}

func TestSearchFilterOmitsEmptyCriteria(t *testing.T) {
	f := searchFilter(database.SearchRestaurantsParams{City: "Leeds"})
	if _, ok := f["cuisines"]; ok {
		t.Error("no cuisines selected should not filter on cuisines")
	}
	if _, ok := f["$or"]; ok {
		t.Error("empty query should not add $or")
	}
}

func TestRestaurantSortsCoverEveryOption(t *testing.T) {
	for _, s := range []database.RestaurantSort{database.SortBestMatch, database.SortDeliveryPrice, database.SortEstimatedDeliveryTime, database.SortLastUpdated} {
		if len(restaurantSorts[s]) == 0 {
			t.Errorf("no sort for %q", s)
		}
	}
}
