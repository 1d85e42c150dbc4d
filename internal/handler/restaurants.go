package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foodhub/api/internal/database"
	"github.com/foodhub/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RestaurantStore defines the record methods needed by restaurant handlers.
// Satisfied by *database.Queries and *docstore.Store; narrow interface for testability.
type RestaurantStore interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	GetRestaurantByUser(ctx context.Context, userID uuid.UUID) (database.Restaurant, error)
	CreateRestaurant(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error)
	UpdateRestaurant(ctx context.Context, arg database.UpdateRestaurantParams) (database.Restaurant, error)
	SearchRestaurants(ctx context.Context, arg database.SearchRestaurantsParams) ([]database.Restaurant, int64, error)
}

// searchPageSize is the number of restaurants per search page.
const searchPageSize = 10

// RestaurantHandler handles restaurant endpoints.
type RestaurantHandler struct {
	store RestaurantStore
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(store RestaurantStore) *RestaurantHandler {
	return &RestaurantHandler{store: store}
}

// RegisterRoutes registers the owner's restaurant endpoints.
// Expected to be mounted at /api/my/restaurant behind ResolveUser.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.GetMine)
	r.Post("/", h.Create)
	r.Put("/", h.Update)
}

// RegisterPublicRoutes registers the unauthenticated restaurant reads.
// Expected to be mounted at /api/restaurant.
func (h *RestaurantHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/search/{city}", h.Search)
	r.Get("/{restaurantId}", h.Get)
}

// --- Request / Response types ---

type menuItemRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type restaurantRequest struct {
	Name                  string            `json:"name"`
	City                  string            `json:"city"`
	Country               string            `json:"country"`
	DeliveryPrice         int64             `json:"delivery_price"`
	EstimatedDeliveryTime int32             `json:"estimated_delivery_time"`
	Cuisines              []string          `json:"cuisines"`
	MenuItems             []menuItemRequest `json:"menu_items"`
	ImageURL              string            `json:"image_url"`
}

type menuItemResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type restaurantResponse struct {
	ID                    uuid.UUID          `json:"id"`
	Name                  string             `json:"name"`
	City                  string             `json:"city"`
	Country               string             `json:"country"`
	DeliveryPrice         int64              `json:"delivery_price"`
	EstimatedDeliveryTime int32              `json:"estimated_delivery_time"`
	Cuisines              []string           `json:"cuisines"`
	MenuItems             []menuItemResponse `json:"menu_items"`
	ImageURL              string             `json:"image_url"`
	LastUpdated           time.Time          `json:"last_updated"`
}

type paginationResponse struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int64 `json:"pages"`
}

type searchResponse struct {
	Data       []restaurantResponse `json:"data"`
	Pagination paginationResponse   `json:"pagination"`
}

// --- Validation ---

// validate checks required fields and returns the cleaned cuisines and menu.
// Menu items without an id get a fresh one; existing ids are kept so cart
// references in past orders stay meaningful.
func (req restaurantRequest) validate() ([]string, []database.MenuItem, string) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, nil, "name is required"
	}
	if strings.TrimSpace(req.City) == "" {
		return nil, nil, "city is required"
	}
	if strings.TrimSpace(req.Country) == "" {
		return nil, nil, "country is required"
	}
	if req.DeliveryPrice < 0 {
		return nil, nil, "delivery_price must be >= 0"
	}
	if req.EstimatedDeliveryTime <= 0 {
		return nil, nil, "estimated_delivery_time must be > 0"
	}

	var cuisines []string
	for _, c := range req.Cuisines {
		if c = strings.TrimSpace(c); c != "" {
			cuisines = append(cuisines, c)
		}
	}
	if len(cuisines) == 0 {
		return nil, nil, "at least one cuisine is required"
	}

	if len(req.MenuItems) == 0 {
		return nil, nil, "at least one menu item is required"
	}
	seen := make(map[string]bool, len(req.MenuItems))
	menu := make([]database.MenuItem, len(req.MenuItems))
	for i, m := range req.MenuItems {
		prefix := "menu_items[" + strconv.Itoa(i) + "]: "
		if strings.TrimSpace(m.Name) == "" {
			return nil, nil, prefix + "name is required"
		}
		if m.Price < 0 {
			return nil, nil, prefix + "price must be >= 0"
		}
		id := m.ID
		if id == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			return nil, nil, prefix + "duplicate id"
		}
		seen[id] = true
		menu[i] = database.MenuItem{ID: id, Name: m.Name, Price: m.Price}
	}

	return cuisines, menu, ""
}

// --- Handlers ---

// GetMine handles GET /api/my/restaurant.
func (h *RestaurantHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	restaurant, err := h.store.GetRestaurantByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get restaurant by user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// Get handles GET /api/restaurant/{restaurantId}.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "restaurantId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// Search handles GET /api/restaurant/search/{city}.
// Query parameters: searchQuery, selectedCuisines (comma separated),
// sortOption and page (1-based).
func (h *RestaurantHandler) Search(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(chi.URLParam(r, "city"))
	if city == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "city is required"})
		return
	}

	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > math.MaxInt32 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page must be a positive integer"})
			return
		}
		page = p
	}

	sort := database.SortBestMatch
	switch v := database.RestaurantSort(q.Get("sortOption")); v {
	case "":
	case database.SortBestMatch, database.SortDeliveryPrice, database.SortEstimatedDeliveryTime, database.SortLastUpdated:
		sort = v
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown sortOption"})
		return
	}

	var cuisines []string
	for _, c := range strings.Split(q.Get("selectedCuisines"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			cuisines = append(cuisines, c)
		}
	}

	restaurants, total, err := h.store.SearchRestaurants(r.Context(), database.SearchRestaurantsParams{
		City:     city,
		Query:    strings.TrimSpace(q.Get("searchQuery")),
		Cuisines: cuisines,
		Sort:     sort,
		Limit:    searchPageSize,
		Offset:   int64(page-1) * searchPageSize,
	})
	if err != nil {
		log.Printf("ERROR: search restaurants: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	pages := (total + searchPageSize - 1) / searchPageSize
	if pages < 1 {
		pages = 1
	}

	resp := searchResponse{
		Data:       make([]restaurantResponse, len(restaurants)),
		Pagination: paginationResponse{Total: total, Page: page, Pages: pages},
	}
	for i, rs := range restaurants {
		resp.Data[i] = toRestaurantResponse(rs)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/my/restaurant. An owner has at most one restaurant.
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req restaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cuisines, menu, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	if _, err := h.store.GetRestaurantByUser(r.Context(), user.ID); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "user restaurant already exists"})
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: check existing restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	restaurant, err := h.store.CreateRestaurant(r.Context(), database.CreateRestaurantParams{
		UserID:                user.ID,
		Name:                  req.Name,
		City:                  req.City,
		Country:               req.Country,
		DeliveryPrice:         req.DeliveryPrice,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		Cuisines:              cuisines,
		MenuItems:             menu,
		ImageURL:              req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "user restaurant already exists"})
			return
		}
		log.Printf("ERROR: create restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRestaurantResponse(restaurant))
}

// Update handles PUT /api/my/restaurant. The whole record is replaced.
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req restaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cuisines, menu, msg := req.validate()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	existing, err := h.store.GetRestaurantByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get restaurant for update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	restaurant, err := h.store.UpdateRestaurant(r.Context(), database.UpdateRestaurantParams{
		ID:                    existing.ID,
		Name:                  req.Name,
		City:                  req.City,
		Country:               req.Country,
		DeliveryPrice:         req.DeliveryPrice,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		Cuisines:              cuisines,
		MenuItems:             menu,
		ImageURL:              req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: update restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// --- Helpers ---

func toRestaurantResponse(rs database.Restaurant) restaurantResponse {
	resp := restaurantResponse{
		ID:                    rs.ID,
		Name:                  rs.Name,
		City:                  rs.City,
		Country:               rs.Country,
		DeliveryPrice:         rs.DeliveryPrice,
		EstimatedDeliveryTime: rs.EstimatedDeliveryTime,
		Cuisines:              rs.Cuisines,
		ImageURL:              rs.ImageURL,
		LastUpdated:           rs.LastUpdated,
	}
	if resp.Cuisines == nil {
		resp.Cuisines = []string{}
	}

	resp.MenuItems = make([]menuItemResponse, len(rs.MenuItems))
	for i, m := range rs.MenuItems {
		resp.MenuItems[i] = menuItemResponse{ID: m.ID, Name: m.Name, Price: m.Price}
	}
	return resp
}
