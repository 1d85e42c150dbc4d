package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/foodhub/api/internal/database"
	"github.com/foodhub/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserStore defines the record methods needed by the current-user handlers.
// Satisfied by *database.Queries and *docstore.Store.
type UserStore interface {
	GetUserByAuth0ID(ctx context.Context, auth0ID string) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
}

// UserHandler handles the current-user endpoints.
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers GET and PUT on /api/my/user. Both need a resolved
// user. Create is mounted separately because it runs before the user exists.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

// --- Request / Response types ---

type createUserRequest struct {
	Email string `json:"email"`
}

type updateUserRequest struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

type userResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AddressLine1 string    `json:"address_line1"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
}

// --- Handlers ---

// Get handles GET /api/my/user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// Create handles POST /api/my/user. The identity comes from the token
// subject; an existing user is returned unchanged with 200.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	// The body is optional; the token usually carries the email.
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	existing, err := h.store.GetUserByAuth0ID(r.Context(), claims.Subject)
	if err == nil {
		writeJSON(w, http.StatusOK, toUserResponse(existing))
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: get user for create: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = claims.Email
	}
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Auth0ID: claims.Subject,
		Email:   email,
	})
	if errors.Is(err, database.ErrDuplicate) {
		// A concurrent request registered the same subject first.
		user, err = h.store.GetUserByAuth0ID(r.Context(), claims.Subject)
		if err == nil {
			writeJSON(w, http.StatusOK, toUserResponse(user))
			return
		}
	}
	if err != nil {
		log.Printf("ERROR: create user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /api/my/user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.AddressLine1 == "" || req.City == "" || req.Country == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, address_line1, city and country are required"})
		return
	}

	updated, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:           user.ID,
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		City:         req.City,
		Country:      req.Country,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: update user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// --- Helpers ---

func toUserResponse(u database.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		AddressLine1: u.AddressLine1,
		City:         u.City,
		Country:      u.Country,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
