package router

import (
	"log"
	"net/http"

	"github.com/foodhub/api/internal/config"
	"github.com/foodhub/api/internal/handler"
	mw "github.com/foodhub/api/internal/middleware"
	"github.com/foodhub/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Store is the full record surface the API needs.
// Satisfied by *database.Queries and *docstore.Store.
type Store interface {
	service.OrderStore
	handler.UserStore
	handler.RestaurantStore
}

// New creates a Chi router with all application routes wired up.
// Apart from the public restaurant page and search, every /api route
// requires a bearer token, and all but user creation also require the token
// subject to resolve to a stored user.
func New(cfg *config.Config, store Store) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	orderService := service.NewOrderService(store, cfg.StatusPolicy)
	userHandler := handler.NewUserHandler(store)
	restaurantHandler := handler.NewRestaurantHandler(store)
	orderHandler := handler.NewOrderHandler(orderService)

	r.Route("/api", func(r chi.Router) {
		// Public restaurant page
		r.Route("/restaurant", restaurantHandler.RegisterPublicRoutes)

		// Protected routes (require a bearer token)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret, cfg.JWTIssuer))

			r.Route("/my/user", func(r chi.Router) {
				// Runs before the user record exists.
				r.Post("/", userHandler.Create)

				r.Group(func(r chi.Router) {
					r.Use(mw.ResolveUser(store))
					userHandler.RegisterRoutes(r)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(mw.ResolveUser(store))

				r.Route("/my/restaurant", func(r chi.Router) {
					restaurantHandler.RegisterRoutes(r)
					r.Route("/order", orderHandler.RegisterOwnerRoutes)
				})
				r.Route("/order", orderHandler.RegisterRoutes)
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
