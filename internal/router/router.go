package router

import (
	"log"
	"net/http"
	"time"

	"github.com/dineops/api/internal/config"
	"github.com/dineops/api/internal/database"
	"github.com/dineops/api/internal/handler"
	mw "github.com/dineops/api/internal/middleware"
	"github.com/dineops/api/internal/service"
	"github.com/dineops/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, restaurant scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // SvelteKit dev server
			"https://app.dineops.in",
			"https://stg-app.dineops.in",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Escalation and day-window math runs in the restaurant's local day.
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("WARN: invalid TIMEZONE %q, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{rid}/kitchen", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Restaurant-scoped routes
		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)

			// Orders
			newOrderStore := func(db database.DBTX) service.OrderStore {
				return database.New(db)
			}
			orderService := service.NewOrderService(pool, newOrderStore)
			orderHandler := handler.NewOrderHandler(orderService, queries, hub)
			r.Route("/orders", orderHandler.RegisterRoutes)

			// Kitchen tickets
			newTicketStore := func(db database.DBTX) service.TicketStore {
				return database.New(db)
			}
			ticketService := service.NewTicketService(queries, pool, newTicketStore, loc)
			ticketHandler := handler.NewTicketHandler(ticketService, hub)
			r.Route("/tickets", ticketHandler.RegisterRoutes)

			// Dining tables
			tableService := service.NewTableService(queries)
			tableHandler := handler.NewTableHandler(tableService)
			r.Route("/tables", tableHandler.RegisterRoutes)

			// Stock views
			stockHandler := handler.NewStockHandler(queries)
			r.Route("/stock", stockHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
