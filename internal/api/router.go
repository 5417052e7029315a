package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Catalog and assistant routes work for anonymous visitors too;
		// a valid token upgrades them with the user's profile.
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.OptionalAuthMiddleware)

			r.Get("/products", apiHandler.ListProductsHandler)
			r.Get("/products/{productID}", apiHandler.GetProductHandler)
			r.Get("/products/{productID}/history", apiHandler.ChatHistoryHandler)
			r.Get("/dashboard", apiHandler.DashboardHandler)
			r.Post("/ai/ask", apiHandler.AskHandler)
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Put("/profile", apiHandler.UpdateProfileHandler)
		})
	})

	return r
}
