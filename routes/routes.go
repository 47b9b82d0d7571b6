package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/adminhub/ai-gateway/app"
	"github.com/adminhub/ai-gateway/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	aiHandler := handlers.NewAIHandler(deps.Executor, deps.Logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.StatusHandler(deps))

		r.Route("/ai", func(r chi.Router) {
			r.Post("/generate", aiHandler.HandleGenerateText)
			r.Post("/analyze", aiHandler.HandleAnalyzeText)
			r.Post("/summarize", aiHandler.HandleSummarizeText)
			r.Post("/translate", aiHandler.HandleTranslateText)
			r.Post("/document", aiHandler.HandleAnalyzeDocument)
			r.Post("/code", aiHandler.HandleGenerateCode)
			r.Post("/image", aiHandler.HandleAnalyzeImage)

			r.Get("/usage", aiHandler.HandleUsageStats)
			r.Get("/providers", handlers.ListProvidersHandler(deps))
			r.Get("/providers/health", aiHandler.HandleProviderHealth)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
