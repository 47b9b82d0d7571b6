package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adminhub/ai-gateway/app"
)

// HealthCheck returns a simple liveness handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// ReadinessCheck verifies the database and the provider registry
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ready"
		checks := map[string]string{}

		if deps.DB == nil {
			status = "not_ready"
			checks["database"] = "not_initialized"
		} else if err := deps.DB.HealthCheck(ctx); err != nil {
			status = "not_ready"
			checks["database"] = "unhealthy"
			deps.Logger.Error("database health check failed", zap.Error(err))
		} else {
			checks["database"] = "healthy"
		}

		if len(deps.Registry.Types()) == 0 {
			checks["providers"] = "none_configured"
		} else {
			checks["providers"] = "configured"
		}

		w.Header().Set("Content-Type", "application/json")
		if status == "ready" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	}
}

// StatusHandler returns application status and the registered provider set
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"version":     "0.1.0",
			"environment": deps.Config.Environment,
			"providers":   deps.Registry.Types(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// ListProvidersHandler returns the registered provider configurations
func ListProvidersHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"providers": deps.Registry.Snapshot(),
		})
	}
}
