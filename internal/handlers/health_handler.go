package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/white/sales-tracker/pkg/mongodb"
)

type HealthResponse struct {
	Status  string                 `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks,omitempty"`
}

type HealthCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthHandler reports service liveness and dependency status.
type HealthHandler struct {
	mongo   *mongodb.Client
	version string
}

func NewHealthHandler(mongo *mongodb.Client, version string) *HealthHandler {
	return &HealthHandler{mongo: mongo, version: version}
}

func (h *HealthHandler) GetOverallHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Service: "sales-tracker-api",
		Version: h.version,
		Checks:  make(map[string]HealthCheck),
	}

	allHealthy := true

	if h.mongo != nil {
		if err := h.mongo.Ping(); err != nil {
			response.Checks["mongodb"] = HealthCheck{Status: "unhealthy", Error: err.Error()}
			allHealthy = false
		} else {
			response.Checks["mongodb"] = HealthCheck{Status: "healthy"}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if allHealthy {
		response.Status = "healthy"
		w.WriteHeader(http.StatusOK)
	} else {
		response.Status = "unhealthy"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}
