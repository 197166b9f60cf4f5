package http

import (
	"net/http"

	"github.com/compozy/m2release/pkg/version"
	"go.uber.org/zap"
)

// HealthStatus is the body of the health endpoint
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// handleHealth handles health check requests
func handleHealth(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, http.StatusOK, &HealthStatus{
			Status:  "healthy",
			Service: "m2release",
			Version: version.Summary(),
		})
	}
}
