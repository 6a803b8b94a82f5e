package handlers

import (
	"context"
	"net/http"

	"github.com/harborcrm/harbor/internal/models"
	pkghttp "github.com/harborcrm/harbor/pkg/http"
)

// DashboardServiceInterface defines the interface for dashboard aggregation
type DashboardServiceInterface interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

// DashboardHandler serves the aggregate stats endpoint
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats returns the dashboard snapshot.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, stats)
}
