package api

import (
	"log/slog"
	"net/http"

	"github.com/guto-escola/guto-api/internal/api/shared"
)

// DashboardHandler serves the home page aggregates.
type DashboardHandler struct {
	dashboard DashboardService
	logger    *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboard DashboardService, logger *slog.Logger) *DashboardHandler {
	if dashboard == nil || logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("dashboard service and logger cannot be nil for DashboardHandler")
	}
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Summary handles GET /dashboard/summary?period=.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// Activity handles GET /dashboard/activity?limit=. A missing or zero limit
// uses the configured default.
func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	entries, err := h.dashboard.RecentActivity(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, listOf(entries))
}
