package httpapi

import (
	"net/http"
	"strings"
	"time"

	"ptaregistry.org/internal/auth"
	"ptaregistry.org/internal/registry"
)

type dashboardResponse struct {
	Stats         registry.Stats            `json:"stats"`
	Chart         []registry.ChartPoint     `json:"chart"`
	NearingExpiry []registry.ExpiringPermit `json:"nearingExpiry,omitempty"`
	Recent        []registry.Permit         `json:"recent"`
	AsOf          time.Time                 `json:"asOf"`
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := a.requireView(w, r, auth.ViewDashboard)
	if !ok {
		return
	}

	permits := a.svc.Cache().Permits()
	now := time.Now().UTC()
	stats := registry.ComputeStats(permits)

	resp := dashboardResponse{
		Stats:  stats,
		Chart:  registry.ChartSeries(stats),
		Recent: registry.Recent(permits, registry.RecentFeedSize),
		AsOf:   now,
	}
	// The expiry watchlist is an admin/clerk concern; viewers get the
	// stats and the feed only.
	if principal.Role == registry.RoleAdmin || principal.Role == registry.RoleClerk {
		resp.NearingExpiry = registry.NearingExpiry(permits, now)
	}
	writeJSON(w, http.StatusOK, resp)
}

type searchResponse struct {
	Found  bool             `json:"found"`
	Permit *registry.Permit `json:"permit,omitempty"`
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireView(w, r, auth.ViewSearch); !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	// "Not found" is a valid empty result, rendered distinctly from an
	// authorization denial: still 200.
	permit, found := registry.Search(a.svc.Cache().Permits(), query)
	resp := searchResponse{Found: found}
	if found {
		resp.Permit = &permit
	}
	writeJSON(w, http.StatusOK, resp)
}

type reportResponse struct {
	Items []registry.Permit `json:"items"`
	Count int               `json:"count"`
}

func (a *API) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireView(w, r, auth.ViewReports); !ok {
		return
	}

	items := registry.FilterReport(a.svc.Cache().Permits(), filterFromQuery(r))
	writeJSON(w, http.StatusOK, reportResponse{Items: items, Count: len(items)})
}

func filterFromQuery(r *http.Request) registry.ReportFilter {
	q := r.URL.Query()
	return registry.ReportFilter{
		Status:   q.Get("status"),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
		Route:    q.Get("route"),
	}
}
