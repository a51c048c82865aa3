package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"ptaregistry.org/api/spec"
	"ptaregistry.org/internal/application"
	"ptaregistry.org/internal/obs"
)

const sessionTTL = 12 * time.Hour

// ReadyProbe reports backend readiness (e.g. a DB ping), when a database
// connection backs the record store.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the registry service.
type API struct {
	mux        *http.ServeMux
	svc        *application.Service
	readyProbe ReadyProbe
	version    string
}

func New(svc *application.Service, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		svc:        svc,
		readyProbe: rp,
		version:    version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// OpenAPI YAML
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// session
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)

	// views
	a.mux.HandleFunc("/v1/views/dashboard", a.handleDashboard)
	a.mux.HandleFunc("/v1/views/search", a.handleSearch)
	a.mux.HandleFunc("/v1/views/reports", a.handleReports)
	a.mux.HandleFunc("/v1/reports/export", a.handleExport)

	// mutations
	a.mux.HandleFunc("/v1/permits", a.handlePermitsCollection)
	a.mux.HandleFunc("/v1/permits/", a.handlePermitResource)
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler: metrics on the outside,
// then the hardening/limiting chain, then authentication.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = withRequestID(h)
	h = Logging(h)
	h = RateLimit(h, 40, 20)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "pta-registry-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	if !a.svc.Cache().Synced() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  "registry cache has not completed its first sync",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "pta-registry-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}
