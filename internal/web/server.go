package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/stakewatch/stakewatch/internal/dashboard"
	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/state"
	"github.com/stakewatch/stakewatch/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer handles HTTP requests for the staking dashboard API
type WebServer struct {
	router    *mux.Router
	port      string
	dashboard *dashboard.Dashboard
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, d *dashboard.Dashboard) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:    mux.NewRouter(),
		port:      port,
		dashboard: d,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/pools/{id}", ws.handleGetPool).Methods("GET")
	api.HandleFunc("/tiers", ws.handleGetTiers).Methods("GET")
	api.HandleFunc("/positions/{account}", ws.handleGetAccountPositions).Methods("GET")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")
	api.HandleFunc("/refreshes", ws.handleGetRefreshes).Methods("GET")
	api.HandleFunc("/refreshes/latest", ws.handleGetLatestRefresh).Methods("GET")
	api.HandleFunc("/refreshes/{id}", ws.handleGetRefresh).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hasErrors := false

	lastRefreshedAt := ws.dashboard.LastRefreshedAt()
	refreshInfo := map[string]interface{}{
		"last_refresh_time": nil,
		"maintenance":       ws.dashboard.Maintenance(),
	}
	if lastRefreshedAt.IsZero() {
		// No view yet: either just started or the chain API is unreachable.
		hasErrors = true
	} else {
		refreshInfo["last_refresh_time"] = lastRefreshedAt
	}

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
		hasErrors = true
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "stakewatch-dashboard",
			"version": "1.0.0",
		},
		"dashboard_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"refresh_info":     refreshInfo,
		},
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetPools returns every pool from the latest snapshot together with
// its derived health
func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	snapshot := ws.dashboard.Snapshot()
	if snapshot == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "No snapshot available yet")
		return
	}

	healths := ws.dashboard.PoolHealths()
	healthByPool := make(map[uint64]interface{}, len(healths))
	for _, h := range healths {
		healthByPool[uint64(h.PoolID)] = h
	}

	pools := make([]map[string]interface{}, 0, len(snapshot.Pools))
	for _, pool := range snapshot.Pools {
		pools = append(pools, map[string]interface{}{
			"pool":   pool,
			"health": healthByPool[uint64(pool.PoolID)],
		})
	}

	response := map[string]interface{}{
		"pools":      pools,
		"count":      len(pools),
		"fetched_at": snapshot.FetchedAt,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPool returns a single pool with its derived health
func (ws *WebServer) handleGetPool(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
		return
	}

	snapshot := ws.dashboard.Snapshot()
	if snapshot == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "No snapshot available yet")
		return
	}

	pool := snapshot.PoolByID(types.PoolID(id))
	if pool == nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}

	var health interface{}
	for _, h := range ws.dashboard.PoolHealths() {
		if h.PoolID == pool.PoolID {
			health = h
			break
		}
	}

	response := map[string]interface{}{
		"pool":       pool,
		"health":     health,
		"fetched_at": snapshot.FetchedAt,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetTiers returns the tier ladder from the latest snapshot
func (ws *WebServer) handleGetTiers(w http.ResponseWriter, r *http.Request) {
	tiers := ws.dashboard.Tiers()
	if tiers == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "No snapshot available yet")
		return
	}

	response := map[string]interface{}{
		"tiers": tiers,
		"count": len(tiers),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetAccountPositions returns the derived overviews for one account
func (ws *WebServer) handleGetAccountPositions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	account := vars["account"]
	if account == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Account name required")
		return
	}

	if ws.dashboard.Snapshot() == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "No snapshot available yet")
		return
	}

	// An account with no positions gets an empty list, not a 404: a
	// connected wallet that never staked is a normal dashboard state.
	overviews := ws.dashboard.AccountOverviews(account)

	response := map[string]interface{}{
		"account":   account,
		"positions": overviews,
		"count":     len(overviews),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetParameters returns the current engine parameters
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"parameters": ws.dashboard.Params(),
		"timestamp":  time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetRefreshes returns paginated refresh history
func (ws *WebServer) handleGetRefreshes(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	refreshes, err := state.GetRecentRefreshes(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent refreshes")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve refreshes")
		return
	}

	response := map[string]interface{}{
		"refreshes": refreshes,
		"count":     len(refreshes),
		"limit":     limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetRefresh returns a specific refresh by its UUID
func (ws *WebServer) handleGetRefresh(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	refreshID := vars["id"]

	refresh, err := state.GetRefreshByID(refreshID)
	if err != nil {
		webLogger.Error().Err(err).Str("refreshId", refreshID).Msg("Failed to get refresh")
		ws.writeErrorResponse(w, http.StatusNotFound, "Refresh not found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, refresh)
}

// handleGetLatestRefresh returns the most recent refresh
func (ws *WebServer) handleGetLatestRefresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := state.GetLatestRefresh()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get latest refresh")
		ws.writeErrorResponse(w, http.StatusNotFound, "No refreshes found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, refresh)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
