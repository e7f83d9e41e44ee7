// Package monitor serves the diagnostics HTTP interface for recorded
// simulation runs: JSON endpoints for run metadata and go-echarts chart
// pages for trajectory and cross-track inspection.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/pathtrack/internal/course"
	"github.com/banshee-data/pathtrack/internal/monitoring"
	"github.com/banshee-data/pathtrack/internal/telemetry"
)

// WebServer handles the HTTP interface for inspecting simulation runs.
type WebServer struct {
	address string
	store   *telemetry.Store
	path    *course.Path
	server  *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Store   *telemetry.Store
	Path    *course.Path
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address: config.Address,
		store:   config.Store,
		path:    config.Path,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Handler exposes the route mux, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", ws.handleHealth)
	mux.HandleFunc("/api/runs", ws.handleRuns)
	mux.HandleFunc("/api/ticks", ws.handleTicks)
	mux.HandleFunc("/charts/trajectory", ws.handleTrajectoryChart)
	mux.HandleFunc("/charts/crosstrack", ws.handleCrossTrackChart)
	return mux
}

// Start begins the HTTP server in a goroutine and blocks until the context
// is cancelled, then shuts the server down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("starting monitor HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("monitor server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("monitor server shutdown: %w", err)
	}
	monitoring.Logf("monitor HTTP server stopped")
	return nil
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]interface{}{
		"status":       "ok",
		"path_samples": ws.path.Len(),
		"path_length":  ws.path.Total(),
	})
}

func (ws *WebServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if ws.store == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no telemetry store configured")
		return
	}

	runs, err := ws.store.Runs()
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list runs: %v", err))
		return
	}
	ws.writeJSON(w, map[string]interface{}{"runs": runs})
}

func (ws *WebServer) handleTicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "missing 'run_id' parameter")
		return
	}
	if ws.store == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no telemetry store configured")
		return
	}

	ticks, err := ws.store.Ticks(runID)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("load ticks: %v", err))
		return
	}
	if len(ticks) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no ticks recorded for run '%s'", runID))
		return
	}
	ws.writeJSON(w, map[string]interface{}{"run_id": runID, "ticks": ticks})
}

// latestRunID resolves the run to chart: the run_id query parameter if
// present, otherwise the most recent recorded run.
func (ws *WebServer) latestRunID(r *http.Request) (string, error) {
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		return runID, nil
	}
	runs, err := ws.store.Runs()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs recorded")
	}
	return runs[0].RunID, nil
}
