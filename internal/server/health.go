// Package server implements the HTTP surface of housekeeperd: liveness and
// readiness probes, Prometheus metrics, the storage CORS endpoint and manual
// job triggers.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/livecart/housekeeper/internal/logging"
)

// ReadinessChecker is an interface for components that can report their readiness.
// The document store and the object store implement this to participate in
// readiness checks.
type ReadinessChecker interface {
	// Name returns the name of the component for display in health status.
	Name() string

	// CheckReady performs a health check and returns nil if the component is ready,
	// or an error describing why it's not ready.
	CheckReady(ctx context.Context) error
}

// HealthServer serves /healthz and /readyz plus any handlers mounted with
// RegisterHandler.
type HealthServer struct {
	mu               sync.RWMutex
	addr             string
	boundAddr        string
	server           *http.Server
	logger           *logging.Logger
	shutDown         atomic.Bool
	goroutines       map[string]*goroutineStatus
	readinessChecks  []ReadinessChecker
	readinessTimeout time.Duration
	routes           []route
}

type route struct {
	method  string
	pattern string
	handler http.Handler
	mount   bool
}

// goroutineStatus tracks whether a critical goroutine is running.
type goroutineStatus struct {
	running   bool
	lastCheck time.Time
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status     string                 `json:"status"`
	Goroutines map[string]bool        `json:"goroutines,omitempty"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// DefaultReadinessTimeout is the default timeout for readiness checks.
const DefaultReadinessTimeout = 5 * time.Second

// goroutineStaleAfter marks a registered goroutine unhealthy when it has not
// reported for this long.
const goroutineStaleAfter = 2 * time.Minute

// NewHealthServer creates a new HealthServer.
func NewHealthServer(addr string, logger *logging.Logger) *HealthServer {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &HealthServer{
		addr:             addr,
		logger:           logger,
		goroutines:       make(map[string]*goroutineStatus),
		readinessChecks:  make([]ReadinessChecker, 0),
		readinessTimeout: DefaultReadinessTimeout,
	}
}

// RegisterHandler mounts an extra handler. An empty method matches any
// method. Call before Start or Handler.
func (h *HealthServer) RegisterHandler(method, pattern string, handler http.Handler) {
	if pattern == "" || handler == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route{method: method, pattern: pattern, handler: handler})
}

// Mount attaches a sub-router under pattern. Call before Start or Handler.
func (h *HealthServer) Mount(pattern string, handler http.Handler) {
	if pattern == "" || handler == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route{pattern: pattern, handler: handler, mount: true})
}

// RegisterReadinessCheck registers a component for readiness checking.
// The component will be checked on each /readyz request.
func (h *HealthServer) RegisterReadinessCheck(checker ReadinessChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readinessChecks = append(h.readinessChecks, checker)
}

// SetReadinessTimeout sets the timeout for individual readiness checks.
func (h *HealthServer) SetReadinessTimeout(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readinessTimeout = d
}

// RegisterGoroutine registers a critical goroutine for health checking.
func (h *HealthServer) RegisterGoroutine(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.goroutines[name] = &goroutineStatus{
		running:   true,
		lastCheck: time.Now(),
	}
}

// UpdateGoroutine updates the last check time for a goroutine.
func (h *HealthServer) UpdateGoroutine(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if status, ok := h.goroutines[name]; ok {
		status.lastCheck = time.Now()
	}
}

// UnregisterGoroutine marks a goroutine as stopped.
func (h *HealthServer) UnregisterGoroutine(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if status, ok := h.goroutines[name]; ok {
		status.running = false
	}
}

// SetShuttingDown marks the server as shutting down.
// After this is called, /healthz and /readyz return 503.
func (h *HealthServer) SetShuttingDown() {
	h.shutDown.Store(true)
}

// IsShuttingDown returns true if the server is shutting down.
func (h *HealthServer) IsShuttingDown() bool {
	return h.shutDown.Load()
}

// Handler builds the router.
func (h *HealthServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealthz)
	r.Head("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyz)
	r.Head("/readyz", h.handleReadyz)

	h.mu.RLock()
	routes := append([]route(nil), h.routes...)
	h.mu.RUnlock()
	for _, rt := range routes {
		switch {
		case rt.mount:
			r.Mount(rt.pattern, rt.handler)
		case rt.method == "":
			r.Handle(rt.pattern, rt.handler)
		default:
			r.Method(rt.method, rt.pattern, rt.handler)
		}
	}

	r.Mount("/debug", middleware.Profiler())
	return r
}

// Start starts the HTTP server.
func (h *HealthServer) Start() error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // manual job runs can take minutes
	}

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.boundAddr = ln.Addr().String()
	h.mu.Unlock()

	h.logger.Infof("http server listening", map[string]any{"addr": ln.Addr().String()})

	go func() {
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.logger.Errorf("http server error", map[string]any{"error": err.Error()})
		}
	}()

	return nil
}

// Addr returns the actual bound address of the server.
// Returns the configured address if the server hasn't started yet.
func (h *HealthServer) Addr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.boundAddr != "" {
		return h.boundAddr
	}
	return h.addr
}

// Close shuts down the server, waiting up to timeout for in-flight requests.
func (h *HealthServer) Close(timeout time.Duration) error {
	if h.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return h.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, r *http.Request, status HealthStatus) {
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}
	writeJSON(w, code, status)
}

// handleHealthz handles the /healthz liveness endpoint.
// Returns 503 if shutting down or a critical goroutine stopped reporting.
func (h *HealthServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, r, h.checkLiveness())
}

func (h *HealthServer) checkLiveness() HealthStatus {
	status := HealthStatus{
		Status:     "ok",
		Goroutines: make(map[string]bool),
		Checks:     make(map[string]CheckResult),
	}

	if h.shutDown.Load() {
		status.Status = "shutting_down"
		status.Checks["shutdown"] = CheckResult{
			Healthy: false,
			Message: "housekeeper is shutting down",
		}
		return status
	}

	status.Checks["shutdown"] = CheckResult{
		Healthy: true,
		Message: "housekeeper is running",
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	allGoroutinesOK := true
	for name, gs := range h.goroutines {
		isHealthy := gs.running && time.Since(gs.lastCheck) < goroutineStaleAfter
		status.Goroutines[name] = isHealthy
		if !isHealthy {
			allGoroutinesOK = false
		}
	}

	if !allGoroutinesOK {
		status.Status = "degraded"
		status.Checks["goroutines"] = CheckResult{
			Healthy: false,
			Message: "one or more critical goroutines are not running",
		}
	} else if len(h.goroutines) > 0 {
		status.Checks["goroutines"] = CheckResult{
			Healthy: true,
			Message: "all critical goroutines are running",
		}
	}

	return status
}

// CheckHealth returns the current health status without making an HTTP request.
func (h *HealthServer) CheckHealth() HealthStatus {
	return h.checkLiveness()
}

// handleReadyz handles the /readyz readiness endpoint.
// Returns 503 if the server is shutting down or any dependency check fails.
func (h *HealthServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, r, h.checkReadiness(r.Context()))
}

func (h *HealthServer) checkReadiness(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "ok",
		Checks: make(map[string]CheckResult),
	}

	if h.shutDown.Load() {
		status.Status = "shutting_down"
		status.Checks["shutdown"] = CheckResult{
			Healthy: false,
			Message: "housekeeper is shutting down",
		}
		return status
	}

	h.mu.RLock()
	checks := make([]ReadinessChecker, len(h.readinessChecks))
	copy(checks, h.readinessChecks)
	timeout := h.readinessTimeout
	h.mu.RUnlock()

	for _, checker := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := checker.CheckReady(checkCtx)
		cancel()

		if err != nil {
			status.Status = "not_ready"
			status.Checks[checker.Name()] = CheckResult{
				Healthy: false,
				Message: err.Error(),
			}
		} else {
			status.Checks[checker.Name()] = CheckResult{
				Healthy: true,
				Message: "healthy",
			}
		}
	}

	return status
}

// CheckReadiness returns the current readiness status without making an HTTP request.
func (h *HealthServer) CheckReadiness(ctx context.Context) HealthStatus {
	return h.checkReadiness(ctx)
}
