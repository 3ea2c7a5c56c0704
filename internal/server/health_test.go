package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serve(h *HealthServer, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, req)
	return w
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var status HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return status
}

func TestHealthServer_Healthz_OK(t *testing.T) {
	h := NewHealthServer(":0", nil)

	w := serve(h, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if status := decodeStatus(t, w); status.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", status.Status)
	}
}

func TestHealthServer_Healthz_ShuttingDown(t *testing.T) {
	h := NewHealthServer(":0", nil)
	h.SetShuttingDown()

	w := serve(h, http.MethodGet, "/healthz")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	status := decodeStatus(t, w)
	if status.Status != "shutting_down" {
		t.Errorf("expected status 'shutting_down', got %q", status.Status)
	}
	if check, ok := status.Checks["shutdown"]; !ok || check.Healthy {
		t.Error("expected shutdown check to be unhealthy")
	}
	if !h.IsShuttingDown() {
		t.Error("expected IsShuttingDown to be true")
	}
}

func TestHealthServer_Healthz_Goroutines(t *testing.T) {
	h := NewHealthServer(":0", nil)
	h.RegisterGoroutine("scheduler")

	if status := h.CheckHealth(); status.Status != "ok" || !status.Goroutines["scheduler"] {
		t.Errorf("expected healthy scheduler, got %+v", status)
	}

	h.UpdateGoroutine("scheduler")
	h.UnregisterGoroutine("scheduler")

	w := serve(h, http.MethodGet, "/healthz")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	status := decodeStatus(t, w)
	if status.Status != "degraded" {
		t.Errorf("expected status 'degraded', got %q", status.Status)
	}
	if status.Goroutines["scheduler"] {
		t.Error("expected scheduler to be reported as not running")
	}
}

func TestHealthServer_Head(t *testing.T) {
	h := NewHealthServer(":0", nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := serve(h, http.MethodHead, path)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusOK, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("%s: expected empty body for HEAD, got %q", path, w.Body.String())
		}
	}
}

func TestHealthServer_MethodNotAllowed(t *testing.T) {
	h := NewHealthServer(":0", nil)

	w := serve(h, http.MethodPost, "/healthz")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestHealthServer_Readyz(t *testing.T) {
	h := NewHealthServer(":0", nil)
	h.RegisterReadinessCheck(NewFuncChecker("document_store", nil))
	h.RegisterReadinessCheck(NewFuncChecker("object_store", func(context.Context) error {
		return errors.New("bucket unreachable")
	}))

	w := serve(h, http.MethodGet, "/readyz")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	status := decodeStatus(t, w)
	if status.Status != "not_ready" {
		t.Errorf("expected status 'not_ready', got %q", status.Status)
	}
	if !status.Checks["document_store"].Healthy {
		t.Error("expected document_store to be healthy")
	}
	if got := status.Checks["object_store"]; got.Healthy || got.Message != "bucket unreachable" {
		t.Errorf("unexpected object_store result: %+v", got)
	}
}

func TestHealthServer_Readyz_ShuttingDown(t *testing.T) {
	h := NewHealthServer(":0", nil)
	h.SetShuttingDown()

	if status := h.CheckReadiness(context.Background()); status.Status != "shutting_down" {
		t.Errorf("expected status 'shutting_down', got %q", status.Status)
	}
}

func TestHealthServer_ReadinessTimeout(t *testing.T) {
	h := NewHealthServer(":0", nil)
	h.SetReadinessTimeout(10 * time.Millisecond)
	h.RegisterReadinessCheck(NewFuncChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	status := h.CheckReadiness(context.Background())
	if status.Status != "not_ready" {
		t.Errorf("expected status 'not_ready', got %q", status.Status)
	}
	if status.Checks["slow"].Message != context.DeadlineExceeded.Error() {
		t.Errorf("unexpected message %q", status.Checks["slow"].Message)
	}
}

func TestHealthServer_StartAndClose(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", nil)
	h.RegisterHandler(http.MethodGet, "/hello", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hi"))
	}))

	if err := h.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.Close(time.Second)

	resp, err := http.Get("http://" + h.Addr() + "/hello")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "hi" {
		t.Errorf("expected body 'hi', got %q", body)
	}

	if err := h.Close(time.Second); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestHealthServer_AddrBeforeStart(t *testing.T) {
	h := NewHealthServer(":9090", nil)
	if h.Addr() != ":9090" {
		t.Errorf("expected configured addr, got %q", h.Addr())
	}
	if err := h.Close(time.Second); err != nil {
		t.Errorf("Close before Start failed: %v", err)
	}
}
