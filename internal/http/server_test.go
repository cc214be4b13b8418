package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"connectdj/internal/core"
)

// NewServer registers collectors with the global prometheus registry, so the
// server is constructed exactly once for the whole test binary.
func TestServer(t *testing.T) {
	config := &core.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	server := NewServer(config, zap.NewNop())

	metrics := server.GetMetrics()
	if metrics == nil {
		t.Fatal("GetMetrics() returned nil")
	}

	// The metrics surface doubles as the core instrumentation interface.
	var _ core.Metrics = metrics

	metrics.ObserveRemoteCall("release", "ok", 120*time.Millisecond)
	metrics.ObserveMediaLookup("ok")
	metrics.RecordSession("single", "completed")
	metrics.ActiveSessions.Inc()
	metrics.ActiveSessions.Dec()

	ts := httptest.NewServer(server.server.Handler)
	defer ts.Close()

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, expected %d", resp.StatusCode, http.StatusOK)
		}

		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), `"status":"ok"`) {
			t.Errorf("body = %s, expected ok status", body)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics failed: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		for _, metric := range []string{
			"connectdj_remote_calls_total",
			"connectdj_media_lookups_total",
			"connectdj_sessions_total",
		} {
			if !strings.Contains(string(body), metric) {
				t.Errorf("metrics output missing %s", metric)
			}
		}
	})
}
