package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/rf433d/internal/pulse"
	"github.com/sweeney/rf433d/internal/status"
	"github.com/sweeney/rf433d/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Broker:           "tcp://192.168.1.200:1883",
		HTTPAddr:         ":8080",
		GPIOChip:         "gpiochip0",
		PinData:          25,
		CaptureTimeoutMs: 5000,
		Repeats:          8,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetState("captured")
	tr.SetCapture(24, "PT2262")
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.State != "captured" {
		t.Errorf("state: got %q, want captured", sj.Status.State)
	}
	if sj.Status.Capture == nil || sj.Status.Capture.Protocol != "PT2262" {
		t.Errorf("capture: got %+v", sj.Status.Capture)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetState("idle")
	tr.SetSlots([]store.Summary{
		{Slot: 1, Name: "gate", PulseCount: 12, Protocol: pulse.ProtocolPT2262},
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	if !strings.Contains(html, "IDLE") {
		t.Error("page missing state")
	}
	if !strings.Contains(html, "gate") {
		t.Error("page missing slot name")
	}
	if !strings.Contains(html, "PT2262") {
		t.Error("page missing protocol")
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}
