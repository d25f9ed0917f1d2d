package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/set-workshop/config"
)

func newTestServer(t *testing.T) *Server {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: "8080",
		},
		Workshop: config.WorkshopConfig{
			SlotCount:       4,
			AutosaveDelayMS: 60000,
		},
		Layout: config.LayoutConfig{
			MinBPM: 60,
			MaxBPM: 200,
			Height: 640,
		},
		Storage: config.StorageConfig{
			DatabasePath: filepath.Join(t.TempDir(), "test.db"),
		},
	}
	server, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { server.Close() })
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if str, ok := body.(string); ok {
			buf.WriteString(str)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	body := decodeBody(t, rr)
	if body["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", body["status"])
	}
}

func TestGetWorkshop(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, "GET", "/api/v1/workshop", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	body := decodeBody(t, rr)
	snapshot, ok := body["snapshot"].(map[string]interface{})
	if !ok {
		t.Fatal("response has no snapshot")
	}
	state := snapshot["state"].(map[string]interface{})
	slots := state["slots"].([]interface{})
	if len(slots) != 4 {
		t.Errorf("Expected 4 slots, got %d", len(slots))
	}

	groups, ok := body["groups"].([]interface{})
	if !ok {
		t.Fatal("response has no groups")
	}
	if len(groups) != 4 {
		t.Errorf("Expected 4 groups for all-empty slots, got %d", len(groups))
	}
}

func TestSlotOperations(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, "POST", "/api/v1/workshop/slots", InsertSlotRequest{AtIndex: 0})
	if rr.Code != http.StatusOK {
		t.Fatalf("insert: expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := len(server.store.Snapshot().State.Slots); got != 5 {
		t.Errorf("Expected 5 slots after insert, got %d", got)
	}

	rr = doJSON(t, server, "DELETE", "/api/v1/workshop/slots/0", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("remove: expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := len(server.store.Snapshot().State.Slots); got != 4 {
		t.Errorf("Expected 4 slots after remove, got %d", got)
	}

	rr = doJSON(t, server, "DELETE", "/api/v1/workshop/slots/not-a-number", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for bad index, got %d", http.StatusBadRequest, rr.Code)
	}

	before := server.store.Snapshot().State.Slots
	rr = doJSON(t, server, "POST", "/api/v1/workshop/slots/reorder", ReorderSlotRequest{FromIndex: 0, ToIndex: 2})
	if rr.Code != http.StatusOK {
		t.Fatalf("reorder: expected status %d, got %d", http.StatusOK, rr.Code)
	}
	after := server.store.Snapshot().State.Slots
	if after[2].ID != before[0].ID {
		t.Errorf("Expected slot %s at index 2 after reorder, got %s", before[0].ID, after[2].ID)
	}
}

func TestRequestValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:           "invalid json",
			method:         "POST",
			path:           "/api/v1/workshop/slots",
			requestBody:    "not json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "move group without slot ids",
			method:         "POST",
			path:           "/api/v1/workshop/groups/move",
			requestBody:    map[string]interface{}{"toIndex": 1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "assign without source",
			method:         "POST",
			path:           "/api/v1/workshop/slots/some-id/assign",
			requestBody:    map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "save set without name",
			method:         "POST",
			path:           "/api/v1/sets",
			requestBody:    map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "preview without artist",
			method:         "POST",
			path:           "/api/v1/playback/preview",
			requestBody:    map[string]interface{}{"title": "x"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, server, tt.method, tt.path, tt.requestBody)
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestNewSetResetsTimeline(t *testing.T) {
	server := newTestServer(t)

	doJSON(t, server, "POST", "/api/v1/workshop/slots", InsertSlotRequest{AtIndex: 0})
	if got := len(server.store.Snapshot().State.Slots); got != 5 {
		t.Fatalf("Expected 5 slots, got %d", got)
	}

	rr := doJSON(t, server, "POST", "/api/v1/workshop/new", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	snap := server.store.Snapshot()
	if len(snap.State.Slots) != 4 {
		t.Errorf("Expected 4 slots after reset, got %d", len(snap.State.Slots))
	}
	if snap.Dirty {
		t.Error("Expected a fresh set to start clean")
	}
}

func TestLoadWorkshopWithoutSavedState(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, "POST", "/api/v1/workshop/load", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got := len(server.store.Snapshot().State.Slots); got != 4 {
		t.Errorf("Expected a fresh default timeline, got %d slots", got)
	}
}

func TestNoticesReturnAndClear(t *testing.T) {
	server := newTestServer(t)
	server.addNotice("first problem")
	server.addNotice("second problem")

	rr := doJSON(t, server, "GET", "/api/v1/notices", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	body := decodeBody(t, rr)
	notices := body["notices"].([]interface{})
	if len(notices) != 2 {
		t.Errorf("Expected 2 notices, got %d", len(notices))
	}

	rr = doJSON(t, server, "GET", "/api/v1/notices", nil)
	body = decodeBody(t, rr)
	if len(body["notices"].([]interface{})) != 0 {
		t.Error("Expected notices to be cleared after reading")
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest("OPTIONS", "/api/v1/workshop", nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != 204 {
		t.Errorf("Expected status 204 for preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on preflight response")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, "GET", "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
