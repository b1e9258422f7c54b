package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/gatehouse/internal/model"
)

// mockStatusObserver はStatusObserverのモック実装。
type mockStatusObserver struct {
	statuses []int
}

func (m *mockStatusObserver) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func newBufLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(newBufLogger(&buf), nil)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/packages", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not JSON: %v\nraw: %s", err, buf.String())
	}

	if entry["method"] != "POST" {
		t.Errorf("method = %v", entry["method"])
	}
	if entry["path"] != "/api/packages" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("status = %v", entry["status"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms missing")
	}
}

func TestLoggingMiddleware_RecordsStatusToObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := &mockStatusObserver{}
	mw := NewLoggingMiddleware(newBufLogger(&buf), obs)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/packages/missing", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if len(obs.statuses) != 1 || obs.statuses[0] != http.StatusNotFound {
		t.Errorf("statuses = %v, want [404]", obs.statuses)
	}
}

func TestLoggingMiddleware_IncludesOperatorWhenPresent(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(newBufLogger(&buf), nil)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	sess := &model.Session{ID: "emp-1", Name: "田中 太郎"}
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = req.WithContext(ContextWithOperator(req.Context(), sess))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not JSON: %v", err)
	}
	if entry["operator_id"] != "emp-1" {
		t.Errorf("operator_id = %v, want emp-1", entry["operator_id"])
	}
}

func TestLoggingMiddleware_DefaultsStatus200(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(newBufLogger(&buf), nil)

	// WriteHeaderを呼ばないハンドラー
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not JSON: %v", err)
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
}
