package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestObserveStoreOp_IncrementsCounterAndHistogram はストア操作の記録を検証する。
func TestObserveStoreOp_IncrementsCounterAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveStoreOp("Package", "list", 100*time.Millisecond)
	c.ObserveStoreOp("Package", "list", 2*time.Second)
	c.ObserveStoreOp("Visitor", "create", 50*time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	var opsFound, latencyFound bool
	for _, mf := range metrics {
		switch mf.GetName() {
		case "gatehouse_store_ops_total":
			opsFound = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
		case "gatehouse_store_op_seconds":
			latencyFound = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 3 {
				t.Errorf("sample_count = %d, want 3", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 + 0.05 = 2.15秒
			if h.GetSampleSum() < 2.1 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.15", h.GetSampleSum())
			}
		}
	}
	if !opsFound {
		t.Error("gatehouse_store_ops_total metric not found")
	}
	if !latencyFound {
		t.Error("gatehouse_store_op_seconds metric not found")
	}
}

// TestRecordHealedRecords_AddsCount はID補修カウンタが加算されることを検証する。
func TestRecordHealedRecords_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHealedRecords(3)
	c.RecordHealedRecords(2)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "gatehouse_records_healed_total" {
			found = true
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 5 {
				t.Errorf("records_healed_total = %v, want 5", val)
			}
		}
	}
	if !found {
		t.Error("gatehouse_records_healed_total metric not found")
	}
}

// TestRecordCacheHitMiss_LabeledByEntity はキャッシュカウンタがエンティティ別に増加することを検証する。
func TestRecordCacheHitMiss_LabeledByEntity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCacheHit("Package")
	c.RecordCacheHit("Package")
	c.RecordCacheMiss("Package")
	c.RecordCacheMiss("Visitor")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		switch mf.GetName() {
		case "gatehouse_list_cache_hits_total":
			val := mf.GetMetric()[0].GetCounter().GetValue()
			if val != 2 {
				t.Errorf("cache_hits_total = %v, want 2", val)
			}
		case "gatehouse_list_cache_misses_total":
			if len(mf.GetMetric()) != 2 {
				t.Errorf("expected 2 entity labels, got %d", len(mf.GetMetric()))
			}
		}
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "gatehouse_http_status_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "200":
					if val != 2 {
						t.Errorf("http_status_total{status_code=200} = %v, want 2", val)
					}
				case "404":
					if val != 1 {
						t.Errorf("http_status_total{status_code=404} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("gatehouse_http_status_total metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveStoreOp("Package", "list", 500*time.Millisecond)
	c.RecordCacheHit("Package")
	c.RecordHTTPStatus(200)
	c.RecordHealedRecords(1)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"gatehouse_store_ops_total",
		"gatehouse_store_op_seconds",
		"gatehouse_list_cache_hits_total",
		"gatehouse_http_status_total",
		"gatehouse_records_healed_total",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCacheMiss("Package")

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "gatehouse_list_cache_misses_total") {
		t.Error("response should contain gatehouse_list_cache_misses_total metric")
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}
