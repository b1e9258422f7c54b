// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ストア層・キャッシュ層・HTTP層から利用する。
type MetricsCollector interface {
	ObserveStoreOp(collection, op string, d time.Duration)
	RecordHealedRecords(n int)
	RecordCacheHit(entity string)
	RecordCacheMiss(entity string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	storeOps      *prometheus.CounterVec
	storeLatency  prometheus.Histogram
	healedRecords prometheus.Counter
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_store_ops_total",
			Help: "コレクション・操作種別ごとのストア操作数",
		}, []string{"collection", "op"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatehouse_store_op_seconds",
			Help:    "ストア操作のレイテンシ（疑似遅延込み、秒）",
			Buckets: prometheus.DefBuckets,
		}),
		healedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_records_healed_total",
			Help: "一覧取得時にIDを補修したレコードの合計数",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_list_cache_hits_total",
			Help: "エンティティごとの一覧キャッシュヒット数",
		}, []string{"entity"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_list_cache_misses_total",
			Help: "エンティティごとの一覧キャッシュミス数",
		}, []string{"entity"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.storeOps,
		c.storeLatency,
		c.healedRecords,
		c.cacheHits,
		c.cacheMisses,
		c.httpStatus,
	)

	return c
}

// ObserveStoreOp はストア操作1回分を記録する。
func (c *Collector) ObserveStoreOp(collection, op string, d time.Duration) {
	c.storeOps.WithLabelValues(collection, op).Inc()
	c.storeLatency.Observe(d.Seconds())
}

// RecordHealedRecords はID補修したレコード数を記録する。
func (c *Collector) RecordHealedRecords(n int) {
	c.healedRecords.Add(float64(n))
}

// RecordCacheHit は一覧キャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(entity string) {
	c.cacheHits.WithLabelValues(entity).Inc()
}

// RecordCacheMiss は一覧キャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(entity string) {
	c.cacheMisses.WithLabelValues(entity).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
