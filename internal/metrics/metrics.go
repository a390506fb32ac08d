package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SnapshotRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_snapshot_requests_total",
		Help: "Total number of /snapshot requests",
	})
	SnapshotDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "territory_snapshot_duration_ms",
		Help:    "Snapshot build and render duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	SnapshotRecords = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "territory_snapshot_records",
		Help:    "Number of active records per snapshot",
		Buckets: []float64{0, 10, 50, 100, 200, 500, 1000, 5000},
	})
	EmptySnapshotsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_empty_snapshots_total",
		Help: "Total number of snapshots without active records",
	})
	InvalidQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_invalid_queries_total",
		Help: "Rejected snapshot queries by reason",
	}, []string{"reason"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_cache_hits_total",
		Help: "Total snapshot cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "territory_cache_misses_total",
		Help: "Total snapshot cache misses",
	})
	IndexRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "territory_index_records",
		Help: "Records in the currently published index",
	})
	ReloadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "territory_reload_total",
		Help: "Corpus reload attempts by result",
	}, []string{"result"})
	ReloadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "territory_reload_duration_ms",
		Help:    "Corpus load and index build duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000},
	})
)

func init() {
	prometheus.MustRegister(SnapshotRequestsTotal)
	prometheus.MustRegister(SnapshotDurationMs)
	prometheus.MustRegister(SnapshotRecords)
	prometheus.MustRegister(EmptySnapshotsTotal)
	prometheus.MustRegister(InvalidQueriesTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(IndexRecords)
	prometheus.MustRegister(ReloadTotal)
	prometheus.MustRegister(ReloadDurationMs)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
