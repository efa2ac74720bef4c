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
// サービス層およびミドルウェアから利用する。
type MetricsCollector interface {
	RecordPostCreated()
	RecordPostDeleted(mode string)
	RecordReportFiled()
	RecordListingSubmitted(kind string)
	RecordListingApproved(kind string)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	postsCreated     prometheus.Counter
	postsDeleted     *prometheus.CounterVec
	reportsFiled     prometheus.Counter
	listingsSubmit   *prometheus.CounterVec
	listingsApproved *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	requestDuration  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boardman_posts_created_total",
			Help: "作成された求人投稿の合計数",
		}),
		postsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardman_posts_deleted_total",
			Help: "削除された求人投稿の合計数（削除経路別）",
		}, []string{"mode"}),
		reportsFiled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boardman_reports_filed_total",
			Help: "受理された通報の合計数",
		}),
		listingsSubmit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardman_listings_submitted_total",
			Help: "投稿された掲載申請の合計数（種別ごと）",
		}, []string{"kind"}),
		listingsApproved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardman_listings_approved_total",
			Help: "承認された掲載の合計数（種別ごと）",
		}, []string{"kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "boardman_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.postsCreated,
		c.postsDeleted,
		c.reportsFiled,
		c.listingsSubmit,
		c.listingsApproved,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordPostCreated は求人投稿の作成を記録する。
func (c *Collector) RecordPostCreated() {
	c.postsCreated.Inc()
}

// RecordPostDeleted は求人投稿の削除を記録する。
// modeは削除経路（owner、id、master、admin）。
func (c *Collector) RecordPostDeleted(mode string) {
	c.postsDeleted.WithLabelValues(mode).Inc()
}

// RecordReportFiled は通報の受理を記録する。
func (c *Collector) RecordReportFiled() {
	c.reportsFiled.Inc()
}

// RecordListingSubmitted は掲載申請の投稿を記録する。
func (c *Collector) RecordListingSubmitted(kind string) {
	c.listingsSubmit.WithLabelValues(kind).Inc()
}

// RecordListingApproved は掲載の承認を記録する。
func (c *Collector) RecordListingApproved(kind string) {
	c.listingsApproved.WithLabelValues(kind).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
