package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/boardman/internal/metrics"
	"github.com/hitoshi/boardman/internal/middleware"
	"github.com/hitoshi/boardman/internal/model"
)

// HealthChecker はヘルスチェックで疎通確認する依存のインターフェース。
// *sql.DBがこれを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger             *slog.Logger
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter
	AdminAPIKey        string

	// 観測性
	Metrics  middleware.HTTPMetricsRecorder // nil可
	Gatherer prometheus.Gatherer            // nil可。nilの場合/metricsは公開しない

	// ヘルスチェック
	DB HealthChecker // nil可。nilの場合/healthはDB疎通を確認しない

	// サービス
	JobService     JobServiceInterface
	ReportService  ReportServiceInterface
	ListingService ListingServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RateLimit(General)
//
// /healthと/metricsはレート制限の外に配置する。
// 管理者専用のルートはすべてAdminAuthミドルウェアで保護する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.AdminKeyHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	jobHandler := NewJobHandler(deps.JobService)
	reportHandler := NewReportHandler(deps.ReportService)
	eventHandler := NewListingHandler(deps.ListingService, model.ListingKindEvent)
	communityHandler := NewListingHandler(deps.ListingService, model.ListingKindCommunity)

	// --- 運用エンドポイント（レート制限の外） ---

	r.Get("/health", newHealthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 公開API ---
	// ミドルウェアスタック: RateLimit(General)、書き込み系はRateLimit(Submit)を追加
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())
		submitLimit := deps.RateLimiter.SubmitMiddleware()

		// 求人投稿
		// 管理者専用のDELETE /jobs/admin-deleteと同一ツリーに共存させるため、
		// サブルーターにはマウントせずフラットに登録する。
		r.Get("/jobs", jobHandler.ListJobs)
		r.With(submitLimit).Post("/jobs", jobHandler.CreateJob)
		r.Post("/jobs/delete", jobHandler.DeleteJobByCredentials)
		r.Post("/jobs/search-by-passphrase", jobHandler.SearchJobs)
		r.With(submitLimit).Post("/jobs/report", reportHandler.FileReport)
		r.Post("/jobs/has-been-reported", reportHandler.HasReported)
		r.Delete("/jobs/{id}", jobHandler.DeleteJobByID)

		// イベント/コミュニティ掲載（公開側）
		r.Get("/events", eventHandler.ListApproved)
		r.With(submitLimit).Post("/events", eventHandler.Submit)
		r.Get("/community", communityHandler.ListApproved)
		r.With(submitLimit).Post("/community", communityHandler.Submit)

		// --- 管理者専用API ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAdminAuthMiddleware(deps.AdminAPIKey))

			r.Get("/reports", reportHandler.ListReports)
			r.Delete("/reports", reportHandler.RemoveReport)
			r.Delete("/jobs/admin-delete", jobHandler.AdminDeleteJob)

			r.Get("/events/all", eventHandler.ListAll)
			r.Patch("/events/approve/{id}", eventHandler.Approve)
			r.Delete("/events/{id}", eventHandler.Deny)

			r.Get("/community/all", communityHandler.ListAll)
			r.Patch("/community/approve/{id}", communityHandler.Approve)
			r.Delete("/community/{id}", communityHandler.Deny)
		})
	})

	return r
}

// newHealthHandler はヘルスチェックのハンドラーを返す。
// DBが渡されている場合は疎通確認まで行う。
func newHealthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
