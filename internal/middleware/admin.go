package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/hitoshi/boardman/internal/model"
)

// AdminKeyHeader は管理者専用エンドポイントで検証するHTTPヘッダー名。
const AdminKeyHeader = "X-Admin-Key"

// NewAdminAuthMiddleware は管理者専用エンドポイントを保護するミドルウェアを返す。
// クライアント側のゲート（画面遷移の隠しボタン等）はセキュリティ境界にならないため、
// 管理者限定の変更操作はすべてサーバー側でこのミドルウェアにより検証する。
// 照合はタイミングサイドチャネルを避けるため定数時間で行い、
// 供給されたキーの値はログに出力しない。
func NewAdminAuthMiddleware(adminKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(AdminKeyHeader)
			if supplied == "" ||
				subtle.ConstantTimeCompare([]byte(supplied), []byte(adminKey)) != 1 {
				slog.Warn("admin endpoint access denied",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("client_ip", ClientIP(r)),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
