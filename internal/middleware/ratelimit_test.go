package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testRateLimiterConfig はテスト用の小さいバースト設定を返す。
func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    3,
		SubmitRate:      rate.Limit(1.0 / 60.0),
		SubmitBurst:     2,
		CleanupInterval: time.Minute,
	}
}

func TestRateLimiter_SubmitBurstExceededReturns429(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.SubmitMiddleware()(newOKHandler())

	// バースト分は許可される
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	// バースト超過は429
	req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response must include Retry-After header")
	}
}

// レート制限はクライアントIPごとに独立している。
func TestRateLimiter_LimitsArePerClientIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.SubmitMiddleware()(newOKHandler())

	// 1つ目のIPがバーストを使い切る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// 別のIPは影響を受けない
	req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (limits must be per client IP)", w.Code, http.StatusOK)
	}

	if got := rl.SubmitLimiterCount(); got != 2 {
		t.Errorf("SubmitLimiterCount() = %d, want 2", got)
	}
}

// 一般レート制限と投稿レート制限は独立に動作する。
func TestRateLimiter_GeneralAndSubmitAreIndependent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	submitHandler := rl.SubmitMiddleware()(newOKHandler())
	generalHandler := rl.GeneralMiddleware()(newOKHandler())

	// 投稿バーストを使い切る
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/jobs", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		submitHandler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// 一般リクエストはまだ許可される
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	w := httptest.NewRecorder()
	generalHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (general limiter must be independent)", w.Code, http.StatusOK)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	rl.getOrCreateGeneralLimiter("203.0.113.9")
	if got := rl.GeneralLimiterCount(); got != 1 {
		t.Fatalf("GeneralLimiterCount() = %d, want 1", got)
	}

	// 最終アクセス時刻をTTL超過まで巻き戻す
	rl.generalMu.Lock()
	for _, cl := range rl.generalLimiters {
		cl.lastAccess = time.Now().Add(-3 * time.Minute)
	}
	rl.generalMu.Unlock()

	rl.cleanup()

	if got := rl.GeneralLimiterCount(); got != 0 {
		t.Errorf("GeneralLimiterCount() after cleanup = %d, want 0", got)
	}
}

func TestNewRateLimiterConfig_ConvertsPerMinuteRates(t *testing.T) {
	cfg := NewRateLimiterConfig(120, 10, 5*time.Minute)

	if cfg.GeneralRate != rate.Limit(2.0) {
		t.Errorf("GeneralRate = %v, want 2 req/sec", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.SubmitBurst != 10 {
		t.Errorf("SubmitBurst = %d, want 10", cfg.SubmitBurst)
	}
}
