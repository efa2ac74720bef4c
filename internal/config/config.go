// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// 削除オーバーライド用のマスター合言葉。
	// 値そのものは決してログに出力しないこと。
	MasterPassphrase string

	// 管理者API用の共有キー。管理者専用エンドポイントで検証する。
	AdminAPIKey string

	// Post lifecycle
	MaxLivePostsPerContact int
	JobVisibilityDays      int
	ListingVisibilityDays  int
	AllowedLocations       []string

	// Retention（物理削除の保持日数。可視性は読み取り時フィルタが正）
	RetentionDays   int
	CleanupInterval time.Duration

	// Rate Limit（IPごと、req/min）
	RateLimitGeneral int
	RateLimitSubmit  int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigins []string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.MasterPassphrase = os.Getenv("MASTER_PASSPHRASE")
	if cfg.MasterPassphrase == "" {
		missing = append(missing, "MASTER_PASSPHRASE")
	}

	cfg.AdminAPIKey = os.Getenv("ADMIN_API_KEY")
	if cfg.AdminAPIKey == "" {
		missing = append(missing, "ADMIN_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.MaxLivePostsPerContact = getEnvInt("MAX_LIVE_POSTS_PER_CONTACT", 2)
	cfg.JobVisibilityDays = getEnvInt("JOB_VISIBILITY_DAYS", 14)
	cfg.ListingVisibilityDays = getEnvInt("LISTING_VISIBILITY_DAYS", 30)
	cfg.AllowedLocations = getEnvList("ALLOWED_LOCATIONS",
		[]string{"Republic", "Kettle Falls", "Colville", "Chewelah"})
	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 90)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSubmit = getEnvInt("RATE_LIMIT_SUBMIT", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS",
		[]string{"http://localhost:5173"})

	return cfg, nil
}

// JobVisibilityWindow は求人投稿の可視期間をDurationで返す。
func (c *Config) JobVisibilityWindow() time.Duration {
	return time.Duration(c.JobVisibilityDays) * 24 * time.Hour
}

// ListingVisibilityWindow はイベント/コミュニティ掲載の可視期間をDurationで返す。
func (c *Config) ListingVisibilityWindow() time.Duration {
	return time.Duration(c.ListingVisibilityDays) * 24 * time.Hour
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの環境変数を文字列スライスとして読み込む。
// 各要素の前後の空白は除去し、空要素は捨てる。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
