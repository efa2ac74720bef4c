// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP はリクエストの送信元IPアドレスをベストエフォートで取得する。
// リバースプロキシ経由の場合はX-Forwarded-Forの先頭ホップを採用し、
// ポートサフィックスは取り除く。取得できない場合は空文字列を返す。
// プロキシヘッダーは偽装可能なため、この値は記録用であり認可判断には使わない。
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		return stripPort(first)
	}
	return stripPort(r.RemoteAddr)
}

// stripPort は"host:port"形式からポート部分を取り除く。
// ポートが付いていない場合はそのまま返す。
func stripPort(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
