// Package model はドメインモデルを定義する。
package model

import "time"

// Report は求人投稿に対する通報を表す。
// JobTitleとContactは外部キーではなく非正規化された参照であり、
// 対象の投稿が削除されても通報は残る（逆も同様）。
type Report struct {
	ID         string
	JobTitle   string
	Contact    string
	Reason     string
	ReporterIP string // ベストエフォートで取得。閲覧APIには公開しない。
	ReportedAt time.Time
}
