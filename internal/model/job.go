// Package model はドメインモデルを定義する。
package model

import "time"

// Job は求人投稿を表す。
// 合言葉（DeletePassphrase）は投稿者が削除時に提示する低保証の共有シークレットであり、
// 認証情報としては扱わない。
type Job struct {
	ID                string
	Title             string
	Description       string
	Pay               string // 自由記述（例: "20 (Hourly)"）
	Location          string
	DateNeeded        time.Time
	Contact           string // 投稿されたままの連絡先（電話またはメール）
	NormalizedContact string // 重複判定・検索キー用の正規化済み連絡先
	ContactType       string // "phone" または "email"
	IPAddress         string // ベストエフォートで取得した投稿元IP
	DeletePassphrase  string
	PostedAt          time.Time // サーバー側で付与。以後不変。
}

// ContactType の取りうる値。
const (
	ContactTypePhone = "phone"
	ContactTypeEmail = "email"
)
