// Package model はドメインモデルを定義する。
package model

import "time"

// ListingKind は掲載情報の種別（イベント / コミュニティ）を表す。
type ListingKind string

const (
	// ListingKindEvent はイベント掲載。
	ListingKindEvent ListingKind = "event"
	// ListingKindCommunity はコミュニティ掲載。
	ListingKindCommunity ListingKind = "community"
)

// Listing はイベントまたはコミュニティの掲載情報を表す。
// 投稿直後はApproved=falseで、管理者が承認するまで公開一覧には表示されない。
type Listing struct {
	ID           string
	Kind         ListingKind
	Name         string
	Date         string // 自由記述の開催日時
	Description  string
	Location     string
	ImageURL     string // 任意。外部メディアホストのURL。
	SiteLink     string // 任意。告知ページ等の外部リンク。
	ContactEmail string
	Approved     bool
	CreatedAt    time.Time
}
