// Package repository はデータ永続化のインターフェースを定義する。
//
// すべてのSQLはパラメータ化クエリで実行し、文字列連結によるクエリ構築は行わない。
// 各操作は§4のサービス操作に1メソッドずつ対応する狭いインターフェースとして定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/boardman/internal/model"
)

// JobRepository は求人投稿の永続化インターフェース。
type JobRepository interface {
	// CreateWithinContactLimit は正規化済み連絡先ごとの掲載数上限を確認したうえで
	// 求人投稿を作成する。カウントとINSERTは同一トランザクション内で
	// アドバイザリロックにより直列化され、同時投稿でも上限超過は発生しない。
	// 上限に達している場合は(false, nil)を返し、投稿は作成しない。
	// windowはカウント対象となる「掲載中」の判定期間。
	CreateWithinContactLimit(ctx context.Context, job *model.Job, maxLive int, window time.Duration) (bool, error)

	// ListLive は掲載期間内の求人投稿を新しい順に取得する。
	// locationが空でない場合は大文字小文字を区別しない完全一致で絞り込む。
	ListLive(ctx context.Context, location string, window time.Duration, limit, offset int) ([]*model.Job, error)

	// FindByID は指定IDの求人投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Job, error)

	// DeleteByID は指定IDの求人投稿を削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByCredentials はタイトル・正規化済み連絡先・合言葉がすべて一致する
	// 投稿を削除し、削除件数を返す。
	DeleteByCredentials(ctx context.Context, title, normalizedContact, passphrase string) (int64, error)

	// DeleteByTitleAndContact はタイトルと正規化済み連絡先が一致する投稿を
	// 合言葉の照合なしで削除し、削除件数を返す。
	// マスター合言葉オーバーライドおよび管理者削除で使用する。
	DeleteByTitleAndContact(ctx context.Context, title, normalizedContact string) (int64, error)

	// SearchByCredentials は正規化済み連絡先と合言葉が一致する投稿を
	// 新しい順にすべて返す。投稿者が自分の投稿を探すために使用する。
	SearchByCredentials(ctx context.Context, normalizedContact, passphrase string) ([]*model.Job, error)
}

// ReportRepository は通報の永続化インターフェース。
type ReportRepository interface {
	// Exists は(job_title, contact)の組に対する通報が存在するかを返す。
	Exists(ctx context.Context, jobTitle, contact string) (bool, error)

	// Create は通報を作成する。
	Create(ctx context.Context, report *model.Report) error

	// ListAll はすべての通報を新しい順に返す。
	ListAll(ctx context.Context) ([]*model.Report, error)

	// DeleteByJobTitleAndContact は(job_title, contact)の組に一致する通報を削除し、
	// 削除件数を返す。一致する通報がなくてもエラーにしない（冪等）。
	DeleteByJobTitleAndContact(ctx context.Context, jobTitle, contact string) (int64, error)
}

// ListingRepository はイベント/コミュニティ掲載の永続化インターフェース。
// kindによりeventsテーブルとcommunityテーブルを切り替える。
type ListingRepository interface {
	// Create は掲載情報をapproved=falseで作成する。
	Create(ctx context.Context, listing *model.Listing) error

	// ListApproved は承認済みかつ掲載期間内の掲載情報を新しい順に返す。
	ListApproved(ctx context.Context, kind model.ListingKind, window time.Duration) ([]*model.Listing, error)

	// ListAll は承認状態にかかわらずすべての掲載情報を新しい順に返す。
	// 管理者用の一覧取得で使用する。
	ListAll(ctx context.Context, kind model.ListingKind) ([]*model.Listing, error)

	// Approve は指定IDの掲載情報を承認済みにし、更新件数を返す。
	// すでに承認済みでも更新件数1を返す（冪等）。
	Approve(ctx context.Context, kind model.ListingKind, id string) (int64, error)

	// Delete は指定IDの掲載情報を削除し、削除件数を返す。
	// 否認（deny）と掲載後の削除は同一の操作。
	Delete(ctx context.Context, kind model.ListingKind, id string) (int64, error)
}
