// Package cleanup は掲載データの自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超過した求人投稿とイベント/コミュニティ掲載を
// 日次バッチで削除する。公開APIの可視性フィルタとは独立した物理削除であり、
// 期限切れ後もDBに残り続けるデータの保持期間を定める。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob は保持期間を超過した掲載データの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db            Executor
	logger        *slog.Logger
	RetentionDays int // 掲載データの保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は90日。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:            db,
		logger:        logger,
		RetentionDays: 90,
	}
}

// purgeTarget は削除対象のテーブルと経過時間の基準カラム。
type purgeTarget struct {
	table     string
	timestamp string
}

// 削除対象。求人はposted_at、掲載は投稿日時（created_at）を基準にする。
// 通報は対象投稿が消えても監査のために保持し、削除対象に含めない。
var purgeTargets = []purgeTarget{
	{table: "jobs", timestamp: "posted_at"},
	{table: "events", timestamp: "created_at"},
	{table: "community", timestamp: "created_at"},
}

// Run は保持期間を超過した掲載データを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	interval := fmt.Sprintf("%d days", j.RetentionDays)

	var total int64
	for _, target := range purgeTargets {
		// テーブル名・カラム名は上の固定リスト由来であり、外部入力は混入しない
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s < now() - $1::interval`, target.table, target.timestamp)
		result, err := j.db.ExecContext(ctx, query, interval)
		if err != nil {
			j.logger.Error("掲載クリーンアップジョブの実行に失敗しました",
				slog.String("error", err.Error()),
				slog.String("table", target.table),
				slog.Int("retention_days", j.RetentionDays),
			)
			return fmt.Errorf("%sのクリーンアップの実行に失敗: %w", target.table, err)
		}

		deletedCount, err := result.RowsAffected()
		if err != nil {
			j.logger.Error("削除件数の取得に失敗しました",
				slog.String("error", err.Error()),
				slog.String("table", target.table),
			)
			return fmt.Errorf("削除件数の取得に失敗: %w", err)
		}
		total += deletedCount
	}

	duration := time.Since(start)
	j.logger.Info("掲載クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", total),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
