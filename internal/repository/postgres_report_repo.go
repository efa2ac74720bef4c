package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/boardman/internal/model"
)

// PostgresReportRepo はPostgreSQLを使用した通報リポジトリ。
type PostgresReportRepo struct {
	db *sql.DB
}

// NewPostgresReportRepo はPostgresReportRepoを生成する。
func NewPostgresReportRepo(db *sql.DB) *PostgresReportRepo {
	return &PostgresReportRepo{db: db}
}

// Exists は(job_title, contact)の組に対する通報が存在するかを返す。
func (r *PostgresReportRepo) Exists(ctx context.Context, jobTitle, contact string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reports WHERE job_title = $1 AND contact = $2)`,
		jobTitle, contact,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("通報の存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Create は通報を作成する。
// 同一の(job_title, contact)に対する同時通報はUNIQUE制約で衝突するため、
// 一意性違反はDUPLICATE_REPORTとして返す。
func (r *PostgresReportRepo) Create(ctx context.Context, report *model.Report) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, job_title, contact, reason, reporter_ip, reported_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.JobTitle, report.Contact, report.Reason,
		nullString(report.ReporterIP), report.ReportedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateReportError()
		}
		return fmt.Errorf("通報の作成に失敗しました: %w", err)
	}
	return nil
}

// isUniqueViolation はPostgreSQLの一意性制約違反（SQLSTATE 23505）かを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// ListAll はすべての通報を新しい順に返す。
func (r *PostgresReportRepo) ListAll(ctx context.Context) ([]*model.Report, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_title, contact, reason, reporter_ip, reported_at
		 FROM reports
		 ORDER BY reported_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("通報一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		report := &model.Report{}
		var reporterIP sql.NullString

		if err := rows.Scan(
			&report.ID, &report.JobTitle, &report.Contact, &report.Reason,
			&reporterIP, &report.ReportedAt,
		); err != nil {
			return nil, fmt.Errorf("通報の読み取りに失敗しました: %w", err)
		}

		report.ReporterIP = nullStringValue(reporterIP)
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("通報の走査に失敗しました: %w", err)
	}

	return reports, nil
}

// DeleteByJobTitleAndContact は(job_title, contact)の組に一致する通報を削除する。
// 一致する通報がなくてもエラーにしない（冪等）。
func (r *PostgresReportRepo) DeleteByJobTitleAndContact(ctx context.Context, jobTitle, contact string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reports WHERE job_title = $1 AND contact = $2`,
		jobTitle, contact,
	)
	if err != nil {
		return 0, fmt.Errorf("通報の削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return affected, nil
}

// compile-time interface check
var _ ReportRepository = (*PostgresReportRepo)(nil)
