package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/boardman/internal/model"
)

// PostgresJobRepo はPostgreSQLを使用した求人投稿リポジトリ。
type PostgresJobRepo struct {
	db *sql.DB
}

// NewPostgresJobRepo はPostgresJobRepoを生成する。
func NewPostgresJobRepo(db *sql.DB) *PostgresJobRepo {
	return &PostgresJobRepo{db: db}
}

// jobColumns はSELECT句で取得するカラムの並び。scanJobと対応を保つこと。
const jobColumns = `id, title, description, pay, location, date_needed,
	        contact, normalized_contact, contact_type, ip_address,
	        delete_passphrase, posted_at`

// CreateWithinContactLimit は連絡先ごとの掲載数上限を確認したうえで求人投稿を作成する。
// pg_advisory_xact_lockで正規化済み連絡先ごとに直列化するため、
// 同時投稿が重なっても上限を超えることはない。
// 上限に達している場合は(false, nil)を返す。
func (r *PostgresJobRepo) CreateWithinContactLimit(ctx context.Context, job *model.Job, maxLive int, window time.Duration) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// 正規化済み連絡先単位のアドバイザリロック。トランザクション終了時に自動解放される。
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		job.NormalizedContact,
	); err != nil {
		return false, fmt.Errorf("アドバイザリロックの取得に失敗しました: %w", err)
	}

	// 掲載中（可視期間内）の投稿のみをカウントする。
	// 期限切れの投稿は枠を消費しない。
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs
		 WHERE normalized_contact = $1
		   AND posted_at >= now() - $2::interval`,
		job.NormalizedContact, intervalString(window),
	).Scan(&count); err != nil {
		return false, fmt.Errorf("掲載数のカウントに失敗しました: %w", err)
	}

	if count >= maxLive {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO jobs (id, title, description, pay, location, date_needed,
		                   contact, normalized_contact, contact_type, ip_address,
		                   delete_passphrase, posted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID, job.Title, job.Description, job.Pay, job.Location, job.DateNeeded,
		job.Contact, job.NormalizedContact, job.ContactType, nullString(job.IPAddress),
		job.DeletePassphrase, job.PostedAt,
	); err != nil {
		return false, fmt.Errorf("求人投稿の作成に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return true, nil
}

// ListLive は掲載期間内の求人投稿を新しい順に取得する。
func (r *PostgresJobRepo) ListLive(ctx context.Context, location string, window time.Duration, limit, offset int) ([]*model.Job, error) {
	var rows *sql.Rows
	var err error

	if location != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+jobColumns+`
			 FROM jobs
			 WHERE LOWER(location) = LOWER($1)
			   AND posted_at >= now() - $2::interval
			 ORDER BY posted_at DESC
			 LIMIT $3 OFFSET $4`,
			location, intervalString(window), limit, offset,
		)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+jobColumns+`
			 FROM jobs
			 WHERE posted_at >= now() - $1::interval
			 ORDER BY posted_at DESC
			 LIMIT $2 OFFSET $3`,
			intervalString(window), limit, offset,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// FindByID は指定IDの求人投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindByID(ctx context.Context, id string) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`,
		id,
	)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("求人投稿の取得に失敗しました: %w", err)
	}

	return job, nil
}

// DeleteByID は指定IDの求人投稿を削除する。
func (r *PostgresJobRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = $1`,
		id,
	); err != nil {
		return fmt.Errorf("求人投稿の削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByCredentials はタイトル・正規化済み連絡先・合言葉がすべて一致する投稿を削除する。
func (r *PostgresJobRepo) DeleteByCredentials(ctx context.Context, title, normalizedContact, passphrase string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM jobs
		 WHERE title = $1 AND normalized_contact = $2 AND delete_passphrase = $3`,
		title, normalizedContact, passphrase,
	)
	if err != nil {
		return 0, fmt.Errorf("求人投稿の削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return affected, nil
}

// DeleteByTitleAndContact はタイトルと正規化済み連絡先が一致する投稿を
// 合言葉の照合なしで削除する。
func (r *PostgresJobRepo) DeleteByTitleAndContact(ctx context.Context, title, normalizedContact string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE title = $1 AND normalized_contact = $2`,
		title, normalizedContact,
	)
	if err != nil {
		return 0, fmt.Errorf("求人投稿の削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return affected, nil
}

// SearchByCredentials は正規化済み連絡先と合言葉が一致する投稿を新しい順に返す。
func (r *PostgresJobRepo) SearchByCredentials(ctx context.Context, normalizedContact, passphrase string) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs
		 WHERE normalized_contact = $1 AND delete_passphrase = $2
		 ORDER BY posted_at DESC`,
		normalizedContact, passphrase,
	)
	if err != nil {
		return nil, fmt.Errorf("求人投稿の検索に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// rowScanner はsql.Rowとsql.Rowsに共通するScanインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanJob は1行をmodel.Jobに読み取る。jobColumnsの並びと対応する。
func scanJob(row rowScanner) (*model.Job, error) {
	job := &model.Job{}
	var ipAddress sql.NullString

	if err := row.Scan(
		&job.ID, &job.Title, &job.Description, &job.Pay, &job.Location, &job.DateNeeded,
		&job.Contact, &job.NormalizedContact, &job.ContactType, &ipAddress,
		&job.DeletePassphrase, &job.PostedAt,
	); err != nil {
		return nil, err
	}

	job.IPAddress = nullStringValue(ipAddress)
	return job, nil
}

// scanJobs は複数行をmodel.Jobのスライスに読み取る。
func scanJobs(rows *sql.Rows) ([]*model.Job, error) {
	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("求人投稿の読み取りに失敗しました: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("求人投稿の走査に失敗しました: %w", err)
	}

	return jobs, nil
}

// intervalString はDurationをPostgreSQLのinterval文字列に変換する。
func intervalString(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int64(d.Seconds()))
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ JobRepository = (*PostgresJobRepo)(nil)
