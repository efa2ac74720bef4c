package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/boardman/internal/model"
)

// PostgresListingRepo はPostgreSQLを使用したイベント/コミュニティ掲載リポジトリ。
// eventsテーブルとcommunityテーブルは同一スキーマで、kindにより切り替える。
type PostgresListingRepo struct {
	db *sql.DB
}

// NewPostgresListingRepo はPostgresListingRepoを生成する。
func NewPostgresListingRepo(db *sql.DB) *PostgresListingRepo {
	return &PostgresListingRepo{db: db}
}

// tableFor はkindに対応するテーブル名を返す。
// テーブル名は固定の対応表から引くため、SQLに埋め込んでもインジェクションの余地はない。
func tableFor(kind model.ListingKind) (string, error) {
	switch kind {
	case model.ListingKindEvent:
		return "events", nil
	case model.ListingKindCommunity:
		return "community", nil
	default:
		return "", fmt.Errorf("unknown listing kind: %q", kind)
	}
}

// Create は掲載情報を作成する。
func (r *PostgresListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	table, err := tableFor(listing.Kind)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, name, event_date, description, location,
		                        image_url, site_link, contact_email, approved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		listing.ID, listing.Name, listing.Date, listing.Description, listing.Location,
		nullString(listing.ImageURL), nullString(listing.SiteLink),
		listing.ContactEmail, listing.Approved, listing.CreatedAt,
	); err != nil {
		return fmt.Errorf("掲載情報の作成に失敗しました: %w", err)
	}
	return nil
}

// ListApproved は承認済みかつ掲載期間内の掲載情報を新しい順に返す。
func (r *PostgresListingRepo) ListApproved(ctx context.Context, kind model.ListingKind, window time.Duration) ([]*model.Listing, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, event_date, description, location,
		        image_url, site_link, contact_email, approved, created_at
		 FROM `+table+`
		 WHERE approved = TRUE
		   AND created_at >= now() - $1::interval
		 ORDER BY created_at DESC`,
		intervalString(window),
	)
	if err != nil {
		return nil, fmt.Errorf("掲載一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanListings(rows, kind)
}

// ListAll は承認状態にかかわらずすべての掲載情報を新しい順に返す。
func (r *PostgresListingRepo) ListAll(ctx context.Context, kind model.ListingKind) ([]*model.Listing, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, event_date, description, location,
		        image_url, site_link, contact_email, approved, created_at
		 FROM `+table+`
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("掲載一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanListings(rows, kind)
}

// Approve は指定IDの掲載情報を承認済みにする。冪等。
func (r *PostgresListingRepo) Approve(ctx context.Context, kind model.ListingKind, id string) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET approved = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("掲載情報の承認に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("更新件数の取得に失敗しました: %w", err)
	}
	return affected, nil
}

// Delete は指定IDの掲載情報を削除する。
func (r *PostgresListingRepo) Delete(ctx context.Context, kind model.ListingKind, id string) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("掲載情報の削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return affected, nil
}

// scanListings は複数行をmodel.Listingのスライスに読み取る。
func scanListings(rows *sql.Rows, kind model.ListingKind) ([]*model.Listing, error) {
	var listings []*model.Listing
	for rows.Next() {
		listing := &model.Listing{Kind: kind}
		var imageURL, siteLink sql.NullString

		if err := rows.Scan(
			&listing.ID, &listing.Name, &listing.Date, &listing.Description, &listing.Location,
			&imageURL, &siteLink, &listing.ContactEmail, &listing.Approved, &listing.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("掲載情報の読み取りに失敗しました: %w", err)
		}

		listing.ImageURL = nullStringValue(imageURL)
		listing.SiteLink = nullStringValue(siteLink)
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("掲載情報の走査に失敗しました: %w", err)
	}

	return listings, nil
}

// compile-time interface check
var _ ListingRepository = (*PostgresListingRepo)(nil)
