// Package listing はイベント/コミュニティ掲載の投稿と承認フローの
// ドメインロジックを提供する。
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hitoshi/boardman/internal/model"
	"github.com/hitoshi/boardman/internal/repository"
	"github.com/hitoshi/boardman/internal/security"
)

// MetricsRecorder は掲載情報のドメインメトリクス記録インターフェース。
type MetricsRecorder interface {
	// RecordListingSubmitted は掲載情報の投稿を種別ごとに記録する。
	RecordListingSubmitted(kind string)
	// RecordListingApproved は掲載情報の承認を種別ごとに記録する。
	RecordListingApproved(kind string)
}

// SubmitInput は掲載情報投稿の入力。
// バリデーションタグはgo-playground/validatorで検証される。
type SubmitInput struct {
	Name         string `validate:"required"`
	Date         string `validate:"required"`
	Description  string `validate:"required"`
	Location     string `validate:"required"`
	ImageURL     string `validate:"omitempty,url"`
	SiteLink     string `validate:"omitempty,url"`
	ContactEmail string `validate:"required,email"`
}

// Service はイベント/コミュニティ掲載のサービス層。
// 投稿は常にapproved=falseで保存され、管理者の承認後に公開される。
type Service struct {
	repo      repository.ListingRepository
	sanitizer security.TextSanitizerService
	profanity *security.ProfanityFilter
	validate  *validator.Validate
	metrics   MetricsRecorder
	window    time.Duration
}

// NewService はServiceの新しいインスタンスを生成する。
// windowは公開一覧の掲載期間。metricsはnilを許容する（テスト用）。
func NewService(
	repo repository.ListingRepository,
	sanitizer security.TextSanitizerService,
	profanity *security.ProfanityFilter,
	metrics MetricsRecorder,
	window time.Duration,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		profanity: profanity,
		validate:  validator.New(),
		metrics:   metrics,
		window:    window,
	}
}

// Submit は掲載情報を投稿する。
// 必須項目・メール形式・URL形式を検証し、求人投稿と同じ方針で
// 不適切表現フィルタとサニタイズを適用したうえでapproved=falseで保存する。
func (s *Service) Submit(ctx context.Context, kind model.ListingKind, input SubmitInput) (*model.Listing, error) {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var missing []string
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					missing = append(missing, fe.Field())
				}
			}
			if len(missing) > 0 {
				return nil, model.NewMissingFieldsError(missing)
			}
			return nil, model.NewInvalidRequestError()
		}
		return nil, fmt.Errorf("入力の検証に失敗しました: %w", err)
	}

	if s.profanity != nil && s.profanity.Contains(input.Name, input.Description) {
		return nil, model.NewProfanityRejectedError()
	}

	newListing := &model.Listing{
		ID:           uuid.NewString(),
		Kind:         kind,
		Name:         s.sanitizer.Sanitize(input.Name),
		Date:         s.sanitizer.Sanitize(input.Date),
		Description:  s.sanitizer.Sanitize(input.Description),
		Location:     s.sanitizer.Sanitize(input.Location),
		ImageURL:     input.ImageURL,
		SiteLink:     input.SiteLink,
		ContactEmail: input.ContactEmail,
		Approved:     false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, newListing); err != nil {
		return nil, fmt.Errorf("掲載情報の作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordListingSubmitted(string(kind))
	}
	slog.Info("listing submitted",
		slog.String("listing_id", newListing.ID),
		slog.String("kind", string(kind)),
	)

	return newListing, nil
}

// ListApproved は承認済みかつ掲載期間内の掲載情報を新しい順に返す。
// 公開向けの一覧取得で使用する。
func (s *Service) ListApproved(ctx context.Context, kind model.ListingKind) ([]*model.Listing, error) {
	listings, err := s.repo.ListApproved(ctx, kind, s.window)
	if err != nil {
		return nil, fmt.Errorf("掲載一覧の取得に失敗しました: %w", err)
	}
	return listings, nil
}

// ListAll は承認状態にかかわらずすべての掲載情報を新しい順に返す。
// 管理者専用の一覧取得で使用する。
func (s *Service) ListAll(ctx context.Context, kind model.ListingKind) ([]*model.Listing, error) {
	listings, err := s.repo.ListAll(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("掲載一覧の取得に失敗しました: %w", err)
	}
	return listings, nil
}

// Approve は掲載情報を承認済みにする。
// すでに承認済みの掲載に対しても成功する（冪等）。
// 指定IDの掲載が存在しない場合はLISTING_NOT_FOUNDを返す。
func (s *Service) Approve(ctx context.Context, kind model.ListingKind, id string) error {
	affected, err := s.repo.Approve(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("掲載情報の承認に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewListingNotFoundError(id)
	}

	if s.metrics != nil {
		s.metrics.RecordListingApproved(string(kind))
	}
	slog.Info("listing approved",
		slog.String("listing_id", id),
		slog.String("kind", string(kind)),
	)
	return nil
}

// Deny は掲載情報を削除する。
// 否認と掲載後の削除は同一の操作であり、承認状態にかかわらず実行できる。
func (s *Service) Deny(ctx context.Context, kind model.ListingKind, id string) error {
	affected, err := s.repo.Delete(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("掲載情報の削除に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewListingNotFoundError(id)
	}

	slog.Info("listing denied",
		slog.String("listing_id", id),
		slog.String("kind", string(kind)),
	)
	return nil
}
