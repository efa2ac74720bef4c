// Package job は求人投稿のライフサイクル（作成・一覧・削除・検索）の
// ドメインロジックを提供する。
package job

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/boardman/internal/model"
	"github.com/hitoshi/boardman/internal/repository"
	"github.com/hitoshi/boardman/internal/security"
)

// 一覧取得のページングのデフォルト値と上限。
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// MetricsRecorder は求人ライフサイクルのドメインメトリクス記録インターフェース。
type MetricsRecorder interface {
	// RecordPostCreated は求人投稿の作成を記録する。
	RecordPostCreated()
	// RecordPostDeleted は求人投稿の削除を削除経路（owner/master/id/admin）別に記録する。
	RecordPostDeleted(mode string)
}

// ServiceConfig はServiceの動作設定を保持する。
type ServiceConfig struct {
	// MasterPassphrase は合言葉照合をバイパスする削除オーバーライド用シークレット。
	MasterPassphrase string
	// MaxLivePostsPerContact は正規化済み連絡先ごとの掲載中投稿の上限数。
	MaxLivePostsPerContact int
	// VisibilityWindow は投稿が公開一覧に表示される期間。
	VisibilityWindow time.Duration
	// AllowedLocations は掲載を受け付ける地域名の一覧。
	AllowedLocations []string
}

// Service は求人投稿ライフサイクルのサービス層。
// 作成時のバリデーション、連絡先の正規化、連絡先ごとの掲載数制限、
// 合言葉による削除、期間ベースの可視性フィルタを提供する。
type Service struct {
	repo      repository.JobRepository
	sanitizer security.TextSanitizerService
	profanity *security.ProfanityFilter
	metrics   MetricsRecorder
	config    ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilを許容する（テスト用）。
func NewService(
	repo repository.JobRepository,
	sanitizer security.TextSanitizerService,
	profanity *security.ProfanityFilter,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		profanity: profanity,
		metrics:   metrics,
		config:    config,
	}
}

// CreateInput は求人投稿作成の入力。
// Honeypotは画面上は不可視のフィールドで、実際の利用者は値を入れない。
type CreateInput struct {
	Title            string
	Description      string
	Pay              string
	Location         string
	DateNeeded       time.Time
	Contact          string
	ContactType      string
	DeletePassphrase string
	Honeypot         string
	IPAddress        string
}

// Create は求人投稿を作成する。
// ハニーポット判定 → 必須項目チェック → サニタイズ → 地域チェック →
// 不適切表現チェック → 連絡先正規化 → 掲載数上限チェック付きINSERT の順で処理する。
// 掲載数上限に達している場合はRATE_LIMIT_EXCEEDEDを返し、
// バリデーション失敗とは区別できるようにする。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Job, error) {
	// ハニーポットに値が入っている投稿はボットとして拒否する
	if input.Honeypot != "" {
		slog.Warn("honeypot field populated, rejecting submission",
			slog.String("ip_address", input.IPAddress),
		)
		return nil, model.NewSpamRejectedError()
	}

	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(input.Pay) == "" {
		missing = append(missing, "pay")
	}
	if strings.TrimSpace(input.Location) == "" {
		missing = append(missing, "location")
	}
	if input.DateNeeded.IsZero() {
		missing = append(missing, "dateNeeded")
	}
	if strings.TrimSpace(input.Contact) == "" {
		missing = append(missing, "contact")
	}
	if len(missing) > 0 {
		return nil, model.NewMissingFieldsError(missing)
	}

	title := s.sanitizer.Sanitize(input.Title)
	description := s.sanitizer.Sanitize(input.Description)
	pay := s.sanitizer.Sanitize(input.Pay)
	contact := s.sanitizer.Sanitize(input.Contact)

	if !s.isAllowedLocation(input.Location) {
		return nil, model.NewInvalidLocationError(input.Location)
	}

	if s.profanity != nil && s.profanity.Contains(title, description) {
		return nil, model.NewProfanityRejectedError()
	}

	contactType := input.ContactType
	if contactType != model.ContactTypeEmail {
		contactType = model.ContactTypePhone
	}

	newJob := &model.Job{
		ID:                uuid.NewString(),
		Title:             title,
		Description:       description,
		Pay:               pay,
		Location:          input.Location,
		DateNeeded:        input.DateNeeded,
		Contact:           contact,
		NormalizedContact: NormalizeContact(contact),
		ContactType:       contactType,
		IPAddress:         input.IPAddress,
		DeletePassphrase:  input.DeletePassphrase,
		PostedAt:          time.Now().UTC(),
	}

	created, err := s.repo.CreateWithinContactLimit(
		ctx, newJob, s.config.MaxLivePostsPerContact, s.config.VisibilityWindow,
	)
	if err != nil {
		return nil, fmt.Errorf("求人投稿の作成に失敗しました: %w", err)
	}
	if !created {
		return nil, model.NewRateLimitExceededError(s.config.MaxLivePostsPerContact)
	}

	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}

	slog.Info("job post created",
		slog.String("job_id", newJob.ID),
		slog.String("location", newJob.Location),
	)

	return newJob, nil
}

// List は掲載期間内の求人投稿を新しい順に返す。
// locationが空でない場合は大文字小文字を区別しない完全一致で絞り込む。
// limitが0以下の場合はDefaultListLimit、MaxListLimit超の場合はMaxListLimitに丸める。
func (s *Service) List(ctx context.Context, location string, limit, offset int) ([]*model.Job, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	jobs, err := s.repo.ListLive(ctx, strings.TrimSpace(location), s.config.VisibilityWindow, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("求人一覧の取得に失敗しました: %w", err)
	}

	return jobs, nil
}

// DeleteByCredentials はタイトル・連絡先・合言葉の組で投稿を削除する。
// 合言葉がマスター合言葉と一致する場合は投稿ごとの合言葉を照合せずに削除し、
// 特権オーバーライドとして明示的にログに記録する。
// 削除件数が0の場合は「投稿が存在しない」と「合言葉不一致」を区別せず
// POST_NOT_FOUNDを返す（どちらが誤っているかを漏らさないため）。
func (s *Service) DeleteByCredentials(ctx context.Context, title, contact, passphrase string) error {
	normalizedContact := NormalizeContact(contact)
	sanitizedTitle := s.sanitizer.Sanitize(title)

	// マスター合言葉の照合はタイミングサイドチャネルを避けるため定数時間で行う。
	// 供給された値はログに出力しない。
	if s.config.MasterPassphrase != "" &&
		subtle.ConstantTimeCompare([]byte(passphrase), []byte(s.config.MasterPassphrase)) == 1 {
		affected, err := s.repo.DeleteByTitleAndContact(ctx, sanitizedTitle, normalizedContact)
		if err != nil {
			return fmt.Errorf("求人投稿の削除に失敗しました: %w", err)
		}
		if affected == 0 {
			return model.NewPostNotFoundError()
		}

		slog.Warn("master passphrase override used to delete post",
			slog.String("title", sanitizedTitle),
			slog.Int64("deleted_count", affected),
		)
		if s.metrics != nil {
			s.metrics.RecordPostDeleted("master")
		}
		return nil
	}

	affected, err := s.repo.DeleteByCredentials(ctx, sanitizedTitle, normalizedContact, passphrase)
	if err != nil {
		return fmt.Errorf("求人投稿の削除に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewPostNotFoundError()
	}

	if s.metrics != nil {
		s.metrics.RecordPostDeleted("owner")
	}
	slog.Info("job post deleted by owner",
		slog.String("title", sanitizedTitle),
		slog.Int64("deleted_count", affected),
	)
	return nil
}

// DeleteByID はID指定で投稿を削除する。
// クレデンシャル指定の削除と異なり、「投稿が存在しない」（404）と
// 「合言葉不一致」（403）を区別する。
func (s *Service) DeleteByID(ctx context.Context, id, passphrase string) error {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("求人投稿の取得に失敗しました: %w", err)
	}
	if found == nil {
		return model.NewPostMissingError(id)
	}

	if found.DeletePassphrase != passphrase {
		return model.NewWrongPassphraseError()
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("求人投稿の削除に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPostDeleted("id")
	}
	slog.Info("job post deleted by id", slog.String("job_id", id))
	return nil
}

// SearchByCredentials は連絡先と合言葉の組に一致する投稿を新しい順に返す。
// 投稿者が削除前に自分の投稿を探すための操作。連絡先は正規化してから照合する。
func (s *Service) SearchByCredentials(ctx context.Context, contact, passphrase string) ([]*model.Job, error) {
	jobs, err := s.repo.SearchByCredentials(ctx, NormalizeContact(contact), passphrase)
	if err != nil {
		return nil, fmt.Errorf("求人投稿の検索に失敗しました: %w", err)
	}
	return jobs, nil
}

// AdminDelete はタイトルと連絡先の組に一致する投稿を合言葉の照合なしで削除する。
// 認可は管理者ミドルウェアで実施済みの前提であり、API境界では信頼された
// 呼び出し元からのみ到達する。
func (s *Service) AdminDelete(ctx context.Context, title, contact string) error {
	sanitizedTitle := s.sanitizer.Sanitize(title)

	affected, err := s.repo.DeleteByTitleAndContact(ctx, sanitizedTitle, NormalizeContact(contact))
	if err != nil {
		return fmt.Errorf("求人投稿の削除に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewPostNotFoundError()
	}

	if s.metrics != nil {
		s.metrics.RecordPostDeleted("admin")
	}
	slog.Info("job post deleted by admin",
		slog.String("title", sanitizedTitle),
		slog.Int64("deleted_count", affected),
	)
	return nil
}

// isAllowedLocation は地域名が許可リストに含まれるかを大文字小文字を
// 区別せずに判定する。許可リストが空の場合はすべて許可する。
func (s *Service) isAllowedLocation(location string) bool {
	if len(s.config.AllowedLocations) == 0 {
		return true
	}
	for _, allowed := range s.config.AllowedLocations {
		if strings.EqualFold(allowed, location) {
			return true
		}
	}
	return false
}
