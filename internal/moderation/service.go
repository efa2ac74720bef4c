// Package moderation は求人投稿に対する通報の受付と管理のドメインロジックを提供する。
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/boardman/internal/model"
	"github.com/hitoshi/boardman/internal/repository"
	"github.com/hitoshi/boardman/internal/security"
)

// MetricsRecorder は通報のドメインメトリクス記録インターフェース。
type MetricsRecorder interface {
	// RecordReportFiled は通報の受付を記録する。
	RecordReportFiled()
}

// ReportInfo は管理者向け通報一覧の1件分を表す。
// 通報者のIPアドレスは意図的に含めない（閲覧APIに公開しないため）。
type ReportInfo struct {
	JobTitle   string
	Contact    string
	Reason     string
	ReportedAt time.Time
}

// Service は通報管理のサービス層。
// (job_title, contact)の組につき1件の通報のみを受け付ける。
type Service struct {
	repo      repository.ReportRepository
	sanitizer security.TextSanitizerService
	metrics   MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilを許容する（テスト用）。
func NewService(
	repo repository.ReportRepository,
	sanitizer security.TextSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Report は通報を受け付ける。
// 同じ(job_title, contact)の組に対する通報がすでに存在する場合は
// DUPLICATE_REPORTを返し、既存の通報は更新しない。
func (s *Service) Report(ctx context.Context, jobTitle, contact, reason, reporterIP string) error {
	exists, err := s.repo.Exists(ctx, jobTitle, contact)
	if err != nil {
		return fmt.Errorf("通報の存在確認に失敗しました: %w", err)
	}
	if exists {
		return model.NewDuplicateReportError()
	}

	report := &model.Report{
		ID:         uuid.NewString(),
		JobTitle:   jobTitle,
		Contact:    contact,
		Reason:     s.sanitizer.Sanitize(reason),
		ReporterIP: reporterIP,
		ReportedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return fmt.Errorf("通報の作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordReportFiled()
	}
	slog.Info("report filed",
		slog.String("job_title", jobTitle),
	)
	return nil
}

// HasReported は(job_title, contact)の組に対する通報が存在するかを返す。
// クライアントが「通報済み」のUI状態を表示するために使用するが、
// 重複通報の拒否はReport側が正となる。
func (s *Service) HasReported(ctx context.Context, jobTitle, contact string) (bool, error) {
	exists, err := s.repo.Exists(ctx, jobTitle, contact)
	if err != nil {
		return false, fmt.Errorf("通報の存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ListReports はすべての通報を新しい順に返す。
// 通報者のIPアドレスはこの読み取りパスには決して含めない。
func (s *Service) ListReports(ctx context.Context) ([]ReportInfo, error) {
	reports, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("通報一覧の取得に失敗しました: %w", err)
	}

	results := make([]ReportInfo, len(reports))
	for i, r := range reports {
		results[i] = ReportInfo{
			JobTitle:   r.JobTitle,
			Contact:    r.Contact,
			Reason:     r.Reason,
			ReportedAt: r.ReportedAt,
		}
	}
	return results, nil
}

// RemoveReport は(job_title, contact)の組に一致する通報を削除する。
// 一致する通報がなくてもエラーにしない（冪等）。
// 対象の投稿が削除されていても通報の削除は独立して行える。
func (s *Service) RemoveReport(ctx context.Context, jobTitle, contact string) error {
	affected, err := s.repo.DeleteByJobTitleAndContact(ctx, jobTitle, contact)
	if err != nil {
		return fmt.Errorf("通報の削除に失敗しました: %w", err)
	}

	slog.Info("report removed",
		slog.String("job_title", jobTitle),
		slog.Int64("deleted_count", affected),
	)
	return nil
}
