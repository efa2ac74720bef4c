package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/boardman/internal/model"
	"github.com/hitoshi/boardman/internal/security"
)

// --- モック定義 ---

// mockReportRepo はrepository.ReportRepositoryのモック実装。
type mockReportRepo struct {
	existsFn                    func(ctx context.Context, jobTitle, contact string) (bool, error)
	createFn                    func(ctx context.Context, report *model.Report) error
	listAllFn                   func(ctx context.Context) ([]*model.Report, error)
	deleteByJobTitleAndContactF func(ctx context.Context, jobTitle, contact string) (int64, error)
}

func (m *mockReportRepo) Exists(ctx context.Context, jobTitle, contact string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, jobTitle, contact)
	}
	return false, nil
}

func (m *mockReportRepo) Create(ctx context.Context, report *model.Report) error {
	if m.createFn != nil {
		return m.createFn(ctx, report)
	}
	return nil
}

func (m *mockReportRepo) ListAll(ctx context.Context) ([]*model.Report, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockReportRepo) DeleteByJobTitleAndContact(ctx context.Context, jobTitle, contact string) (int64, error) {
	if m.deleteByJobTitleAndContactF != nil {
		return m.deleteByJobTitleAndContactF(ctx, jobTitle, contact)
	}
	return 0, nil
}

func newTestService(repo *mockReportRepo) *Service {
	return NewService(repo, security.NewTextSanitizer(), nil)
}

// --- Report テスト ---

func TestService_Report_Success(t *testing.T) {
	var captured *model.Report
	repo := &mockReportRepo{
		createFn: func(ctx context.Context, report *model.Report) error {
			captured = report
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.Report(context.Background(), "Fence repair", "john@email.com", "scam posting", "203.0.113.9")
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}

	if captured == nil {
		t.Fatal("repository Create was not called")
	}
	if captured.ID == "" {
		t.Error("report must have a generated ID")
	}
	if captured.ReporterIP != "203.0.113.9" {
		t.Errorf("ReporterIP = %q, want %q", captured.ReporterIP, "203.0.113.9")
	}
	if captured.ReportedAt.IsZero() {
		t.Error("ReportedAt must be set by the server")
	}
}

func TestService_Report_Duplicate(t *testing.T) {
	createCalled := false
	repo := &mockReportRepo{
		existsFn: func(ctx context.Context, jobTitle, contact string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, report *model.Report) error {
			createCalled = true
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.Report(context.Background(), "Fence repair", "john@email.com", "scam", "203.0.113.9")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateReport {
		t.Fatalf("error code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateReport)
	}
	if createCalled {
		t.Error("duplicate report must not create a new record")
	}
}

// 存在確認と作成の間に別の通報が割り込んだ場合、リポジトリは一意性制約の
// 衝突をDUPLICATE_REPORTとして返す。サービス層はこれをそのまま呼び出し元に
// 伝搬し、内部エラー扱いにしない。
func TestService_Report_ConcurrentDuplicate(t *testing.T) {
	repo := &mockReportRepo{
		existsFn: func(ctx context.Context, jobTitle, contact string) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, report *model.Report) error {
			return model.NewDuplicateReportError()
		},
	}
	svc := newTestService(repo)

	err := svc.Report(context.Background(), "Fence repair", "john@email.com", "scam", "203.0.113.9")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateReport {
		t.Fatalf("error code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateReport)
	}
}

func TestService_Report_SanitizesReason(t *testing.T) {
	var captured *model.Report
	repo := &mockReportRepo{
		createFn: func(ctx context.Context, report *model.Report) error {
			captured = report
			return nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Report(context.Background(), "Fence repair", "john@email.com", "<b>scam</b> posting", "203.0.113.9"); err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if captured.Reason != "scam posting" {
		t.Errorf("Reason = %q, want HTML stripped %q", captured.Reason, "scam posting")
	}
}

// --- HasReported テスト ---

func TestService_HasReported(t *testing.T) {
	repo := &mockReportRepo{
		existsFn: func(ctx context.Context, jobTitle, contact string) (bool, error) {
			return jobTitle == "Fence repair", nil
		},
	}
	svc := newTestService(repo)

	reported, err := svc.HasReported(context.Background(), "Fence repair", "john@email.com")
	if err != nil {
		t.Fatalf("HasReported returned error: %v", err)
	}
	if !reported {
		t.Error("HasReported = false, want true")
	}

	reported, err = svc.HasReported(context.Background(), "Other job", "john@email.com")
	if err != nil {
		t.Fatalf("HasReported returned error: %v", err)
	}
	if reported {
		t.Error("HasReported = true, want false")
	}
}

// --- ListReports テスト ---

// 通報一覧は通報者のIPアドレスを含まない。
func TestService_ListReports_ExcludesReporterIP(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockReportRepo{
		listAllFn: func(ctx context.Context) ([]*model.Report, error) {
			return []*model.Report{
				{ID: "r1", JobTitle: "Fence repair", Contact: "john@email.com", Reason: "scam", ReporterIP: "203.0.113.9", ReportedAt: now},
			}, nil
		},
	}
	svc := newTestService(repo)

	reports, err := svc.ListReports(context.Background())
	if err != nil {
		t.Fatalf("ListReports returned error: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}

	got := reports[0]
	if got.JobTitle != "Fence repair" || got.Contact != "john@email.com" || got.Reason != "scam" {
		t.Errorf("unexpected report projection: %+v", got)
	}
	if !got.ReportedAt.Equal(now) {
		t.Errorf("ReportedAt = %v, want %v", got.ReportedAt, now)
	}
}

// --- RemoveReport テスト ---

func TestService_RemoveReport_Idempotent(t *testing.T) {
	repo := &mockReportRepo{
		deleteByJobTitleAndContactF: func(ctx context.Context, jobTitle, contact string) (int64, error) {
			return 0, nil
		},
	}
	svc := newTestService(repo)

	// 一致する通報がなくてもエラーにならない
	if err := svc.RemoveReport(context.Background(), "Fence repair", "john@email.com"); err != nil {
		t.Fatalf("RemoveReport must be idempotent, got error: %v", err)
	}
}
