package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/boardman/internal/middleware"
	"github.com/hitoshi/boardman/internal/model"
	"github.com/hitoshi/boardman/internal/moderation"
)

// ReportServiceInterface は通報ハンドラーが必要とするサービスインターフェース。
type ReportServiceInterface interface {
	// Report は通報を受け付ける。
	Report(ctx context.Context, jobTitle, contact, reason, reporterIP string) error
	// HasReported は通報が存在するかを返す。
	HasReported(ctx context.Context, jobTitle, contact string) (bool, error)
	// ListReports はすべての通報を新しい順に返す。
	ListReports(ctx context.Context) ([]moderation.ReportInfo, error)
	// RemoveReport は(job_title, contact)の組に一致する通報を削除する。
	RemoveReport(ctx context.Context, jobTitle, contact string) error
}

// ReportHandler は通報のHTTPハンドラー。
type ReportHandler struct {
	service ReportServiceInterface
}

// NewReportHandler はReportHandlerを生成する。
func NewReportHandler(service ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

// fileReportRequest は通報リクエストのボディ。
type fileReportRequest struct {
	Title   string `json:"title"`
	Contact string `json:"contact"`
	Reason  string `json:"reason"`
}

// hasReportedRequest は通報済み確認リクエストのボディ。
type hasReportedRequest struct {
	Title   string `json:"title"`
	Contact string `json:"contact"`
}

// removeReportRequest は通報削除リクエストのボディ。
// 管理画面の通報一覧が返すキーと揃えてsnake_caseを使う。
type removeReportRequest struct {
	JobTitle string `json:"job_title"`
	Contact  string `json:"contact"`
}

// reportResponse は管理者向け通報一覧の1件分のレスポンス。
// 通報者のIPアドレスは含めない。
type reportResponse struct {
	JobTitle   string    `json:"job_title"`
	Contact    string    `json:"contact"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reported_at"`
}

// FileReport は通報の受付を処理する。
// POST /jobs/report
func (h *ReportHandler) FileReport(w http.ResponseWriter, r *http.Request) {
	var req fileReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.Report(r.Context(), req.Title, req.Contact, req.Reason, middleware.ClientIP(r)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// HasReported は通報済みかどうかの確認を処理する。
// POST /jobs/has-been-reported
func (h *ReportHandler) HasReported(w http.ResponseWriter, r *http.Request) {
	var req hasReportedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	reported, err := h.service.HasReported(r.Context(), req.Title, req.Contact)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"hasReported": reported})
}

// ListReports は管理者向けの通報一覧取得を処理する。
// GET /reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]reportResponse, len(reports))
	for i, rep := range reports {
		responses[i] = reportResponse{
			JobTitle:   rep.JobTitle,
			Contact:    rep.Contact,
			Reason:     rep.Reason,
			ReportedAt: rep.ReportedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// RemoveReport は管理者による通報の削除を処理する。
// DELETE /reports
func (h *ReportHandler) RemoveReport(w http.ResponseWriter, r *http.Request) {
	var req removeReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.RemoveReport(r.Context(), req.JobTitle, req.Contact); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Report removed"})
}
