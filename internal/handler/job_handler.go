// Package handler はHTTP APIハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/boardman/internal/job"
	"github.com/hitoshi/boardman/internal/middleware"
	"github.com/hitoshi/boardman/internal/model"
)

// 日付フィールドのフォーマット。
const (
	// dateInputFormat は投稿リクエストのdateNeededが従う形式。
	dateInputFormat = "2006-01-02"
	// dateDisplayFormat は一覧レスポンスの日付表示形式（例: "July 4, 2025"）。
	dateDisplayFormat = "January 2, 2006"
)

// JobServiceInterface は求人ハンドラーが必要とするサービスインターフェース。
type JobServiceInterface interface {
	// Create は求人投稿を作成する。
	Create(ctx context.Context, input job.CreateInput) (*model.Job, error)
	// List は掲載期間内の求人投稿を新しい順に返す。
	List(ctx context.Context, location string, limit, offset int) ([]*model.Job, error)
	// DeleteByCredentials はタイトル・連絡先・合言葉の組で投稿を削除する。
	DeleteByCredentials(ctx context.Context, title, contact, passphrase string) error
	// DeleteByID はID指定で投稿を削除する。
	DeleteByID(ctx context.Context, id, passphrase string) error
	// SearchByCredentials は連絡先と合言葉の組に一致する投稿を返す。
	SearchByCredentials(ctx context.Context, contact, passphrase string) ([]*model.Job, error)
	// AdminDelete はタイトルと連絡先の組に一致する投稿を削除する。
	AdminDelete(ctx context.Context, title, contact string) error
}

// JobHandler は求人投稿のHTTPハンドラー。
type JobHandler struct {
	service JobServiceInterface
}

// NewJobHandler はJobHandlerを生成する。
func NewJobHandler(service JobServiceInterface) *JobHandler {
	return &JobHandler{service: service}
}

// createJobRequest は求人投稿リクエストのボディ。
// websiteはハニーポットフィールドで、実際の利用者は値を入れない。
type createJobRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Pay              string `json:"pay"`
	Location         string `json:"location"`
	DateNeeded       string `json:"dateNeeded"`
	Contact          string `json:"contact"`
	ContactType      string `json:"contactType"`
	DeletePassphrase string `json:"deletePassPhrase"`
	Website          string `json:"website"`
}

// deleteJobRequest はクレデンシャル指定削除リクエストのボディ。
type deleteJobRequest struct {
	Title            string `json:"title"`
	Contact          string `json:"contact"`
	DeletePassphrase string `json:"deletePassPhrase"`
}

// deleteJobByIDRequest はID指定削除リクエストのボディ。
type deleteJobByIDRequest struct {
	Passphrase string `json:"passphrase"`
}

// searchJobsRequest は投稿検索リクエストのボディ。
type searchJobsRequest struct {
	Contact          string `json:"contact"`
	DeletePassphrase string `json:"deletePassPhrase"`
}

// adminDeleteJobRequest は管理者削除リクエストのボディ。
type adminDeleteJobRequest struct {
	Title   string `json:"title"`
	Contact string `json:"contact"`
}

// jobResponse は求人投稿のAPIレスポンス。
// 合言葉と投稿元IPは決して含めない。
type jobResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Pay         string `json:"pay"`
	Location    string `json:"location"`
	DateNeeded  string `json:"dateNeeded"`
	Contact     string `json:"contact"`
	ContactType string `json:"contactType"`
	PostedAt    string `json:"postedAt"`
}

// messageResponse は操作成功時のメッセージレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// CreateJob は求人投稿の作成を処理する。
// POST /jobs
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	var dateNeeded time.Time
	if req.DateNeeded != "" {
		parsed, err := time.Parse(dateInputFormat, req.DateNeeded)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
			return
		}
		dateNeeded = parsed
	}

	created, err := h.service.Create(r.Context(), job.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Pay:              req.Pay,
		Location:         req.Location,
		DateNeeded:       dateNeeded,
		Contact:          req.Contact,
		ContactType:      req.ContactType,
		DeletePassphrase: req.DeletePassphrase,
		Honeypot:         req.Website,
		IPAddress:        middleware.ClientIP(r),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toJobResponse(created))
}

// ListJobs は掲載期間内の求人一覧を取得する。
// GET /jobs?limit=&offset=&location=
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	location := r.URL.Query().Get("location")

	jobs, err := h.service.List(r.Context(), location, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		responses[i] = toJobResponse(j)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// DeleteJobByCredentials はタイトル・連絡先・合言葉の組による削除を処理する。
// POST /jobs/delete
func (h *JobHandler) DeleteJobByCredentials(w http.ResponseWriter, r *http.Request) {
	var req deleteJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.DeleteByCredentials(r.Context(), req.Title, req.Contact, req.DeletePassphrase); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Post deleted successfully."})
}

// DeleteJobByID はID指定の削除を処理する。
// DELETE /jobs/{id}
func (h *JobHandler) DeleteJobByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req deleteJobByIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.DeleteByID(r.Context(), id, req.Passphrase); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Job post deleted successfully"})
}

// SearchJobs は連絡先と合言葉の組による投稿検索を処理する。
// POST /jobs/search-by-passphrase
func (h *JobHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	var req searchJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	jobs, err := h.service.SearchByCredentials(r.Context(), req.Contact, req.DeletePassphrase)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 検索結果の連絡先は正規化済みの値を返す（照合に使われたキーと一致させる）
	responses := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		resp := toJobResponse(j)
		resp.Contact = j.NormalizedContact
		responses[i] = resp
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// AdminDeleteJob は管理者によるタイトルと連絡先の組での削除を処理する。
// DELETE /jobs/admin-delete
func (h *JobHandler) AdminDeleteJob(w http.ResponseWriter, r *http.Request) {
	var req adminDeleteJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.AdminDelete(r.Context(), req.Title, req.Contact); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Job post deleted"})
}

// --- ヘルパー関数 ---

// toJobResponse はmodel.JobからAPIレスポンスに変換する。
// 日付は表示用フォーマットに変換する。
func toJobResponse(j *model.Job) jobResponse {
	return jobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Pay:         j.Pay,
		Location:    j.Location,
		DateNeeded:  j.DateNeeded.Format(dateDisplayFormat),
		Contact:     j.Contact,
		ContactType: j.ContactType,
		PostedAt:    j.PostedAt.Format(dateDisplayFormat),
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeMissingFields,
		model.ErrCodeInvalidRequest,
		model.ErrCodeInvalidLocation,
		model.ErrCodeSpamRejected,
		model.ErrCodeProfanityRejected,
		model.ErrCodeDuplicateReport:
		return http.StatusBadRequest
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case model.ErrCodePostNotFound, model.ErrCodeListingNotFound:
		return http.StatusNotFound
	case model.ErrCodeWrongPassphrase:
		return http.StatusForbidden
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
