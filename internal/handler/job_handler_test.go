package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/boardman/internal/job"
	"github.com/hitoshi/boardman/internal/model"
)

// --- モック定義 ---

// mockJobService はJobServiceInterfaceのモック実装。
type mockJobService struct {
	createFn              func(ctx context.Context, input job.CreateInput) (*model.Job, error)
	listFn                func(ctx context.Context, location string, limit, offset int) ([]*model.Job, error)
	deleteByCredentialsFn func(ctx context.Context, title, contact, passphrase string) error
	deleteByIDFn          func(ctx context.Context, id, passphrase string) error
	searchByCredentialsFn func(ctx context.Context, contact, passphrase string) ([]*model.Job, error)
	adminDeleteFn         func(ctx context.Context, title, contact string) error
}

func (m *mockJobService) Create(ctx context.Context, input job.CreateInput) (*model.Job, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockJobService) List(ctx context.Context, location string, limit, offset int) ([]*model.Job, error) {
	if m.listFn != nil {
		return m.listFn(ctx, location, limit, offset)
	}
	return nil, nil
}

func (m *mockJobService) DeleteByCredentials(ctx context.Context, title, contact, passphrase string) error {
	if m.deleteByCredentialsFn != nil {
		return m.deleteByCredentialsFn(ctx, title, contact, passphrase)
	}
	return nil
}

func (m *mockJobService) DeleteByID(ctx context.Context, id, passphrase string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id, passphrase)
	}
	return nil
}

func (m *mockJobService) SearchByCredentials(ctx context.Context, contact, passphrase string) ([]*model.Job, error) {
	if m.searchByCredentialsFn != nil {
		return m.searchByCredentialsFn(ctx, contact, passphrase)
	}
	return nil, nil
}

func (m *mockJobService) AdminDelete(ctx context.Context, title, contact string) error {
	if m.adminDeleteFn != nil {
		return m.adminDeleteFn(ctx, title, contact)
	}
	return nil
}

// --- テストヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// decodeErrorResponse はレスポンスボディからエラーレスポンスをパースするヘルパー。
func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

func sampleJob() *model.Job {
	return &model.Job{
		ID:                "job-1",
		Title:             "Fence repair",
		Description:       "Need help fixing a fence",
		Pay:               "20 (Hourly)",
		Location:          "Colville",
		DateNeeded:        time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		Contact:           "John@Email.com",
		NormalizedContact: "john@email.com",
		ContactType:       model.ContactTypeEmail,
		DeletePassphrase:  "secret",
		PostedAt:          time.Date(2025, 6, 28, 12, 0, 0, 0, time.UTC),
	}
}

// --- POST /jobs テスト ---

func TestJobHandler_CreateJob_Success(t *testing.T) {
	svc := &mockJobService{
		createFn: func(ctx context.Context, input job.CreateInput) (*model.Job, error) {
			if input.Title != "Fence repair" {
				t.Errorf("Title = %q, want %q", input.Title, "Fence repair")
			}
			if !input.DateNeeded.Equal(time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("DateNeeded = %v, want 2025-07-04", input.DateNeeded)
			}
			if input.Honeypot != "" {
				t.Errorf("Honeypot = %q, want empty", input.Honeypot)
			}
			return sampleJob(), nil
		},
	}
	h := NewJobHandler(svc)

	body := `{
		"title": "Fence repair",
		"description": "Need help fixing a fence",
		"pay": "20 (Hourly)",
		"location": "Colville",
		"dateNeeded": "2025-07-04",
		"contact": "John@Email.com",
		"contactType": "email",
		"deletePassPhrase": "secret",
		"website": ""
	}`
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["dateNeeded"] != "July 4, 2025" {
		t.Errorf("dateNeeded = %v, want %q", resp["dateNeeded"], "July 4, 2025")
	}
	if resp["postedAt"] != "June 28, 2025" {
		t.Errorf("postedAt = %v, want %q", resp["postedAt"], "June 28, 2025")
	}
	if _, leaked := resp["deletePassPhrase"]; leaked {
		t.Error("response must not contain the delete passphrase")
	}
}

func TestJobHandler_CreateJob_InvalidJSON(t *testing.T) {
	h := NewJobHandler(&mockJobService{})

	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decodeErrorResponse(t, w)
	if resp["code"] != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", resp["code"], model.ErrCodeInvalidRequest)
	}
}

func TestJobHandler_CreateJob_InvalidDate(t *testing.T) {
	h := NewJobHandler(&mockJobService{})

	body := `{"title": "x", "dateNeeded": "07/04/2025"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestJobHandler_CreateJob_ContactLimitMapsTo429(t *testing.T) {
	svc := &mockJobService{
		createFn: func(ctx context.Context, input job.CreateInput) (*model.Job, error) {
			return nil, model.NewRateLimitExceededError(2)
		},
	}
	h := NewJobHandler(svc)

	body := `{"title": "Fence repair", "dateNeeded": "2025-07-04"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.CreateJob(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

// --- GET /jobs テスト ---

func TestJobHandler_ListJobs_PassesQueryParams(t *testing.T) {
	svc := &mockJobService{
		listFn: func(ctx context.Context, location string, limit, offset int) ([]*model.Job, error) {
			if location != "Republic" {
				t.Errorf("location = %q, want %q", location, "Republic")
			}
			if limit != 5 {
				t.Errorf("limit = %d, want 5", limit)
			}
			if offset != 10 {
				t.Errorf("offset = %d, want 10", offset)
			}
			return []*model.Job{sampleJob()}, nil
		},
	}
	h := NewJobHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/jobs?limit=5&offset=10&location=Republic", nil)
	w := httptest.NewRecorder()

	h.ListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("len(resp) = %d, want 1", len(resp))
	}
	if resp[0]["dateNeeded"] != "July 4, 2025" {
		t.Errorf("dateNeeded = %v, want %q", resp[0]["dateNeeded"], "July 4, 2025")
	}
}

func TestJobHandler_ListJobs_EmptyResultIsEmptyArray(t *testing.T) {
	h := NewJobHandler(&mockJobService{})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	w := httptest.NewRecorder()

	h.ListJobs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

// --- POST /jobs/delete テスト ---

func TestJobHandler_DeleteJobByCredentials_Success(t *testing.T) {
	svc := &mockJobService{
		deleteByCredentialsFn: func(ctx context.Context, title, contact, passphrase string) error {
			if title != "Fence repair" || contact != "john@email.com" || passphrase != "secret" {
				t.Errorf("unexpected args: %q %q %q", title, contact, passphrase)
			}
			return nil
		},
	}
	h := NewJobHandler(svc)

	body := `{"title": "Fence repair", "contact": "john@email.com", "deletePassPhrase": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs/delete", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.DeleteJobByCredentials(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestJobHandler_DeleteJobByCredentials_NotFoundMapsTo404(t *testing.T) {
	svc := &mockJobService{
		deleteByCredentialsFn: func(ctx context.Context, title, contact, passphrase string) error {
			return model.NewPostNotFoundError()
		},
	}
	h := NewJobHandler(svc)

	body := `{"title": "x", "contact": "y", "deletePassPhrase": "z"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs/delete", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.DeleteJobByCredentials(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- DELETE /jobs/{id} テスト ---

func TestJobHandler_DeleteJobByID_WrongPassphraseMapsTo403(t *testing.T) {
	svc := &mockJobService{
		deleteByIDFn: func(ctx context.Context, id, passphrase string) error {
			return model.NewWrongPassphraseError()
		},
	}
	h := NewJobHandler(svc)

	body := `{"passphrase": "wrong"}`
	req := httptest.NewRequest(http.MethodDelete, "/jobs/job-1", bytes.NewBufferString(body))
	req = withChiURLParam(req, "id", "job-1")
	w := httptest.NewRecorder()

	h.DeleteJobByID(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestJobHandler_DeleteJobByID_MissingMapsTo404(t *testing.T) {
	svc := &mockJobService{
		deleteByIDFn: func(ctx context.Context, id, passphrase string) error {
			return model.NewPostMissingError(id)
		},
	}
	h := NewJobHandler(svc)

	body := `{"passphrase": "secret"}`
	req := httptest.NewRequest(http.MethodDelete, "/jobs/missing", bytes.NewBufferString(body))
	req = withChiURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.DeleteJobByID(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- POST /jobs/search-by-passphrase テスト ---

// 検索結果の連絡先は正規化済みの値で返す。
func TestJobHandler_SearchJobs_ReturnsNormalizedContact(t *testing.T) {
	svc := &mockJobService{
		searchByCredentialsFn: func(ctx context.Context, contact, passphrase string) ([]*model.Job, error) {
			return []*model.Job{sampleJob()}, nil
		},
	}
	h := NewJobHandler(svc)

	body := `{"contact": "John@Email.com", "deletePassPhrase": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs/search-by-passphrase", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.SearchJobs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("len(resp) = %d, want 1", len(resp))
	}
	if resp[0]["contact"] != "john@email.com" {
		t.Errorf("contact = %v, want normalized %q", resp[0]["contact"], "john@email.com")
	}
}

// --- DELETE /jobs/admin-delete テスト ---

func TestJobHandler_AdminDeleteJob_Success(t *testing.T) {
	svc := &mockJobService{
		adminDeleteFn: func(ctx context.Context, title, contact string) error {
			if title != "Fence repair" {
				t.Errorf("title = %q, want %q", title, "Fence repair")
			}
			return nil
		},
	}
	h := NewJobHandler(svc)

	body := `{"title": "Fence repair", "contact": "john@email.com"}`
	req := httptest.NewRequest(http.MethodDelete, "/jobs/admin-delete", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.AdminDeleteJob(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
