package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/boardman/internal/listing"
	"github.com/hitoshi/boardman/internal/model"
)

// ListingServiceInterface は掲載情報ハンドラーが必要とするサービスインターフェース。
type ListingServiceInterface interface {
	// Submit は掲載情報を投稿する。承認されるまで公開されない。
	Submit(ctx context.Context, kind model.ListingKind, input listing.SubmitInput) (*model.Listing, error)
	// ListApproved は承認済みかつ掲載期間内の掲載情報を返す。
	ListApproved(ctx context.Context, kind model.ListingKind) ([]*model.Listing, error)
	// ListAll は承認状態にかかわらずすべての掲載情報を返す。
	ListAll(ctx context.Context, kind model.ListingKind) ([]*model.Listing, error)
	// Approve は掲載情報を承認済みにする。
	Approve(ctx context.Context, kind model.ListingKind, id string) error
	// Deny は掲載情報を削除する。
	Deny(ctx context.Context, kind model.ListingKind, id string) error
}

// ListingHandler はイベント/コミュニティ掲載のHTTPハンドラー。
// 1つのインスタンスが1つの掲載種別を担当する。
type ListingHandler struct {
	service ListingServiceInterface
	kind    model.ListingKind
}

// NewListingHandler は指定された掲載種別のListingHandlerを生成する。
func NewListingHandler(service ListingServiceInterface, kind model.ListingKind) *ListingHandler {
	return &ListingHandler{service: service, kind: kind}
}

// submitEventRequest はイベント掲載投稿リクエストのボディ。
type submitEventRequest struct {
	EventName        string `json:"eventName"`
	EventDate        string `json:"eventDate"`
	EventDescription string `json:"eventDescription"`
	EventLocation    string `json:"eventLocation"`
	ImageURL         string `json:"imageUrl"`
	SiteLink         string `json:"siteLink"`
	ContactEmail     string `json:"contactEmail"`
}

// submitCommunityRequest はコミュニティ掲載投稿リクエストのボディ。
type submitCommunityRequest struct {
	CommunityName        string `json:"communityName"`
	CommunityDate        string `json:"communityDate"`
	CommunityDescription string `json:"communityDescription"`
	CommunityLocation    string `json:"communityLocation"`
	ImageURL             string `json:"imageUrl"`
	SiteLink             string `json:"siteLink"`
	ContactEmail         string `json:"contactEmail"`
}

// listingResponse は掲載情報のAPIレスポンス。
type listingResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Date         string    `json:"date"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	ImageURL     string    `json:"imageUrl"`
	SiteLink     string    `json:"siteLink"`
	ContactEmail string    `json:"contactEmail"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Submit は掲載情報の投稿を処理する。
// POST /events または POST /community
func (h *ListingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeSubmitRequest(w, r)
	if !ok {
		return
	}

	created, err := h.service.Submit(r.Context(), h.kind, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toListingResponse(created))
}

// ListApproved は承認済み掲載の一覧取得を処理する。
// GET /events または GET /community
func (h *ListingHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListApproved(r.Context(), h.kind)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListingsResponse(w, listings)
}

// ListAll は管理者向けの全掲載一覧取得を処理する。
// GET /events/all または GET /community/all
func (h *ListingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListAll(r.Context(), h.kind)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListingsResponse(w, listings)
}

// Approve は管理者による掲載の承認を処理する。
// PATCH /events/approve/{id} または PATCH /community/approve/{id}
func (h *ListingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Approve(r.Context(), h.kind, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Listing approved"})
}

// Deny は管理者による掲載の否認（削除）を処理する。
// DELETE /events/{id} または DELETE /community/{id}
func (h *ListingHandler) Deny(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Deny(r.Context(), h.kind, id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Listing removed"})
}

// decodeSubmitRequest は掲載種別に応じたリクエストボディをデコードする。
// イベントとコミュニティでフィールドのプレフィックスが異なる。
func (h *ListingHandler) decodeSubmitRequest(w http.ResponseWriter, r *http.Request) (listing.SubmitInput, bool) {
	if h.kind == model.ListingKindCommunity {
		var req submitCommunityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
			return listing.SubmitInput{}, false
		}
		return listing.SubmitInput{
			Name:         req.CommunityName,
			Date:         req.CommunityDate,
			Description:  req.CommunityDescription,
			Location:     req.CommunityLocation,
			ImageURL:     req.ImageURL,
			SiteLink:     req.SiteLink,
			ContactEmail: req.ContactEmail,
		}, true
	}

	var req submitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return listing.SubmitInput{}, false
	}
	return listing.SubmitInput{
		Name:         req.EventName,
		Date:         req.EventDate,
		Description:  req.EventDescription,
		Location:     req.EventLocation,
		ImageURL:     req.ImageURL,
		SiteLink:     req.SiteLink,
		ContactEmail: req.ContactEmail,
	}, true
}

// --- ヘルパー関数 ---

// toListingResponse はmodel.ListingからAPIレスポンスに変換する。
func toListingResponse(l *model.Listing) listingResponse {
	return listingResponse{
		ID:           l.ID,
		Name:         l.Name,
		Date:         l.Date,
		Description:  l.Description,
		Location:     l.Location,
		ImageURL:     l.ImageURL,
		SiteLink:     l.SiteLink,
		ContactEmail: l.ContactEmail,
		Approved:     l.Approved,
		CreatedAt:    l.CreatedAt,
	}
}

// writeListingsResponse は掲載一覧のレスポンスを書き込む。
func writeListingsResponse(w http.ResponseWriter, listings []*model.Listing) {
	responses := make([]listingResponse, len(listings))
	for i, l := range listings {
		responses[i] = toListingResponse(l)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
