// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, moderation, post, auth, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingFields     = "MISSING_FIELDS"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidLocation   = "INVALID_LOCATION"
	ErrCodeSpamRejected      = "SPAM_REJECTED"
	ErrCodeProfanityRejected = "PROFANITY_REJECTED"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodePostNotFound      = "POST_NOT_FOUND"
	ErrCodeWrongPassphrase   = "WRONG_PASSPHRASE"
	ErrCodeDuplicateReport   = "DUPLICATE_REPORT"
	ErrCodeListingNotFound   = "LISTING_NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
)

// NewMissingFieldsError は必須項目欠落エラーを生成する。
func NewMissingFieldsError(fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  fmt.Sprintf("必須項目が入力されていません: %v", fields),
		Category: "validation",
		Action:   "すべての必須項目を入力してから再度送信してください。",
	}
}

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidLocationError は未対応の地域が指定された場合のエラーを生成する。
func NewInvalidLocationError(location string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLocation,
		Message:  fmt.Sprintf("対応していない地域です: %s", location),
		Category: "validation",
		Action:   "掲載対象地域の一覧から選択してください。",
	}
}

// NewSpamRejectedError はボット投稿と判定された場合のエラーを生成する。
// ハニーポットフィールドに値が入っている投稿に対して返す。
func NewSpamRejectedError() *APIError {
	return &APIError{
		Code:     ErrCodeSpamRejected,
		Message:  "投稿を受け付けられませんでした。",
		Category: "validation",
		Action:   "フォームから正しく投稿してください。",
	}
}

// NewProfanityRejectedError は不適切な表現を含む投稿に対するエラーを生成する。
func NewProfanityRejectedError() *APIError {
	return &APIError{
		Code:     ErrCodeProfanityRejected,
		Message:  "投稿に不適切な表現が含まれています。",
		Category: "moderation",
		Action:   "表現を修正してから再度投稿してください。",
	}
}

// NewRateLimitExceededError は連絡先ごとの掲載上限エラーを生成する。
// バリデーションエラーとは区別され、HTTP 429にマッピングされる。
func NewRateLimitExceededError(maxLive int) *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  fmt.Sprintf("同一の連絡先で掲載できる投稿は%d件までです。", maxLive),
		Category: "post",
		Action:   "既存の投稿が期限切れになるか、削除してから再度投稿してください。",
	}
}

// NewPostNotFoundError は削除対象の投稿が見つからない場合のエラーを生成する。
// 「投稿が存在しない」と「合言葉が一致しない」を意図的に区別しない。
func NewPostNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  "該当する投稿が見つからないか、合言葉が一致しません。",
		Category: "post",
		Action:   "タイトル・連絡先・合言葉を確認してください。",
	}
}

// NewPostMissingError はID指定の削除パスで投稿が存在しない場合のエラーを生成する。
// 合言葉不一致（403）とは区別される。
func NewPostMissingError(id string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %s", id),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewWrongPassphraseError は合言葉不一致エラーを生成する。
// ID指定の削除パスのみで使用し、存在しない投稿（404）とは区別する。
func NewWrongPassphraseError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongPassphrase,
		Message:  "合言葉が一致しません。",
		Category: "post",
		Action:   "投稿時に設定した合言葉を確認してください。",
	}
}

// NewDuplicateReportError は重複通報エラーを生成する。
func NewDuplicateReportError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateReport,
		Message:  "この投稿はすでに通報されています。",
		Category: "moderation",
		Action:   "通報は投稿ごとに1件のみ受け付けています。",
	}
}

// NewListingNotFoundError は掲載情報が見つからない場合のエラーを生成する。
func NewListingNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeListingNotFound,
		Message:  fmt.Sprintf("指定された掲載情報が見つかりません: %s", id),
		Category: "post",
		Action:   "掲載IDを確認してください。",
	}
}

// NewUnauthorizedError は管理者認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "この操作には管理者権限が必要です。",
		Category: "auth",
		Action:   "管理者キーを確認してください。",
	}
}
