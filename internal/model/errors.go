package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, record, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeShiftNotActive     = "SHIFT_NOT_ACTIVE"
	ErrCodeWrongPassphrase    = "WRONG_PASSPHRASE"
	ErrCodeEmployeeNotActive  = "EMPLOYEE_NOT_ACTIVE"
	ErrCodeHandoverIdentities = "HANDOVER_IDENTITIES"
	ErrCodeNotepadState       = "NOTEPAD_STATE"
	ErrCodePhoneMissing       = "PHONE_MISSING"
	ErrCodeUploadTooLarge     = "UPLOAD_TOO_LARGE"
	ErrCodeUploadNotFound     = "UPLOAD_NOT_FOUND"
)

// NewRecordNotFoundError は更新対象のレコードが存在しない場合のエラーを生成する。
func NewRecordNotFoundError(collection, id string) *APIError {
	return &APIError{
		Code:     ErrCodeRecordNotFound,
		Message:  fmt.Sprintf("指定されたレコードが見つかりません: %s/%s", collection, id),
		Category: "record",
		Action:   "一覧を再読み込みして、レコードが存在するか確認してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "必須項目を入力してから再度送信してください。",
	}
}

// NewShiftNotActiveError は勤務セッションが無い状態での操作エラーを生成する。
func NewShiftNotActiveError() *APIError {
	return &APIError{
		Code:     ErrCodeShiftNotActive,
		Message:  "勤務が開始されていません。",
		Category: "auth",
		Action:   "名前を選択して勤務を開始してください。",
	}
}

// NewWrongPassphraseError は合言葉の不一致エラーを生成する。
// 再入力可能なエラーとして扱い、セッション状態は変更しない。
func NewWrongPassphraseError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongPassphrase,
		Message:  "合言葉が一致しません。",
		Category: "auth",
		Action:   "共有されている合言葉を確認して再入力してください。",
	}
}

// NewEmployeeNotActiveError は在籍中でない従業員での勤務開始エラーを生成する。
func NewEmployeeNotActiveError(employeeID string) *APIError {
	return &APIError{
		Code:     ErrCodeEmployeeNotActive,
		Message:  fmt.Sprintf("在籍中の従業員ではありません: %s", employeeID),
		Category: "auth",
		Action:   "従業員一覧に登録されている在籍中の名前を選択してください。",
	}
}

// NewHandoverIdentitiesError は引き継ぎの担当者選択エラーを生成する。
func NewHandoverIdentitiesError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeHandoverIdentities,
		Message:  fmt.Sprintf("引き継ぎの担当者選択が不正です: %s", reason),
		Category: "validation",
		Action:   "送り出しと受け入れで別々の在籍中の従業員を選択してください。",
	}
}

// NewNotepadStateError は現在のメモ帳状態で許可されない遷移のエラーを生成する。
func NewNotepadStateError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeNotepadState,
		Message:  fmt.Sprintf("メモ帳の状態遷移が不正です: %s", reason),
		Category: "validation",
		Action:   "メモ帳の現在の状態を確認してから操作してください。",
	}
}

// NewPhoneMissingError は通知先電話番号が無い場合のエラーを生成する。
func NewPhoneMissingError() *APIError {
	return &APIError{
		Code:     ErrCodePhoneMissing,
		Message:  "通知先の電話番号が登録されていません。",
		Category: "validation",
		Action:   "住民の電話番号を登録してから通知してください。",
	}
}

// NewUploadTooLargeError はアップロードサイズ超過エラーを生成する。
func NewUploadTooLargeError(maxBytes int64) *APIError {
	return &APIError{
		Code:     ErrCodeUploadTooLarge,
		Message:  fmt.Sprintf("ファイルサイズが上限（%dバイト）を超えています。", maxBytes),
		Category: "validation",
		Action:   "より小さい画像を選択してください。",
	}
}

// NewUploadNotFoundError はアップロード参照が無効な場合のエラーを生成する。
// アップロードはプロセス生存中のみ有効な一時参照であり、再起動で失われる。
func NewUploadNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeUploadNotFound,
		Message:  fmt.Sprintf("指定されたアップロードが見つかりません: %s", id),
		Category: "record",
		Action:   "ファイルを再度アップロードしてください。",
	}
}
