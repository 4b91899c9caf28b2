// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, notfound, delivery, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeNoPendingIdentity  = "NO_PENDING_IDENTITY"
	ErrCodeNoVerifiedIdentity = "NO_VERIFIED_IDENTITY"
	ErrCodeNoOtpFound         = "NO_OTP_FOUND"
	ErrCodeOtpMismatch        = "OTP_MISMATCH"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidPassword    = "INVALID_PASSWORD"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeNoteNotFound       = "NOTE_NOT_FOUND"
	ErrCodeDeliveryFailed     = "DELIVERY_FAILED"
	ErrCodeEmptyInput         = "EMPTY_INPUT"
)

// NewNoPendingIdentityError は検証待ちアイデンティティ不在エラーを生成する。
// セッションが失効したか、OTP送信を経ずに検証を試みた場合に発生する。
func NewNoPendingIdentityError() *APIError {
	return &APIError{
		Code:     ErrCodeNoPendingIdentity,
		Message:  "検証待ちのメールアドレスがありません。",
		Category: "auth",
		Action:   "サインアップからやり直してください。",
	}
}

// NewNoVerifiedIdentityError は検証済みアイデンティティ不在エラーを生成する。
func NewNoVerifiedIdentityError() *APIError {
	return &APIError{
		Code:     ErrCodeNoVerifiedIdentity,
		Message:  "メールアドレスの検証が完了していません。",
		Category: "auth",
		Action:   "サインアップからやり直してください。",
	}
}

// NewNoOtpFoundError は確認コード未発行エラーを生成する。
func NewNoOtpFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNoOtpFound,
		Message:  "確認コードが発行されていません。",
		Category: "auth",
		Action:   "サインアップからやり直して、確認コードを再送してください。",
	}
}

// NewOtpMismatchError は確認コード不一致エラーを生成する。
func NewOtpMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeOtpMismatch,
		Message:  "確認コードが一致しません。",
		Category: "auth",
		Action:   "メールに記載された最新の確認コードを入力してください。",
	}
}

// NewUserNotFoundError はユーザー未登録エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "このメールアドレスのユーザーは登録されていません。",
		Category: "auth",
		Action:   "メールアドレスを確認するか、サインアップしてください。",
	}
}

// NewInvalidPasswordError はパスワード不一致エラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPassword,
		Message:  "パスワードが正しくありません。",
		Category: "auth",
		Action:   "パスワードを確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
// usersテーブルの一意制約違反から写像される。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "ログインページからログインしてください。",
	}
}

// NewNoteNotFoundError はメモ未検出エラーを生成する。
// 他ユーザー所有のメモも存在しないメモと区別せずこのエラーになる。
func NewNoteNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNoteNotFound,
		Message:  "指定されたメモが見つかりません。",
		Category: "notfound",
		Action:   "メモ一覧から選び直してください。",
	}
}

// NewDeliveryFailedError はメール配送失敗エラーを生成する。
func NewDeliveryFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeDeliveryFailed,
		Message:  fmt.Sprintf("確認コードのメール送信に失敗しました: %s", reason),
		Category: "delivery",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// AsAPIError はエラーチェーンからAPIErrorを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewEmptyInputError は必須入力の欠落エラーを生成する。
func NewEmptyInputError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeEmptyInput,
		Message:  fmt.Sprintf("%s を入力してください。", field),
		Category: "validation",
		Action:   "フォームの入力内容を確認してください。",
	}
}
