// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// OTP検証が成功した後にのみ作成される。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はサーバーサイドセッションを表す。
// 不透明トークン（ID）をCookieに持ち、状態はすべてサーバー側で保持する。
//
// セッションは次のいずれか高々1つのアイデンティティを持つ:
//   - 無し（匿名）
//   - PendingEmail: OTP送信後、検証待ちのメールアドレス
//   - VerifiedEmail: OTP検証済みだが未登録のメールアドレス
//   - UserID: 認証済みユーザーのID
//
// UserIDが設定されている場合のみ認証済みとみなす。
// PendingEmail/VerifiedEmailは遷移中の状態であり、認証として扱ってはならない。
type Session struct {
	ID            string
	UserID        string
	PendingEmail  string
	VerifiedEmail string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// IsAuthenticated はセッションが認証済みユーザーを表すかを返す。
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}
