package model

import "time"

// OTPCode はメール検証用のワンタイムコードを表す。
// 同一メールアドレスに対して複数レコードが共存しうる（一意制約なし）。
// 最も新しいレコード（CreatedAt降順の先頭）のみが有効で、
// 検証成功時にそのレコードだけが削除される。
type OTPCode struct {
	ID        string
	Email     string
	Code      string // 6桁のASCII数字
	CreatedAt time.Time
}
