package model

import "time"

// Note はユーザーが所有するメモを表す。
// UserIDで示される1ユーザーのみが所有し、
// 読み取り・更新・削除は必ず所有者チェックを伴う。
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
