// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/memoapp/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// メールアドレスは保存された表記そのままで比較する（大文字小文字を区別する）。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// emailの一意制約に違反した場合はmodel.ErrCodeEmailTakenのAPIErrorを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するメモは外部キーのCASCADEにより同時に削除される。
	// 削除に成功したかどうかを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
// 不透明トークン（セッションID）をキーとするget/set/destroy操作を提供する。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// UpdateIdentity はセッションのアイデンティティ
	// （user_id / pending_email / verified_email）を保存する。
	// 対象セッションが存在しない場合はエラーを返す。
	UpdateIdentity(ctx context.Context, session *model.Session) error
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// OTPRepository はワンタイムコードの永続化インターフェース。
type OTPRepository interface {
	// Create はOTPコードを作成する。同一メールアドレスの既存コードは削除しない。
	Create(ctx context.Context, otp *model.OTPCode) error

	// FindLatestByEmail は指定メールアドレスの最新のOTPコードを取得する。
	// created_at降順（同時刻の場合はid降順）の先頭を返す。見つからない場合はnilを返す。
	FindLatestByEmail(ctx context.Context, email string) (*model.OTPCode, error)

	// ConsumeLatest は最新のOTPコードが提出コードと一致する場合のみ、
	// そのレコードを単一ステートメントで削除する。
	// 一致して削除できた場合にtrueを返す。古いコードや不一致のコードでは
	// 何も削除せずfalseを返す。並行する検証が同一レコードを
	// 二重に消費できないことをDB側で保証する。
	ConsumeLatest(ctx context.Context, email, code string) (bool, error)
}

// NoteRepository はメモデータの永続化インターフェース。
// 読み取り・更新・削除はすべて (id AND user_id) の複合条件で行い、
// 他ユーザー所有のメモは存在しないメモと区別できない。
type NoteRepository interface {
	// Create はメモを作成する。
	Create(ctx context.Context, note *model.Note) error

	// FindByIDAndUser は指定IDかつ指定ユーザー所有のメモを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Note, error)

	// ListByUserID は指定ユーザーのメモ一覧をupdated_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Note, error)

	// Update は指定ユーザー所有のメモを更新する。
	// 更新対象が存在しない（他ユーザー所有を含む）場合はfalseを返す。
	Update(ctx context.Context, note *model.Note) (bool, error)

	// DeleteByIDAndUser は指定ユーザー所有のメモを削除する。
	// 削除対象が存在しない（他ユーザー所有を含む）場合はfalseを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}
