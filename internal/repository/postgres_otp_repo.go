package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/memoapp/internal/model"
)

// PostgresOTPRepo はPostgreSQLを使用したワンタイムコードリポジトリ。
type PostgresOTPRepo struct {
	db *sql.DB
}

// NewPostgresOTPRepo はPostgresOTPRepoを生成する。
func NewPostgresOTPRepo(db *sql.DB) *PostgresOTPRepo {
	return &PostgresOTPRepo{db: db}
}

// Create はOTPコードを作成する。同一メールアドレスの既存コードは削除しない。
func (r *PostgresOTPRepo) Create(ctx context.Context, otp *model.OTPCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otp_codes (id, email, code, created_at)
		 VALUES ($1, $2, $3, $4)`,
		otp.ID, otp.Email, otp.Code, otp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert otp code: %w", err)
	}
	return nil
}

// FindLatestByEmail は指定メールアドレスの最新のOTPコードを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresOTPRepo) FindLatestByEmail(ctx context.Context, email string) (*model.OTPCode, error) {
	otp := &model.OTPCode{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, code, created_at
		 FROM otp_codes
		 WHERE email = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		email,
	).Scan(&otp.ID, &otp.Email, &otp.Code, &otp.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest otp code: %w", err)
	}

	return otp, nil
}

// ConsumeLatest は最新のOTPコードが提出コードと一致する場合のみ削除する。
// 削除対象の特定と削除を単一ステートメントで行うため、
// 並行する検証リクエストが同一レコードを二重に消費することはない。
// 古いコード（最新でないもの）は一致しても消費されない。
func (r *PostgresOTPRepo) ConsumeLatest(ctx context.Context, email, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_codes
		 WHERE id = (
		     SELECT id FROM otp_codes
		     WHERE email = $1
		     ORDER BY created_at DESC, id DESC
		     LIMIT 1
		 )
		 AND code = $2`,
		email, code,
	)
	if err != nil {
		return false, fmt.Errorf("failed to consume otp code: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ OTPRepository = (*PostgresOTPRepo)(nil)
