// Package auth はOTPによるサインアップ検証フロー、ログイン、セッション管理を提供する。
//
// サインアップは3段階の線形な状態遷移で進む:
//
//	Anonymous → OtpRequested → OtpVerified → Registered(Authenticated)
//
// 既存ユーザーはログインによりOTPを経ずに直接Authenticatedへ遷移する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/memoapp/internal/mail"
	"github.com/hitoshi/memoapp/internal/model"
	"github.com/hitoshi/memoapp/internal/repository"
)

// メトリクスのresultラベル値
const (
	metricResultSuccess  = "success"
	metricResultMismatch = "mismatch"
	metricResultNotFound = "not_found"
	metricResultFailure  = "failure"
)

// MetricsRecorder は認証フローが記録するメトリクスのインターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordSignupRequested()
	RecordOTPVerification(result string)
	RecordLogin(result string)
	RecordUserRegistered()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	otpRepo     repository.OTPRepository
	sessionRepo repository.SessionRepository
	sender      mail.Sender
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	sessionRepo repository.SessionRepository,
	sender mail.Sender,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		sender:      sender,
		metrics:     metrics,
		config:      config,
	}
}

// RequestSignup はサインアップの第1段階を実行する。
// 確認コードを生成・永続化し、メールで送信した後、
// セッションに検証待ちアイデンティティ（pending_email）を保存する。
//
// 副作用の順序は契約（コードの永続化 → メール送信 → セッション永続化）であり、
// いずれの段階のエラーも呼び出し元へ伝播する。特にセッションの永続化に
// 失敗した場合、呼び出し元へ「検証へ進んでよい」と伝えてはならない。
// 同一メールアドレスの既存コードは削除せず共存させる（最新のみが有効）。
// メール送信失敗時のリトライは行わず、永続化済みのコードもそのまま残る。
func (s *Service) RequestSignup(ctx context.Context, session *model.Session, email string) (*model.Session, error) {
	code, err := generateOTPCode()
	if err != nil {
		return nil, err
	}

	// 1. コードを永続化（メール送信より先に耐久化する）
	otp := &model.OTPCode{
		ID:        uuid.New().String(),
		Email:     email,
		Code:      code,
		CreatedAt: time.Now(),
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return nil, fmt.Errorf("failed to persist otp code: %w", err)
	}

	// 2. メール送信（失敗はそのまま配送エラーとして返す）
	subject := "【memoapp】メールアドレスの確認コード"
	body := fmt.Sprintf("memoappへようこそ。\n\n確認コード: %s\n\nサインアップ画面でこのコードを入力してください。", code)
	if err := s.sender.Send(ctx, email, subject, body); err != nil {
		slog.Error("otp mail delivery failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, model.NewDeliveryFailedError(err.Error())
	}

	// 3. セッションに検証待ちアイデンティティを保存
	// セッションは高々1つのアイデンティティを持つため、他の状態はクリアする。
	if session == nil {
		session, err = s.newSession()
		if err != nil {
			return nil, err
		}
		session.PendingEmail = email
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	} else {
		session.PendingEmail = email
		session.VerifiedEmail = ""
		session.UserID = ""
		if err := s.sessionRepo.UpdateIdentity(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordSignupRequested()
	}
	slog.Info("signup otp issued", slog.String("email", email))

	return session, nil
}

// VerifyOTP はサインアップの第2段階を実行する。
// セッションの検証待ちメールアドレスに対する最新の確認コードと
// 提出コードを比較し、一致した場合のみそのレコードを消費する。
//
// 比較対象は常に最新のレコードのみで、古い未消費のコードは
// 暗黙に無効化される（latest-wins）。不一致の場合レコードは一切
// 削除されず、再試行の回数制限もない。
// 消費は単一ステートメントで行われ、並行する検証が同一レコードを
// 二重に消費することはない。
func (s *Service) VerifyOTP(ctx context.Context, session *model.Session, code string) error {
	if session == nil || session.PendingEmail == "" {
		return model.NewNoPendingIdentityError()
	}
	email := session.PendingEmail

	latest, err := s.otpRepo.FindLatestByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find otp code: %w", err)
	}
	if latest == nil {
		s.recordOTPVerification(metricResultNotFound)
		return model.NewNoOtpFoundError()
	}

	consumed, err := s.otpRepo.ConsumeLatest(ctx, email, code)
	if err != nil {
		return fmt.Errorf("failed to consume otp code: %w", err)
	}
	if !consumed {
		s.recordOTPVerification(metricResultMismatch)
		return model.NewOtpMismatchError()
	}

	// 検証待ちを検証済みアイデンティティに置き換える
	session.PendingEmail = ""
	session.VerifiedEmail = email
	if err := s.sessionRepo.UpdateIdentity(ctx, session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.recordOTPVerification(metricResultSuccess)
	slog.Info("signup otp verified", slog.String("email", email))

	return nil
}

// SetPassword はサインアップの最終段階を実行する。
// パスワードをbcryptでハッシュ化し（ソルトは呼び出しごとに一意）、
// 検証済みメールアドレスでユーザーを作成して、セッションを認証済みにする。
//
// このフロー自体は既存ユーザーの事前チェックを行わないが、
// usersテーブルの一意制約によりEMAIL_TAKENエラーが返りうる。
func (s *Service) SetPassword(ctx context.Context, session *model.Session, password string) (*model.User, error) {
	if session == nil || session.VerifiedEmail == "" {
		return nil, model.NewNoVerifiedIdentityError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        session.VerifiedEmail,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// セッションを認証済みに遷移させる
	session.VerifiedEmail = ""
	session.UserID = user.ID
	if err := s.sessionRepo.UpdateIdentity(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordUserRegistered()
	}
	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login は既存ユーザーを認証し、新しい認証済みセッションを発行する。
// OTPフローを経由しない（登録済みユーザー専用の入口）。
// セッション固定化攻撃を避けるため、既存セッションは引き継がず
// 常に新しいセッションを発行する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.recordLogin(metricResultFailure)
		return nil, model.NewUserNotFoundError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLogin(metricResultFailure)
		return nil, model.NewInvalidPasswordError()
	}

	session, err := s.newSession()
	if err != nil {
		return nil, err
	}
	session.UserID = user.ID
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordLogin(metricResultSuccess)
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil || !session.IsAuthenticated() {
		return nil, fmt.Errorf("session not found or not authenticated")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// newSession は未永続化の匿名セッションを生成する。
func (s *Service) newSession() (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}
	return &model.Session{
		ID:        sessionID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}, nil
}

func (s *Service) recordOTPVerification(result string) {
	if s.metrics != nil {
		s.metrics.RecordOTPVerification(result)
	}
}

func (s *Service) recordLogin(result string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(result)
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
