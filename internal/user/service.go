// Package user はアカウント管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/memoapp/internal/model"
	"github.com/hitoshi/memoapp/internal/repository"
)

// Service はアカウント管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// DeleteAccount はユーザーアカウントを削除する。
// 先に全セッションを削除して全デバイスからログアウトさせ、その後
// ユーザー行を削除する。所有するメモはCASCADEで同時に削除される。
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	// 1. 全セッションの削除（全デバイスで即時ログアウト）
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("アカウントのセッション削除に失敗しました: %w", err)
	}

	// 2. ユーザー行の削除（メモはCASCADE）
	deleted, err := s.userRepo.DeleteByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("アカウントの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewUserNotFoundError()
	}

	slog.Info("account deleted", slog.String("user_id", userID))
	return nil
}
