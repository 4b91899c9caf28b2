// Package note はメモ管理のドメインロジックを提供する。
//
// すべての読み取り・更新・削除は (メモID, 所有ユーザーID) の複合条件で
// 行われ、他人のメモは存在しないメモと区別できない。
package note

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/memoapp/internal/model"
	"github.com/hitoshi/memoapp/internal/repository"
	"github.com/hitoshi/memoapp/internal/security"
)

// defaultTitle はタイトル未入力時に補完される表示名。
const defaultTitle = "無題"

// MetricsRecorder はメモ操作が記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordNoteCreated()
}

// Service はメモ管理のサービス層。
// 一覧取得、作成、取得、更新、削除のビジネスロジックを提供する。
type Service struct {
	noteRepo  repository.NoteRepository
	sanitizer security.ContentSanitizerService
	metrics   MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnilでもよい。
func NewService(
	noteRepo repository.NoteRepository,
	sanitizer security.ContentSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		noteRepo:  noteRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// List はユーザーのメモ一覧を更新日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Note, error) {
	notes, err := s.noteRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("メモ一覧の取得に失敗しました: %w", err)
	}
	return notes, nil
}

// Create は新しいメモを作成する。
// 本文は保存前にサニタイズされ、タイトルが空白のみの場合は既定値で補完する。
func (s *Service) Create(ctx context.Context, userID, title, content string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	now := time.Now()
	note := &model.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   s.sanitizer.Sanitize(content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("メモの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordNoteCreated()
	}
	slog.Info("note created",
		slog.String("note_id", note.ID),
		slog.String("user_id", userID),
	)

	return note, nil
}

// Get はユーザーが所有するメモを1件返す。
// 他人のメモ・存在しないメモはいずれもNoteNotFoundになる。
func (s *Service) Get(ctx context.Context, id, userID string) (*model.Note, error) {
	note, err := s.noteRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("メモの取得に失敗しました: %w", err)
	}
	if note == nil {
		return nil, model.NewNoteNotFoundError()
	}
	return note, nil
}

// Update はユーザーが所有するメモのタイトルと本文を更新する。
// 所有権の確認と更新は単一のUPDATE文（id AND user_id）で行われる。
func (s *Service) Update(ctx context.Context, id, userID, title, content string) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	note := &model.Note{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   s.sanitizer.Sanitize(content),
		UpdatedAt: time.Now(),
	}

	updated, err := s.noteRepo.Update(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("メモの更新に失敗しました: %w", err)
	}
	if !updated {
		return nil, model.NewNoteNotFoundError()
	}

	return note, nil
}

// Delete はユーザーが所有するメモを削除する。
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.noteRepo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("メモの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNoteNotFoundError()
	}

	slog.Info("note deleted",
		slog.String("note_id", id),
		slog.String("user_id", userID),
	)
	return nil
}
