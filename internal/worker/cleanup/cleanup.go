// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// セッションの読み取りは期限を常にフィルタするため、削除は正しさではなく
// テーブル肥大化の抑制が目的。冪等な削除処理として定期実行される。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPruner は期限切れセッションの削除に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Job は期限切れセッションの削除ジョブ。
type Job struct {
	sessions SessionPruner
	logger   *slog.Logger
	Interval time.Duration // 定期実行の間隔（デフォルト: 1時間）
}

// NewJob は新しいJobを生成する。デフォルトの実行間隔は1時間。
func NewJob(sessions SessionPruner, logger *slog.Logger) *Job {
	return &Job{
		sessions: sessions,
		logger:   logger,
		Interval: time.Hour,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// RunPeriodic はctxがキャンセルされるまでInterval間隔でRunを繰り返す。
// 起動直後にも一度実行する。個々の実行エラーはログに残して継続する。
func (j *Job) RunPeriodic(ctx context.Context) {
	// 起動直後の一回
	if err := j.Run(ctx); err != nil && ctx.Err() == nil {
		j.logger.Error("session cleanup failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("session cleanup failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}
