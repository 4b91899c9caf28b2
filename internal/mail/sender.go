// Package mail は確認コードなどのメール送信コラボレーターを提供する。
package mail

import (
	"context"
	"log/slog"
)

// Sender はメール送信のインターフェース。
// 宛先・件名・本文を受け取り、受理を確認するか配送エラーを返す。
// リトライは行わない。
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender はメールを送信せずログに出力するセンダー。
// SMTP_HOSTが未設定の開発環境で使用する。
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender はLogSenderを生成する。
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send はメール内容をログに出力する。常に成功する。
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info("mail delivery skipped (log sender)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

// compile-time interface check
var _ Sender = (*LogSender)(nil)
