package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// panicPage はpanic時に返す最小限の500ページ。
// テンプレート描画自体がpanicの原因になりうるため、ここでは静的なHTMLを返す。
const panicPage = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>エラー - memoapp</title></head>
<body>
  <h1>エラーが発生しました</h1>
  <p>しばらく待ってから再度お試しください。</p>
  <p><a href="/">トップへ戻る</a></p>
</body>
</html>
`

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 500エラーページを返すミドルウェアを生成する。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(panicPage))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
