package handler

import (
	"context"
	"net/http"
)

// Pinger はヘルスチェックが必要とするDB疎通確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewHealthHandler はliveness確認のハンドラーを返す。
// DBへの疎通が取れない場合は503を返す。
// GET /health
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
