package middleware

import "net/http"

// methodOverrideField はフォームでHTTPメソッドを上書きする隠しフィールド名。
const methodOverrideField = "_method"

// NewMethodOverrideMiddleware はPOSTフォームの_methodフィールドによる
// メソッド上書きを行うミドルウェアを返す。
// HTMLフォームはGET/POSTしか送れないため、PUT/DELETEはこの方式で表現する。
// 上書きはPOSTからPUTまたはDELETEへの昇格のみ許可する。
func NewMethodOverrideMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				switch r.PostFormValue(methodOverrideField) {
				case http.MethodPut:
					r.Method = http.MethodPut
				case http.MethodDelete:
					r.Method = http.MethodDelete
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
