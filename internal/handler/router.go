package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/memoapp/internal/metrics"
	"github.com/hitoshi/memoapp/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder middleware.SessionFinder
	RateLimiter   *middleware.RateLimiter
	CSRFConfig    middleware.CSRFConfig
	Logger        *slog.Logger
	Metrics       middleware.StatusRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// アカウント
	AccountService AccountServiceInterface
	CurrentUsers   CurrentUserFinder

	// メモ
	NoteService NoteServiceInterface

	// 運用系
	DB       Pinger
	Gatherer prometheus.Gatherer
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → Session → MethodOverride → CSRF → RateLimit(General)
//
// /health と /metrics は運用用のため、チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// --- 運用系ルート（ミドルウェアチェーンの外）---
	r.Get("/health", NewHealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	accountHandler := NewAccountHandler(deps.AccountService, deps.CurrentUsers, deps.AuthConfig)
	noteHandler := NewNoteHandler(deps.NoteService)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewMethodOverrideMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// トップは認証状態に応じて振り分け
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			if middleware.SessionFromContext(r.Context()).IsAuthenticated() {
				http.Redirect(w, r, "/notes", http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		})

		// --- 認証不要のルート ---

		// サインアップフロー
		r.Get("/signup", authHandler.ShowSignup)
		// POST /signup はOTPメール送信を伴うため専用レート制限を追加
		r.With(deps.RateLimiter.SignupMiddleware()).Post("/signup", authHandler.RequestSignup)
		r.Get("/verify-otp", authHandler.ShowVerifyOTP)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Get("/set-password", authHandler.ShowSetPassword)
		r.Post("/set-password", authHandler.SetPassword)

		// ログイン・ログアウト
		r.Get("/login", authHandler.ShowLogin)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAuthMiddleware())

			r.Get("/account", accountHandler.ShowAccount)
			r.Delete("/account", accountHandler.DeleteAccount)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", noteHandler.ListNotes)
				r.Post("/", noteHandler.CreateNote)
				r.Get("/new", noteHandler.ShowNewNote)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", noteHandler.ShowNote)
					r.Get("/edit", noteHandler.ShowEditNote)
					r.Put("/", noteHandler.UpdateNote)
					r.Delete("/", noteHandler.DeleteNote)
				})
			})
		})

		// 未定義ルートは404ページ
		r.NotFound(renderNotFound)
	})

	return r
}
