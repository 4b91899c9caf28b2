package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/hitoshi/memoapp/internal/middleware"
	"github.com/hitoshi/memoapp/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	RequestSignup(ctx context.Context, session *model.Session, email string) (*model.Session, error)
	VerifyOTP(ctx context.Context, session *model.Session, code string) error
	SetPassword(ctx context.Context, session *model.Session, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はサインアップ・ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// ShowSignup はメールアドレス入力フォームを表示する。
// GET /signup
func (h *AuthHandler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "signup", newPageData(r, "サインアップ"))
}

// RequestSignup は確認コードを発行してメール送信し、検証画面へ進める。
// POST /signup
func (h *AuthHandler) RequestSignup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	if email == "" {
		h.rerenderSignup(w, r, email, model.NewEmptyInputError("メールアドレス"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		h.rerenderSignup(w, r, email, model.NewEmptyInputError("有効なメールアドレス"))
		return
	}

	session := middleware.SessionFromContext(r.Context())
	session, err := h.service.RequestSignup(r.Context(), session, email)
	if err != nil {
		h.rerenderSignup(w, r, email, err)
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/verify-otp", http.StatusSeeOther)
}

func (h *AuthHandler) rerenderSignup(w http.ResponseWriter, r *http.Request, email string, err error) {
	data := newPageData(r, "サインアップ")
	data.Email = email
	data.Error = userMessage(err)
	renderPage(w, statusFor(err), "signup", data)
}

// ShowVerifyOTP は確認コード入力フォームを表示する。
// GET /verify-otp
func (h *AuthHandler) ShowVerifyOTP(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil || session.PendingEmail == "" {
		// 検証待ちがなければサインアップからやり直し
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	data := newPageData(r, "確認コードの入力")
	data.Email = session.PendingEmail
	renderPage(w, http.StatusOK, "verify_otp", data)
}

// VerifyOTP は確認コードを検証し、パスワード設定画面へ進める。
// POST /verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	code := strings.TrimSpace(r.PostFormValue("code"))

	if err := h.service.VerifyOTP(r.Context(), session, code); err != nil {
		if apiErr, ok := model.AsAPIError(err); ok && apiErr.Code == model.ErrCodeNoPendingIdentity {
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
			return
		}
		data := newPageData(r, "確認コードの入力")
		if session != nil {
			data.Email = session.PendingEmail
		}
		data.Error = userMessage(err)
		renderPage(w, statusFor(err), "verify_otp", data)
		return
	}

	http.Redirect(w, r, "/set-password", http.StatusSeeOther)
}

// ShowSetPassword はパスワード設定フォームを表示する。
// GET /set-password
func (h *AuthHandler) ShowSetPassword(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil || session.VerifiedEmail == "" {
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	renderPage(w, http.StatusOK, "set_password", newPageData(r, "パスワードの設定"))
}

// SetPassword はユーザーを作成し、メモ一覧へ進める。
// POST /set-password
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	password := r.PostFormValue("password")

	if password == "" {
		data := newPageData(r, "パスワードの設定")
		data.Error = userMessage(model.NewEmptyInputError("パスワード"))
		renderPage(w, http.StatusBadRequest, "set_password", data)
		return
	}

	if _, err := h.service.SetPassword(r.Context(), session, password); err != nil {
		if apiErr, ok := model.AsAPIError(err); ok && apiErr.Code == model.ErrCodeNoVerifiedIdentity {
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
			return
		}
		data := newPageData(r, "パスワードの設定")
		data.Error = userMessage(err)
		renderPage(w, statusFor(err), "set_password", data)
		return
	}

	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// ShowLogin はログインフォームを表示する。
// GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	renderPage(w, http.StatusOK, "login", newPageData(r, "ログイン"))
}

// Login は既存ユーザーを認証し、新しいセッションCookieを設定する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if email == "" || password == "" {
		data := newPageData(r, "ログイン")
		data.Email = email
		data.Error = userMessage(model.NewEmptyInputError("メールアドレスとパスワード"))
		renderPage(w, http.StatusBadRequest, "login", data)
		return
	}

	session, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		data := newPageData(r, "ログイン")
		data.Email = email
		data.Error = userMessage(err)
		renderPage(w, statusFor(err), "login", data)
		return
	}

	// セッション固定化を避けるため、常に新しいセッションIDをCookieに設定する
	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// Logout はセッションを破棄してトップへ戻す。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setSessionCookie はセッションIDをHTTP Only Cookieに設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを破棄する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// statusFor はエラーをHTTPステータスコードにマッピングする。
func statusFor(err error) int {
	apiErr, ok := model.AsAPIError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch apiErr.Category {
	case "auth":
		return http.StatusUnprocessableEntity
	case "validation":
		return http.StatusBadRequest
	case "notfound":
		return http.StatusNotFound
	case "delivery":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
