package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/memoapp/internal/middleware"
	"github.com/hitoshi/memoapp/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	DeleteAccount(ctx context.Context, userID string) error
}

// CurrentUserFinder はセッションIDからログイン中のユーザーを取得する。
type CurrentUserFinder interface {
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// AccountHandler はアカウント設定・退会のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
	users   CurrentUserFinder
	config  AuthHandlerConfig
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface, users CurrentUserFinder, config AuthHandlerConfig) *AccountHandler {
	return &AccountHandler{
		service: service,
		users:   users,
		config:  config,
	}
}

// ShowAccount はアカウント設定画面を表示する。
// GET /account
func (h *AccountHandler) ShowAccount(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, "アカウント")

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		user, userErr := h.users.GetCurrentUser(r.Context(), cookie.Value)
		if userErr != nil {
			slog.Error("failed to load current user", slog.String("error", userErr.Error()))
		} else {
			data.Email = user.Email
		}
	}

	renderPage(w, http.StatusOK, "account", data)
}

// DeleteAccount はアカウントと所有メモを削除し、セッションCookieを破棄する。
// DELETE /account
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), userID); err != nil {
		// すでに削除済みの場合もCookieを破棄してトップへ戻す
		if apiErr, ok := model.AsAPIError(err); !ok || apiErr.Code != model.ErrCodeUserNotFound {
			data := newPageData(r, "アカウント")
			data.Error = userMessage(err)
			renderPage(w, statusFor(err), "account", data)
			return
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// clearSessionCookie はセッションCookieを破棄する。
func (h *AccountHandler) clearSessionCookie(w http.ResponseWriter) {
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
