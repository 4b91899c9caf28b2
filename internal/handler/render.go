// Package handler はHTTPハンドラーとサーバーレンダリングの画面を提供する。
package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/memoapp/internal/middleware"
	"github.com/hitoshi/memoapp/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames はbase.htmlと組み合わせて描画するページテンプレートの一覧。
var pageNames = []string{
	"signup",
	"verify_otp",
	"set_password",
	"login",
	"notes",
	"note",
	"note_form",
	"account",
	"not_found",
}

// pages はページ名ごとのパース済みテンプレートセット。
// 各ページはbase.htmlのcontentブロックを定義する。
var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	m := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		m[name] = template.Must(template.ParseFS(templateFS,
			"templates/base.html",
			fmt.Sprintf("templates/%s.html", name),
		))
	}
	return m
}

// pageData はテンプレートへ渡す描画データ。
type pageData struct {
	Title         string
	CSRFToken     string
	Authenticated bool
	Error         string // フォーム再描画時のユーザー向けメッセージ
	Email         string
	Note          *model.Note
	Notes         []*model.Note

	// NoteContent はサニタイズ済みの本文をHTMLとして描画するための値。
	// 保存時にサニタイズ済みのため、ここでのエスケープは行わない。
	NoteContent template.HTML
}

// newPageData はリクエストコンテキストから共通フィールドを埋めたpageDataを返す。
func newPageData(r *http.Request, title string) pageData {
	session := middleware.SessionFromContext(r.Context())
	return pageData{
		Title:         title,
		CSRFToken:     middleware.CSRFTokenFromContext(r.Context()),
		Authenticated: session.IsAuthenticated(),
	}
}

// renderPage は指定ページをbase.htmlレイアウトで描画する。
func renderPage(w http.ResponseWriter, statusCode int, name string, data pageData) {
	tmpl, ok := pages[name]
	if !ok {
		slog.Error("unknown page template", slog.String("name", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		slog.Error("failed to render template",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

// renderNotFound は404ページを描画する。
func renderNotFound(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r, "ページが見つかりません")
	renderPage(w, http.StatusNotFound, "not_found", data)
}

// userMessage はエラーからユーザー向けメッセージを取り出す。
// APIError以外（内部エラー）は詳細を漏らさず一般的なメッセージにする。
func userMessage(err error) string {
	if apiErr, ok := model.AsAPIError(err); ok {
		if apiErr.Action != "" {
			return apiErr.Message + " " + apiErr.Action
		}
		return apiErr.Message
	}
	return "エラーが発生しました。しばらく待ってから再度お試しください。"
}
