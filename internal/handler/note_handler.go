package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/memoapp/internal/middleware"
	"github.com/hitoshi/memoapp/internal/model"
)

// NoteServiceInterface はメモハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.Note, error)
	Create(ctx context.Context, userID, title, content string) (*model.Note, error)
	Get(ctx context.Context, id, userID string) (*model.Note, error)
	Update(ctx context.Context, id, userID, title, content string) (*model.Note, error)
	Delete(ctx context.Context, id, userID string) error
}

// NoteHandler はメモCRUDのHTTPハンドラー。
// すべてのルートはRequireAuthの内側に配置されるため、
// コンテキストには常に認証済みユーザーIDが存在する。
type NoteHandler struct {
	service NoteServiceInterface
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface) *NoteHandler {
	return &NoteHandler{service: service}
}

// ListNotes はメモ一覧を表示する。
// GET /notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	notes, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list notes", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := newPageData(r, "メモ一覧")
	data.Notes = notes
	renderPage(w, http.StatusOK, "notes", data)
}

// ShowNewNote は新規メモの作成フォームを表示する。
// GET /notes/new
func (h *NoteHandler) ShowNewNote(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "note_form", newPageData(r, "新規メモ"))
}

// CreateNote はメモを作成して詳細画面へリダイレクトする。
// POST /notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	note, err := h.service.Create(r.Context(), userID, r.PostFormValue("title"), r.PostFormValue("content"))
	if err != nil {
		slog.Error("failed to create note", slog.String("error", err.Error()))
		data := newPageData(r, "新規メモ")
		data.Error = userMessage(err)
		renderPage(w, statusFor(err), "note_form", data)
		return
	}

	http.Redirect(w, r, "/notes/"+note.ID, http.StatusSeeOther)
}

// ShowNote はメモの詳細を表示する。
// GET /notes/{id}
func (h *NoteHandler) ShowNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	note, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.renderNoteError(w, r, err)
		return
	}

	data := newPageData(r, note.Title)
	data.Note = note
	// 本文は保存時にサニタイズ済みのHTML
	data.NoteContent = template.HTML(note.Content)
	renderPage(w, http.StatusOK, "note", data)
}

// ShowEditNote はメモの編集フォームを表示する。
// GET /notes/{id}/edit
func (h *NoteHandler) ShowEditNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	note, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.renderNoteError(w, r, err)
		return
	}

	data := newPageData(r, "メモの編集")
	data.Note = note
	renderPage(w, http.StatusOK, "note_form", data)
}

// UpdateNote はメモを更新して詳細画面へリダイレクトする。
// PUT /notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id := chi.URLParam(r, "id")
	note, err := h.service.Update(r.Context(), id, userID, r.PostFormValue("title"), r.PostFormValue("content"))
	if err != nil {
		h.renderNoteError(w, r, err)
		return
	}

	http.Redirect(w, r, "/notes/"+note.ID, http.StatusSeeOther)
}

// DeleteNote はメモを削除して一覧へリダイレクトする。
// DELETE /notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.renderNoteError(w, r, err)
		return
	}

	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

// renderNoteError はメモ操作のエラーを表示する。
// 未検出（他人のメモを含む）は404ページ、それ以外は500。
func (h *NoteHandler) renderNoteError(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := model.AsAPIError(err); ok && apiErr.Code == model.ErrCodeNoteNotFound {
		renderNotFound(w, r)
		return
	}
	slog.Error("note operation failed", slog.String("error", err.Error()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
