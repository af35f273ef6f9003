package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"
	"github.com/pavelanni/dumpquiz/internal/handler/views"
	appI18n "github.com/pavelanni/dumpquiz/internal/i18n"
	"github.com/pavelanni/dumpquiz/internal/loader"
	"github.com/pavelanni/dumpquiz/internal/model"
)

const maxUploadSize = 10 << 20

func (h *Handler) handleAdminUsersPage(w http.ResponseWriter, r *http.Request) {
	h.renderUsers(w, r, "")
}

func (h *Handler) renderUsers(w http.ResponseWriter, r *http.Request, msg string) {
	users, err := h.store.ListUsers()
	if err != nil {
		h.serverError(w, "failed to list users", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.AdminUsersPage(users, msg).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	displayName := r.FormValue("display_name")
	password := r.FormValue("password")
	role := model.UserRole(r.FormValue("role"))

	if username == "" || password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}
	if role != model.UserRoleAdmin {
		role = model.UserRoleStudent
	}

	existing, err := h.store.GetUserByUsername(username)
	if err != nil {
		h.serverError(w, "failed to look up user", err)
		return
	}
	if existing != nil {
		http.Error(w, "username already taken", http.StatusConflict)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, "failed to hash password", err)
		return
	}

	if displayName == "" {
		displayName = username
	}

	_, err = h.store.CreateUser(model.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		h.serverError(w, "failed to create user", err)
		return
	}
	slog.Info("user created", "username", username, "role", role)

	http.Redirect(w, r, h.path("/admin/users"), http.StatusSeeOther)
}

func (h *Handler) handleToggleUserActive(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}
	if me := model.UserFromContext(r.Context()); me != nil && me.ID == id {
		http.Error(w, "cannot deactivate yourself", http.StatusBadRequest)
		return
	}

	if err := h.store.ToggleUserActive(id); err != nil {
		slog.Error("failed to toggle user active", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.path("/admin/users"), http.StatusSeeOther)
}

func (h *Handler) handleAdminQuestionsPage(w http.ResponseWriter, r *http.Request) {
	h.renderQuestionsAdmin(w, r, http.StatusOK, "")
}

func (h *Handler) renderQuestionsAdmin(w http.ResponseWriter, r *http.Request, status int, msg string) {
	count, err := h.store.QuestionCount()
	if err != nil {
		h.serverError(w, "count questions", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.AdminQuestionsPage(count, msg).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleUploadQuestions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("questions_file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	out, err := loader.Import(h.store, header.Filename, data)
	if err != nil {
		slog.Warn("question upload rejected", "filename", header.Filename, "error", err)
		h.renderQuestionsAdmin(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var msg string
	if out.Unchanged {
		msg = appI18n.T(r.Context(), "UploadDuplicate")
	} else {
		msg = appI18n.Td(r.Context(), "Imported", map[string]any{"Count": out.Count, "Name": out.Name})
	}
	h.renderQuestionsAdmin(w, r, http.StatusOK, msg)
}
