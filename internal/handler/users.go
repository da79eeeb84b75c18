package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "profile fetched", myInfo)
}

// AddUser registers an email so its owner can request login links. Repeated
// additions of the same email are harmless.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email" validate:"required,email"`
		IsAdmin bool   `json:"isAdmin"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.EnsureUser(req.Email, req.IsAdmin)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "user added", user)
}

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "users fetched", users)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid user id")
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	if myInfo.ID == id {
		h.errorResponse(w, r, "cannot delete your own account")
		return
	}

	if err := h.repository.DeleteUser(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "user deleted", nil)
}
