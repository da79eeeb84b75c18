package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/bidwatch-dev/bidwatch/backend/internal/criteria"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

type filterRequest struct {
	Name     string         `json:"name" validate:"required,max=100"`
	Criteria *criteria.Node `json:"criteria" validate:"required"`
}

func (h *Handler) CreateFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := req.Criteria.Validate(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	filter := &domain.Filter{
		UserID:   myInfo.ID,
		Name:     req.Name,
		Criteria: req.Criteria,
	}

	if err := h.repository.CreateFilter(filter); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "filter created", filter)
}

func (h *Handler) GetMyFilters(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	filters, err := h.repository.GetFiltersByUser(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "filters fetched", filters)
}

func (h *Handler) GetFilter(w http.ResponseWriter, r *http.Request) {
	filter := r.Context().Value(FilterCtx).(*domain.Filter)
	h.successResponse(w, r, "filter fetched", filter)
}

func (h *Handler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := req.Criteria.Validate(); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	filter := r.Context().Value(FilterCtx).(*domain.Filter)
	filter.Name = req.Name
	filter.Criteria = req.Criteria

	if err := h.repository.UpdateFilter(filter); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "filter changed concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "filter updated", filter)
}

func (h *Handler) DeleteFilter(w http.ResponseWriter, r *http.Request) {
	filter := r.Context().Value(FilterCtx).(*domain.Filter)

	if err := h.repository.DeleteFilter(filter.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "filter deleted", nil)
}

// TestFilter runs a criteria expression against the current snapshot
// without saving anything, so users can debug their filters. Malformed
// expressions come back as a plain error message, not a failed run.
func (h *Handler) TestFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Criteria *criteria.Node `json:"criteria" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	matched := make([]domain.Solicitation, 0)
	for _, solicitation := range h.records.ListAll() {
		ok, err := h.evaluator.Evaluate(req.Criteria, solicitation)
		if err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		if ok {
			matched = append(matched, solicitation)
		}
	}

	h.successResponse(w, r, "filter evaluated", matched)
}
