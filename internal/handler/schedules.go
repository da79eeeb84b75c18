package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

type scheduleRequest struct {
	Name      string  `json:"name" validate:"required,max=100"`
	Monday    *string `json:"monday"`
	Tuesday   *string `json:"tuesday"`
	Wednesday *string `json:"wednesday"`
	Thursday  *string `json:"thursday"`
	Friday    *string `json:"friday"`
	Saturday  *string `json:"saturday"`
	Sunday    *string `json:"sunday"`
}

// validTimes checks every set weekday against the "HH:MM" layout the
// scheduler parses.
func (req *scheduleRequest) validTimes() bool {
	for _, t := range []*string{req.Monday, req.Tuesday, req.Wednesday, req.Thursday, req.Friday, req.Saturday, req.Sunday} {
		if t == nil {
			continue
		}
		if _, err := time.Parse("15:04", *t); err != nil {
			return false
		}
	}
	return true
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !req.validTimes() {
		h.errorResponse(w, r, "times must use the HH:MM 24-hour format")
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	schedule := &domain.Schedule{
		UserID:    myInfo.ID,
		Name:      req.Name,
		Monday:    req.Monday,
		Tuesday:   req.Tuesday,
		Wednesday: req.Wednesday,
		Thursday:  req.Thursday,
		Friday:    req.Friday,
		Saturday:  req.Saturday,
		Sunday:    req.Sunday,
	}

	if err := h.repository.CreateSchedule(schedule); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule created", schedule)
}

func (h *Handler) GetMySchedules(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	schedules, err := h.repository.GetSchedulesByUser(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedules fetched", schedules)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	h.successResponse(w, r, "schedule fetched", schedule)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !req.validTimes() {
		h.errorResponse(w, r, "times must use the HH:MM 24-hour format")
		return
	}

	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	schedule.Name = req.Name
	schedule.Monday = req.Monday
	schedule.Tuesday = req.Tuesday
	schedule.Wednesday = req.Wednesday
	schedule.Thursday = req.Thursday
	schedule.Friday = req.Friday
	schedule.Saturday = req.Saturday
	schedule.Sunday = req.Sunday

	if err := h.repository.UpdateSchedule(schedule); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "schedule changed concurrently, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "schedule updated", schedule)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	if err := h.repository.DeleteSchedule(schedule.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "schedule deleted", nil)
}
