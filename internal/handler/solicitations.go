package handler

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) GetSolicitations(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "solicitations fetched", map[string]any{
		"refreshedAt":   h.records.RefreshedAt(),
		"solicitations": h.records.ListAll(),
	})
}

// RefreshSolicitations triggers an upstream retrieval outside the schedule
// cycle. The scheduler's own batch refresh uses the same code path.
func (h *Handler) RefreshSolicitations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Scheduler.PipelineTimeout)*time.Second)
	defer cancel()

	if err := h.pipeline.RefreshRecords(ctx); err != nil {
		h.errorResponse(w, r, "refresh failed: "+err.Error())
		return
	}

	h.successResponse(w, r, "solicitations refreshed", map[string]any{
		"count": len(h.records.ListAll()),
	})
}
