package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// ListActivities returns a page of the audit trail, newest first (admin only).
// Pages are cached briefly; the trail is append-only so staleness is bounded
// by the TTL.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	key := fmt.Sprintf("activities_admin:%d:%d", page, limit)
	value, err := h.cache.GetOrSet(r.Context(), key, 0, func(ctx context.Context) (any, error) {
		return h.repo.ListActivityLogs(ctx, page, limit)
	})
	if err != nil {
		h.internalError(w, err, "could not list activities")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"activities": value,
		"page":       page,
		"limit":      limit,
	})
}
