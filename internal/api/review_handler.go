package api

import "net/http"

// ── Request / Response types ────────────────────────────────────────────────

type ReviewStatsResponse struct {
	BookID       string `json:"book_id" example:"a1b2c3d4e5f6g7h8"`
	SingleChoice int    `json:"single_choice" example:"5"`
	MultiChoice  int    `json:"multi_choice" example:"1"`
	OpenEnded    int    `json:"open_ended" example:"2"`
	Total        int    `json:"total" example:"8"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// reviewStats reports pending review-queue counts for a book.
// @Summary      Review queue statistics
// @Description  Pending (not completed, not curveball) mistake counts per question type. The daily session draws at most 3 choice items and 1 open-ended item from this pool.
// @Tags         Review
// @Produce      json
// @Param        bookID  path      string  true  "Book ID"
// @Success      200     {object}  ReviewStatsResponse
// @Failure      404     {object}  map[string]string
// @Router       /books/{bookID}/review/stats [get]
func (h *Handler) reviewStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := r.PathValue("bookID")

	if _, err := h.store.GetBook(ctx, bookID); h.handleStoreError(w, err, "book") {
		return
	}
	stats, err := h.queue.Statistics(ctx, bookID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load review stats")
		return
	}
	respondJSON(w, http.StatusOK, ReviewStatsResponse{
		BookID:       bookID,
		SingleChoice: stats.SingleChoice,
		MultiChoice:  stats.MultiChoice,
		OpenEnded:    stats.OpenEnded,
		Total:        stats.Total(),
	})
}
