package api

import (
	"net/http"
	"time"
)

// ── Request / Response types ────────────────────────────────────────────────

type BloomCoverageResponse struct {
	Bloom     string `json:"bloom" example:"recall"`
	Correct   int    `json:"correct" example:"4"`
	Incorrect int    `json:"incorrect" example:"1"`
}

type MasteryResponse struct {
	IdeaID     string                  `json:"idea_id" example:"i1d2e3a4i5d6e7f8"`
	Level      string                  `json:"level" example:"intermediate"`
	Coverage   []BloomCoverageResponse `json:"coverage"`
	NextReview *string                 `json:"next_review,omitempty"`
	Reps       int                     `json:"reps" example:"3"`
	Lapses     int                     `json:"lapses" example:"1"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// listIdeas lists a book's extracted ideas.
// @Summary      List ideas
// @Tags         Ideas
// @Produce      json
// @Param        bookID  path      string  true  "Book ID"
// @Success      200     {array}   IdeaResponse
// @Failure      404     {object}  map[string]string
// @Router       /books/{bookID}/ideas [get]
func (h *Handler) listIdeas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := r.PathValue("bookID")

	if _, err := h.store.GetBook(ctx, bookID); h.handleStoreError(w, err, "book") {
		return
	}
	ideas, err := h.store.ListIdeasByBook(ctx, bookID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load ideas")
		return
	}
	respondJSON(w, http.StatusOK, ideaResponses(ideas))
}

// getIdea returns one idea.
// @Summary      Get an idea
// @Tags         Ideas
// @Produce      json
// @Param        ideaID  path      string  true  "Idea ID"
// @Success      200     {object}  IdeaResponse
// @Failure      404     {object}  map[string]string
// @Router       /ideas/{ideaID} [get]
func (h *Handler) getIdea(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ideaID := r.PathValue("ideaID")

	iv, err := h.store.GetIdea(ctx, ideaID)
	if h.handleStoreError(w, err, "idea") {
		return
	}

	resp := ideaResponse(iv)
	// The mastery record is authoritative; the idea row can lag behind.
	if level, err := h.mastery.CurrentMastery(ctx, iv.ID, iv.BookID); err == nil {
		resp.Mastery = level.String()
	}
	respondJSON(w, http.StatusOK, resp)
}

// bookMastery reports per-idea mastery and coverage for a book.
// @Summary      Book mastery overview
// @Description  Per-idea mastery level, bloom-category coverage tallies, and review scheduling state.
// @Tags         Ideas
// @Produce      json
// @Param        bookID  path      string  true  "Book ID"
// @Success      200     {array}   MasteryResponse
// @Failure      404     {object}  map[string]string
// @Router       /books/{bookID}/mastery [get]
func (h *Handler) bookMastery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := r.PathValue("bookID")

	if _, err := h.store.GetBook(ctx, bookID); h.handleStoreError(w, err, "book") {
		return
	}
	records, err := h.store.ListMasteryRecordsByBook(ctx, bookID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load mastery records")
		return
	}

	response := make([]MasteryResponse, len(records))
	for i, rec := range records {
		mr := MasteryResponse{
			IdeaID:   rec.IdeaID,
			Level:    rec.Level.String(),
			Coverage: make([]BloomCoverageResponse, 0, len(rec.Coverage)),
		}
		for bloom, tally := range rec.Coverage {
			mr.Coverage = append(mr.Coverage, BloomCoverageResponse{
				Bloom:     string(bloom),
				Correct:   tally.Correct,
				Incorrect: tally.Incorrect,
			})
		}
		if rec.State != nil {
			next := rec.State.NextReview.Format(time.RFC3339)
			mr.NextReview = &next
			mr.Reps = rec.State.Reps
			mr.Lapses = rec.State.Lapses
		}
		response[i] = mr
	}
	respondJSON(w, http.StatusOK, response)
}
