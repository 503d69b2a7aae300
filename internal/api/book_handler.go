package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/ideaforge/backend/internal/domain/book"
	"github.com/ideaforge/backend/internal/domain/idea"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateBookRequest struct {
	Title     string `json:"title" example:"Thinking, Fast and Slow"`
	Author    string `json:"author" example:"Daniel Kahneman"`
	IdeaCount int    `json:"idea_count,omitempty" example:"10"`
}

func (r *CreateBookRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.IdeaCount < 0 {
		return errors.New("idea_count must not be negative")
	}
	return nil
}

type BookResponse struct {
	ID       string  `json:"id" example:"a1b2c3d4e5f6g7h8"`
	Title    string  `json:"title" example:"Thinking, Fast and Slow"`
	Author   string  `json:"author" example:"Daniel Kahneman"`
	CoverURL *string `json:"cover_url,omitempty"`
	AddedAt  string  `json:"added_at" example:"2025-07-01T12:00:00Z"`
	Ideas    int     `json:"ideas" example:"10"`
}

type IdeaResponse struct {
	ID            string  `json:"id" example:"i1d2e3a4i5d6e7f8"`
	BookID        string  `json:"book_id" example:"a1b2c3d4e5f6g7h8"`
	Title         string  `json:"title" example:"System 1 and System 2"`
	Description   string  `json:"description"`
	Mastery       string  `json:"mastery" example:"basic"`
	LastPracticed *string `json:"last_practiced,omitempty"`
}

type GetBookResponse struct {
	BookResponse
	IdeaList []IdeaResponse `json:"idea_list"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createBook registers a book and extracts its core ideas.
// @Summary      Add a book
// @Description  Looks up cover metadata, then extracts the book's core ideas with the content provider. Extraction can take a while.
// @Tags         Books
// @Accept       json
// @Produce      json
// @Param        body  body      CreateBookRequest  true  "Book to add"
// @Success      201   {object}  GetBookResponse
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string  "idea extraction failed"
// @Router       /books [post]
func (h *Handler) createBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateBookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	b := book.New(req.Title, req.Author)

	// Cover lookup is best-effort; a miss never blocks adding the book.
	if meta, err := h.metadata.Lookup(ctx, req.Title, req.Author); err != nil {
		h.logger.Warn("book metadata lookup failed", "title", req.Title, "error", err)
	} else {
		if b.Author == "" {
			b.Author = meta.Author
		}
		if meta.CoverURL != "" {
			cover := meta.CoverURL
			b.CoverURL = &cover
		}
	}

	count := req.IdeaCount
	if count == 0 {
		count = 10
	}
	ideas, err := h.analyzer.ExtractIdeas(ctx, b, count)
	if err != nil {
		h.logger.Error("idea extraction failed", "title", req.Title, "error", err)
		respondError(w, http.StatusBadGateway, "failed to extract ideas from book")
		return
	}

	if err := h.store.SaveBook(ctx, b); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save book")
		return
	}
	if err := h.store.SaveIdeas(ctx, ideas); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save ideas")
		return
	}

	respondJSON(w, http.StatusCreated, GetBookResponse{
		BookResponse: bookResponse(b, len(ideas)),
		IdeaList:     ideaResponses(ideas),
	})
}

// listBooks lists all registered books.
// @Summary      List books
// @Tags         Books
// @Produce      json
// @Success      200  {array}   BookResponse
// @Failure      500  {object}  map[string]string
// @Router       /books [get]
func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bks, err := h.store.ListBooks(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load books")
		return
	}

	response := make([]BookResponse, len(bks))
	for i, b := range bks {
		ideas, _ := h.store.ListIdeasByBook(ctx, b.ID)
		response[i] = bookResponse(b, len(ideas))
	}
	respondJSON(w, http.StatusOK, response)
}

// getBook returns one book with its ideas.
// @Summary      Get a book
// @Tags         Books
// @Produce      json
// @Param        bookID  path      string  true  "Book ID"
// @Success      200     {object}  GetBookResponse
// @Failure      404     {object}  map[string]string
// @Router       /books/{bookID} [get]
func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := r.PathValue("bookID")

	b, err := h.store.GetBook(ctx, bookID)
	if h.handleStoreError(w, err, "book") {
		return
	}
	ideas, err := h.store.ListIdeasByBook(ctx, bookID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load ideas")
		return
	}

	respondJSON(w, http.StatusOK, GetBookResponse{
		BookResponse: bookResponse(b, len(ideas)),
		IdeaList:     ideaResponses(ideas),
	})
}

// deleteBook removes a book and everything derived from it.
// @Summary      Delete a book
// @Tags         Books
// @Param        bookID  path  string  true  "Book ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /books/{bookID} [delete]
func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := r.PathValue("bookID")

	err := h.store.DeleteBook(ctx, bookID)
	if h.handleStoreError(w, err, "book") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func bookResponse(b *book.Book, ideaCount int) BookResponse {
	return BookResponse{
		ID:       b.ID,
		Title:    b.Title,
		Author:   b.Author,
		CoverURL: b.CoverURL,
		AddedAt:  b.AddedAt.Format(time.RFC3339),
		Ideas:    ideaCount,
	}
}

func ideaResponses(ideas []*idea.Idea) []IdeaResponse {
	out := make([]IdeaResponse, len(ideas))
	for i, iv := range ideas {
		out[i] = ideaResponse(iv)
	}
	return out
}

func ideaResponse(iv *idea.Idea) IdeaResponse {
	resp := IdeaResponse{
		ID:          iv.ID,
		BookID:      iv.BookID,
		Title:       iv.Title,
		Description: iv.Description,
		Mastery:     iv.Mastery.String(),
	}
	if iv.LastPracticed != nil {
		ts := iv.LastPracticed.Format(time.RFC3339)
		resp.LastPracticed = &ts
	}
	return resp
}
