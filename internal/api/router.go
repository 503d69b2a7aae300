package api

import "net/http"

// RegisterRoutes wires every handler onto the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Books
	mux.HandleFunc("POST /books", h.createBook)
	mux.HandleFunc("GET /books", h.listBooks)
	mux.HandleFunc("GET /books/{bookID}", h.getBook)
	mux.HandleFunc("DELETE /books/{bookID}", h.deleteBook)

	// Ideas
	mux.HandleFunc("GET /books/{bookID}/ideas", h.listIdeas)
	mux.HandleFunc("GET /ideas/{ideaID}", h.getIdea)
	mux.HandleFunc("GET /books/{bookID}/mastery", h.bookMastery)

	// Sessions
	mux.HandleFunc("GET /books/{bookID}/session", h.getSession)
	mux.HandleFunc("POST /books/{bookID}/session/refresh", h.refreshSession)
	mux.HandleFunc("POST /sessions/prepare", h.prepareSessions)

	// Attempts
	mux.HandleFunc("POST /tests/{testID}/attempts", h.startAttempt)
	mux.HandleFunc("POST /attempts/{attemptID}/answers", h.submitAnswer)
	mux.HandleFunc("POST /attempts/{attemptID}/complete", h.completeAttempt)
	mux.HandleFunc("POST /attempts/{attemptID}/retry", h.retryAttempt)

	// Review
	mux.HandleFunc("GET /books/{bookID}/review/stats", h.reviewStats)
}
