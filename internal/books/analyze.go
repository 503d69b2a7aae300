package books

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ideaforge/backend/internal/domain/book"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/llm"
)

// Analyzer extracts discrete, practiceable ideas from a book via the LLM.
type Analyzer struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(provider llm.Provider, logger *slog.Logger) *Analyzer {
	return &Analyzer{provider: provider, logger: logger}
}

const analyzeSystemPrompt = `You distill books into their core ideas for a learning app.
Each idea must be a self-contained concept a reader could practice and apply,
named in a short title with a 2-4 sentence description.
Respond with ONLY the requested JSON. No explanation, no markdown.`

type rawIdeas struct {
	Ideas []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"ideas"`
}

const analyzeAttempts = 2

// ExtractIdeas asks the LLM for the book's core ideas and returns them as
// unstarted Idea entities scoped to the book. It retries once on a malformed
// reply.
func (a *Analyzer) ExtractIdeas(ctx context.Context, b *book.Book, count int) ([]*idea.Idea, error) {
	if count <= 0 {
		count = 10
	}
	prompt := fmt.Sprintf(`List the %d most important ideas in this book.

BOOK: %s
AUTHOR: %s

Respond with ONLY this JSON:
{"ideas": [{"title": "...", "description": "..."}, ...]}`, count, b.Title, b.Author)

	var lastErr error
	for attempt := 0; attempt < analyzeAttempts; attempt++ {
		raw, err := a.provider.Complete(ctx, analyzeSystemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		jsonStr := llm.ExtractJSON(raw)
		if jsonStr == "" {
			lastErr = fmt.Errorf("no JSON object in analysis response")
			continue
		}

		var parsed rawIdeas
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
			lastErr = fmt.Errorf("invalid analysis JSON: %w", err)
			continue
		}

		var ideas []*idea.Idea
		for _, raw := range parsed.Ideas {
			title := strings.TrimSpace(raw.Title)
			desc := strings.TrimSpace(raw.Description)
			if title == "" || desc == "" {
				continue
			}
			ideas = append(ideas, idea.New(b.ID, b.Title, title, desc))
		}
		if len(ideas) == 0 {
			lastErr = fmt.Errorf("analysis produced no usable ideas")
			continue
		}

		a.logger.Info("book analyzed", "book_id", b.ID, "ideas", len(ideas))
		return ideas, nil
	}

	return nil, fmt.Errorf("book analysis failed after %d attempts: %w", analyzeAttempts, lastErr)
}
