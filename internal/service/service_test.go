package service_test

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/book"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/domain/review"
	"github.com/ideaforge/backend/internal/store"
)

// memStore is an in-memory store.Store for service tests.
type memStore struct {
	mu sync.Mutex

	books     map[string]*book.Book
	ideas     map[string]*idea.Idea
	tests     map[string]*assessment.Test
	ready     map[string]string // bookID → testID
	attempts  map[string]*assessment.Attempt
	responses map[string][]assessment.Response // attemptID → responses
	queue     map[string]*review.QueueItem
	byResp    map[string]string // responseID → queue item ID
	mastery   map[string]*review.MasteryRecord
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		books:     make(map[string]*book.Book),
		ideas:     make(map[string]*idea.Idea),
		tests:     make(map[string]*assessment.Test),
		ready:     make(map[string]string),
		attempts:  make(map[string]*assessment.Attempt),
		responses: make(map[string][]assessment.Response),
		queue:     make(map[string]*review.QueueItem),
		byResp:    make(map[string]string),
		mastery:   make(map[string]*review.MasteryRecord),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func masteryKey(ideaID, bookID string) string { return ideaID + "/" + bookID }

func (m *memStore) SaveBook(_ context.Context, b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *memStore) GetBook(_ context.Context, id string) (*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ListBooks(_ context.Context) ([]*book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*book.Book, 0, len(m.books))
	for _, b := range m.books {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *memStore) SaveIdeas(_ context.Context, ideas []*idea.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, iv := range ideas {
		cp := *iv
		m.ideas[iv.ID] = &cp
	}
	return nil
}

func (m *memStore) GetIdea(_ context.Context, id string) (*idea.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.ideas[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (m *memStore) ListIdeasByBook(_ context.Context, bookID string) ([]*idea.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*idea.Idea
	for _, iv := range m.ideas {
		if iv.BookID == bookID {
			cp := *iv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateIdeaProgress(_ context.Context, ideaID string, level idea.MasteryLevel, lastPracticed time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	iv, ok := m.ideas[ideaID]
	if !ok {
		return store.ErrNotFound
	}
	iv.Mastery = level
	ts := lastPracticed
	iv.LastPracticed = &ts
	return nil
}

func (m *memStore) SaveTest(_ context.Context, t *assessment.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	cp.Questions = append(cp.Questions[:0:0], t.Questions...)
	m.tests[t.ID] = &cp
	return nil
}

func (m *memStore) GetTest(_ context.Context, id string) (*assessment.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	cp.Questions = append(cp.Questions[:0:0], t.Questions...)
	return &cp, nil
}

func (m *memStore) DeleteTest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.tests, id)
	return nil
}

func (m *memStore) SaveReadySession(_ context.Context, bookID, testID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready[bookID] = testID
	return nil
}

func (m *memStore) GetReadySessionTestID(_ context.Context, bookID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	testID, ok := m.ready[bookID]
	if !ok {
		return "", store.ErrNotFound
	}
	return testID, nil
}

func (m *memStore) ClearReadySession(_ context.Context, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ready, bookID)
	return nil
}

func (m *memStore) SaveAttempt(_ context.Context, a *assessment.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.attempts[a.ID] = &cp
	return nil
}

func (m *memStore) GetAttempt(_ context.Context, id string) (*assessment.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	cp.Responses = append(cp.Responses[:0:0], m.responses[id]...)
	return &cp, nil
}

func (m *memStore) UpdateAttempt(_ context.Context, a *assessment.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[a.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *a
	cp.Responses = nil
	m.attempts[a.ID] = &cp
	return nil
}

func (m *memStore) SaveResponse(_ context.Context, r *assessment.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[r.AttemptID] = append(m.responses[r.AttemptID], *r)
	return nil
}

func (m *memStore) UpdateResponse(_ context.Context, r *assessment.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.responses[r.AttemptID]
	for i := range list {
		if list[i].ID == r.ID {
			list[i] = *r
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) SaveQueueItem(_ context.Context, item *review.QueueItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byResp[item.ResponseID]; dup {
		return false, nil
	}
	cp := *item
	m.queue[item.ID] = &cp
	m.byResp[item.ResponseID] = item.ID
	return true, nil
}

func (m *memStore) ListPendingQueueItems(_ context.Context, bookID string) ([]review.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []review.QueueItem
	for _, item := range m.queue {
		if item.BookID == bookID && !item.Completed && !item.Curveball {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (m *memStore) MarkQueueItemsCompleted(_ context.Context, ids []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if item, ok := m.queue[id]; ok {
			item.Completed = true
			ts := at
			item.CompletedAt = &ts
		}
	}
	return nil
}

func (m *memStore) CountPendingQueueItems(_ context.Context, bookID string) (review.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stats review.QueueStats
	for _, item := range m.queue {
		if item.BookID != bookID || item.Completed || item.Curveball {
			continue
		}
		switch item.Type {
		case question.TypeSingleChoice:
			stats.SingleChoice++
		case question.TypeMultiChoice:
			stats.MultiChoice++
		case question.TypeOpenEnded:
			stats.OpenEnded++
		}
	}
	return stats, nil
}

func (m *memStore) DeleteCompletedQueueItemsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, item := range m.queue {
		if item.Completed && item.CompletedAt != nil && item.CompletedAt.Before(cutoff) {
			delete(m.queue, id)
			delete(m.byResp, item.ResponseID)
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetMasteryRecord(_ context.Context, ideaID, bookID string) (*review.MasteryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.mastery[masteryKey(ideaID, bookID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) SaveMasteryRecord(_ context.Context, rec *review.MasteryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.mastery[masteryKey(rec.IdeaID, rec.BookID)] = &cp
	return nil
}

func (m *memStore) ListMasteryRecordsByBook(_ context.Context, bookID string) ([]*review.MasteryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*review.MasteryRecord
	for _, rec := range m.mastery {
		if rec.BookID == bookID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}
