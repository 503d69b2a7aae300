package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
	"github.com/ideaforge/backend/internal/domain/review"
	"github.com/ideaforge/backend/internal/scheduler"
)

// ============================================================================
// Ready sessions
// ============================================================================

func (s *SQLiteStore) SaveReadySession(ctx context.Context, bookID, testID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ready_sessions (book_id, test_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (book_id) DO UPDATE SET test_id = excluded.test_id, created_at = excluded.created_at`,
		bookID, testID, time.Now().UTC())
	return err
}

func (s *SQLiteStore) GetReadySessionTestID(ctx context.Context, bookID string) (string, error) {
	var testID string
	err := s.db.QueryRowContext(ctx,
		"SELECT test_id FROM ready_sessions WHERE book_id = ?", bookID).Scan(&testID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return testID, nil
}

func (s *SQLiteStore) ClearReadySession(ctx context.Context, bookID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM ready_sessions WHERE book_id = ?", bookID)
	return err
}

// ============================================================================
// Review queue
// ============================================================================

const queueColumns = "id, idea_id, idea_title, book_id, book_title, qtype, difficulty, bloom, question_text, response_id, added_at, completed, completed_at, curveball"

// SaveQueueItem inserts a review item. The unique index on response_id makes
// mistake capture idempotent: re-inserting for the same response reports
// created == false instead of duplicating the item.
func (s *SQLiteStore) SaveQueueItem(ctx context.Context, item *review.QueueItem) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO review_queue (`+queueColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (response_id) DO NOTHING`,
		item.ID, item.IdeaID, item.IdeaTitle, item.BookID, item.BookTitle,
		string(item.Type), string(item.Difficulty), string(item.Bloom),
		item.QuestionText, item.ResponseID, item.AddedAt,
		item.Completed, item.CompletedAt, item.Curveball)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func scanQueueItem(scan func(dest ...any) error) (review.QueueItem, error) {
	var item review.QueueItem
	var qtype, difficulty, bloom string
	var completedAt sql.NullTime

	if err := scan(&item.ID, &item.IdeaID, &item.IdeaTitle, &item.BookID, &item.BookTitle,
		&qtype, &difficulty, &bloom, &item.QuestionText, &item.ResponseID,
		&item.AddedAt, &item.Completed, &completedAt, &item.Curveball); err != nil {
		return review.QueueItem{}, err
	}
	item.Type = question.Type(qtype)
	item.Difficulty = question.Difficulty(difficulty)
	item.Bloom = question.Bloom(bloom)
	if completedAt.Valid {
		t := completedAt.Time
		item.CompletedAt = &t
	}
	return item, nil
}

// ListPendingQueueItems returns not-completed, not-curveball items for the
// book, oldest first.
func (s *SQLiteStore) ListPendingQueueItems(ctx context.Context, bookID string) ([]review.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+queueColumns+` FROM review_queue
		 WHERE book_id = ? AND completed = 0 AND curveball = 0
		 ORDER BY added_at`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []review.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) MarkQueueItemsCompleted(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, at)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE review_queue SET completed = 1, completed_at = ? WHERE id IN ("+placeholders+")",
		args...)
	return err
}

func (s *SQLiteStore) CountPendingQueueItems(ctx context.Context, bookID string) (review.QueueStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT qtype, COUNT(*) FROM review_queue
		 WHERE book_id = ? AND completed = 0 AND curveball = 0
		 GROUP BY qtype`, bookID)
	if err != nil {
		return review.QueueStats{}, err
	}
	defer rows.Close()

	var stats review.QueueStats
	for rows.Next() {
		var qtype string
		var count int
		if err := rows.Scan(&qtype, &count); err != nil {
			return review.QueueStats{}, err
		}
		switch question.Type(qtype) {
		case question.TypeSingleChoice:
			stats.SingleChoice = count
		case question.TypeMultiChoice:
			stats.MultiChoice = count
		case question.TypeOpenEnded:
			stats.OpenEnded = count
		}
	}
	return stats, rows.Err()
}

// DeleteCompletedQueueItemsBefore garbage-collects completed items past the
// retention window.
func (s *SQLiteStore) DeleteCompletedQueueItemsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM review_queue WHERE completed = 1 AND completed_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ============================================================================
// Mastery records
// ============================================================================

func (s *SQLiteStore) GetMasteryRecord(ctx context.Context, ideaID, bookID string) (*review.MasteryRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT idea_id, book_id, level, coverage, review_state, mastered_at, last_curveball, updated_at
		 FROM mastery_records WHERE idea_id = ? AND book_id = ?`, ideaID, bookID)

	rec, err := scanMasteryRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanMasteryRecord(scan func(dest ...any) error) (*review.MasteryRecord, error) {
	var rec review.MasteryRecord
	var level int
	var coverage string
	var reviewState sql.NullString
	var masteredAt, lastCurveball sql.NullTime

	if err := scan(&rec.IdeaID, &rec.BookID, &level, &coverage, &reviewState,
		&masteredAt, &lastCurveball, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Level = idea.MasteryLevel(level)
	if err := json.Unmarshal([]byte(coverage), &rec.Coverage); err != nil {
		return nil, err
	}
	if reviewState.Valid {
		var state scheduler.ReviewState
		if err := json.Unmarshal([]byte(reviewState.String), &state); err != nil {
			return nil, err
		}
		rec.State = &state
	}
	if masteredAt.Valid {
		t := masteredAt.Time
		rec.MasteredAt = &t
	}
	if lastCurveball.Valid {
		t := lastCurveball.Time
		rec.LastCurveball = &t
	}
	return &rec, nil
}

func (s *SQLiteStore) SaveMasteryRecord(ctx context.Context, rec *review.MasteryRecord) error {
	coverage, err := json.Marshal(rec.Coverage)
	if err != nil {
		return err
	}
	var state any
	if rec.State != nil {
		raw, err := json.Marshal(rec.State)
		if err != nil {
			return err
		}
		state = string(raw)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO mastery_records (idea_id, book_id, level, coverage, review_state, mastered_at, last_curveball, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (idea_id, book_id) DO UPDATE SET
		   level = excluded.level,
		   coverage = excluded.coverage,
		   review_state = excluded.review_state,
		   mastered_at = excluded.mastered_at,
		   last_curveball = excluded.last_curveball,
		   updated_at = excluded.updated_at`,
		rec.IdeaID, rec.BookID, int(rec.Level), string(coverage), state,
		rec.MasteredAt, rec.LastCurveball, rec.UpdatedAt)
	return err
}

func (s *SQLiteStore) ListMasteryRecordsByBook(ctx context.Context, bookID string) ([]*review.MasteryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idea_id, book_id, level, coverage, review_state, mastered_at, last_curveball, updated_at
		 FROM mastery_records WHERE book_id = ?`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*review.MasteryRecord
	for rows.Next() {
		rec, err := scanMasteryRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
