package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ideaforge/backend/internal/domain/assessment"
	"github.com/ideaforge/backend/internal/domain/book"
	"github.com/ideaforge/backend/internal/domain/idea"
	"github.com/ideaforge/backend/internal/domain/question"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    cover_url TEXT,
    added_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS ideas (
    id TEXT PRIMARY KEY,
    book_id TEXT NOT NULL,
    book_title TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    mastery INTEGER NOT NULL DEFAULT 0,
    last_practiced TIMESTAMP,
    current_level INTEGER,
    FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tests (
    id TEXT PRIMARY KEY,
    idea_id TEXT NOT NULL,
    book_id TEXT NOT NULL,
    book_title TEXT NOT NULL,
    test_type TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (idea_id) REFERENCES ideas(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS test_questions (
    id TEXT PRIMARY KEY,
    test_id TEXT NOT NULL,
    idea_id TEXT NOT NULL,
    qtype TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    bloom TEXT NOT NULL,
    text TEXT NOT NULL,
    options TEXT NOT NULL,
    correct TEXT NOT NULL,
    position INTEGER NOT NULL,
    curveball INTEGER NOT NULL DEFAULT 0,
    review_item_id TEXT,
    FOREIGN KEY (test_id) REFERENCES tests(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS ready_sessions (
    book_id TEXT PRIMARY KEY,
    test_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (test_id) REFERENCES tests(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    test_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP,
    completed INTEGER NOT NULL DEFAULT 0,
    score INTEGER NOT NULL DEFAULT 0,
    retry_count INTEGER NOT NULL DEFAULT 0,
    mastery_achieved INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (test_id) REFERENCES tests(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS responses (
    id TEXT PRIMARY KEY,
    attempt_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    answer TEXT NOT NULL,
    correct INTEGER NOT NULL DEFAULT 0,
    points INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (attempt_id) REFERENCES attempts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS review_queue (
    id TEXT PRIMARY KEY,
    idea_id TEXT NOT NULL,
    idea_title TEXT NOT NULL,
    book_id TEXT NOT NULL,
    book_title TEXT NOT NULL,
    qtype TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    bloom TEXT NOT NULL,
    question_text TEXT NOT NULL,
    response_id TEXT NOT NULL UNIQUE,
    added_at TIMESTAMP NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    completed_at TIMESTAMP,
    curveball INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS mastery_records (
    idea_id TEXT NOT NULL,
    book_id TEXT NOT NULL,
    level INTEGER NOT NULL DEFAULT 0,
    coverage TEXT NOT NULL,
    review_state TEXT,
    mastered_at TIMESTAMP,
    last_curveball TIMESTAMP,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (idea_id, book_id)
);
`

// SQLiteStore implements Store on a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check: *SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Books
// ============================================================================

func (s *SQLiteStore) SaveBook(ctx context.Context, b *book.Book) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO books (id, title, author, cover_url, added_at) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.Title, b.Author, b.CoverURL, b.AddedAt)
	return err
}

func (s *SQLiteStore) GetBook(ctx context.Context, id string) (*book.Book, error) {
	var b book.Book
	var coverURL sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, author, cover_url, added_at FROM books WHERE id = ?", id).
		Scan(&b.ID, &b.Title, &b.Author, &coverURL, &b.AddedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if coverURL.Valid {
		b.CoverURL = &coverURL.String
	}
	return &b, nil
}

func (s *SQLiteStore) ListBooks(ctx context.Context) ([]*book.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, author, cover_url, added_at FROM books ORDER BY added_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*book.Book
	for rows.Next() {
		var b book.Book
		var coverURL sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &coverURL, &b.AddedAt); err != nil {
			return nil, err
		}
		if coverURL.Valid {
			b.CoverURL = &coverURL.String
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

func (s *SQLiteStore) DeleteBook(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Remove everything scoped to the book, leaf tables first.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM responses WHERE attempt_id IN (SELECT a.id FROM attempts a JOIN tests t ON a.test_id = t.id WHERE t.book_id = ?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM attempts WHERE test_id IN (SELECT id FROM tests WHERE book_id = ?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM test_questions WHERE test_id IN (SELECT id FROM tests WHERE book_id = ?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ready_sessions WHERE book_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tests WHERE book_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM review_queue WHERE book_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM mastery_records WHERE book_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ideas WHERE book_id = ?", id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ============================================================================
// Ideas
// ============================================================================

func (s *SQLiteStore) SaveIdeas(ctx context.Context, ideas []*idea.Idea) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, it := range ideas {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ideas (id, book_id, book_title, title, description, mastery, last_practiced, current_level)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.BookID, it.BookTitle, it.Title, it.Description,
			int(it.Mastery), it.LastPracticed, it.CurrentLevel)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanIdea(scan func(dest ...any) error) (*idea.Idea, error) {
	var it idea.Idea
	var mastery int
	var lastPracticed sql.NullTime
	var currentLevel sql.NullInt64

	if err := scan(&it.ID, &it.BookID, &it.BookTitle, &it.Title, &it.Description,
		&mastery, &lastPracticed, &currentLevel); err != nil {
		return nil, err
	}
	it.Mastery = idea.MasteryLevel(mastery)
	if lastPracticed.Valid {
		t := lastPracticed.Time
		it.LastPracticed = &t
	}
	if currentLevel.Valid {
		lvl := int(currentLevel.Int64)
		it.CurrentLevel = &lvl
	}
	return &it, nil
}

const ideaColumns = "id, book_id, book_title, title, description, mastery, last_practiced, current_level"

func (s *SQLiteStore) GetIdea(ctx context.Context, id string) (*idea.Idea, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+ideaColumns+" FROM ideas WHERE id = ?", id)
	it, err := scanIdea(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (s *SQLiteStore) ListIdeasByBook(ctx context.Context, bookID string) ([]*idea.Idea, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ideaColumns+" FROM ideas WHERE book_id = ? ORDER BY title", bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ideas []*idea.Idea
	for rows.Next() {
		it, err := scanIdea(rows.Scan)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, it)
	}
	return ideas, rows.Err()
}

func (s *SQLiteStore) UpdateIdeaProgress(ctx context.Context, ideaID string, level idea.MasteryLevel, lastPracticed time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE ideas SET mastery = ?, last_practiced = ? WHERE id = ?",
		int(level), lastPracticed, ideaID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================================
// Tests
// ============================================================================

// SaveTest persists a test and all its questions in a single transaction.
// Either the full validated set is written, or nothing.
func (s *SQLiteStore) SaveTest(ctx context.Context, t *assessment.Test) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO tests (id, idea_id, book_id, book_title, test_type, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, t.IdeaID, t.BookID, t.BookTitle, string(t.Type), t.CreatedAt)
	if err != nil {
		return err
	}

	for i := range t.Questions {
		q := &t.Questions[i]
		options, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		correct, err := json.Marshal(q.Correct)
		if err != nil {
			return err
		}
		var reviewItemID any
		if q.ReviewItemID != "" {
			reviewItemID = q.ReviewItemID
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO test_questions (id, test_id, idea_id, qtype, difficulty, bloom, text, options, correct, position, curveball, review_item_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, t.ID, q.IdeaID, string(q.Type), string(q.Difficulty), string(q.Bloom),
			q.Text, string(options), string(correct), q.Position, q.Curveball, reviewItemID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetTest(ctx context.Context, id string) (*assessment.Test, error) {
	var t assessment.Test
	var testType string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, idea_id, book_id, book_title, test_type, created_at FROM tests WHERE id = ?", id).
		Scan(&t.ID, &t.IdeaID, &t.BookID, &t.BookTitle, &testType, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Type = assessment.TestType(testType)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, idea_id, qtype, difficulty, bloom, text, options, correct, position, curveball, review_item_id
		 FROM test_questions WHERE test_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q question.Question
		var qtype, difficulty, bloom, options, correct string
		var reviewItemID sql.NullString
		if err := rows.Scan(&q.ID, &q.IdeaID, &qtype, &difficulty, &bloom, &q.Text,
			&options, &correct, &q.Position, &q.Curveball, &reviewItemID); err != nil {
			return nil, err
		}
		q.Type = question.Type(qtype)
		q.Difficulty = question.Difficulty(difficulty)
		q.Bloom = question.Bloom(bloom)
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(correct), &q.Correct); err != nil {
			return nil, err
		}
		if reviewItemID.Valid {
			q.ReviewItemID = reviewItemID.String
		}
		t.Questions = append(t.Questions, q)
	}
	return &t, rows.Err()
}

func (s *SQLiteStore) DeleteTest(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM responses WHERE attempt_id IN (SELECT id FROM attempts WHERE test_id = ?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM attempts WHERE test_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM test_questions WHERE test_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ready_sessions WHERE test_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tests WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ============================================================================
// Attempts and responses
// ============================================================================

func (s *SQLiteStore) SaveAttempt(ctx context.Context, a *assessment.Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, test_id, created_at, completed_at, completed, score, retry_count, mastery_achieved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TestID, a.CreatedAt, a.CompletedAt, a.Completed, a.Score, a.RetryCount, a.MasteryAchieved)
	return err
}

func (s *SQLiteStore) GetAttempt(ctx context.Context, id string) (*assessment.Attempt, error) {
	var a assessment.Attempt
	var completedAt sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, test_id, created_at, completed_at, completed, score, retry_count, mastery_achieved
		 FROM attempts WHERE id = ?`, id).
		Scan(&a.ID, &a.TestID, &a.CreatedAt, &completedAt, &a.Completed, &a.Score, &a.RetryCount, &a.MasteryAchieved)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, attempt_id, question_id, answer, correct, points FROM responses WHERE attempt_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r assessment.Response
		if err := rows.Scan(&r.ID, &r.AttemptID, &r.QuestionID, &r.Answer, &r.Correct, &r.Points); err != nil {
			return nil, err
		}
		a.Responses = append(a.Responses, r)
	}
	return &a, rows.Err()
}

func (s *SQLiteStore) UpdateAttempt(ctx context.Context, a *assessment.Attempt) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET completed_at = ?, completed = ?, score = ?, retry_count = ?, mastery_achieved = ?
		 WHERE id = ?`,
		a.CompletedAt, a.Completed, a.Score, a.RetryCount, a.MasteryAchieved, a.ID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveResponse(ctx context.Context, r *assessment.Response) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO responses (id, attempt_id, question_id, answer, correct, points) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.AttemptID, r.QuestionID, r.Answer, r.Correct, r.Points)
	return err
}

func (s *SQLiteStore) UpdateResponse(ctx context.Context, r *assessment.Response) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE responses SET answer = ?, correct = ?, points = ? WHERE id = ?",
		r.Answer, r.Correct, r.Points, r.ID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
