// Package store keeps bank reviews in SQLite, in the banks/reviews layout
// the review API is served from.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/cxdash/internal/model"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS banks (
		bank_id INTEGER PRIMARY KEY AUTOINCREMENT,
		bank_name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS reviews (
		review_id TEXT PRIMARY KEY,
		bank_id INTEGER NOT NULL REFERENCES banks(bank_id),
		review_text TEXT NOT NULL DEFAULT '',
		rating INTEGER NOT NULL,
		review_date TEXT,
		sentiment_score REAL NOT NULL,
		sentiment_label TEXT NOT NULL,
		topic_confidence REAL NOT NULL DEFAULT 0,
		theme TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_bank ON reviews(bank_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_theme ON reviews(theme);
	CREATE INDEX IF NOT EXISTS idx_reviews_confidence ON reviews(topic_confidence DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// AddBanks registers bank names, returning how many were new.
func (s *Store) AddBanks(names []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n, err := addBanks(tx, names)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func addBanks(tx *sql.Tx, names []string) (int, error) {
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO banks (bank_name) VALUES (?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		result, err := stmt.Exec(name)
		if err != nil {
			return added, fmt.Errorf("insert bank %q: %w", name, err)
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			added++
		}
	}
	return added, nil
}

// SaveReviews stores reviews, returning count of new reviews inserted.
// Banks are registered on the fly. A review whose ID already exists is
// left untouched.
// Thread-safe: acquires write lock.
func (s *Store) SaveReviews(reviews []model.Review) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(reviews) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	names := make([]string, 0, len(reviews))
	for _, r := range reviews {
		names = append(names, r.BankName)
	}
	if _, err := addBanks(tx, names); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO reviews (
			review_id, bank_id, review_text, rating, review_date,
			sentiment_score, sentiment_label, topic_confidence, theme
		)
		SELECT ?, bank_id, ?, ?, ?, ?, ?, ?, ? FROM banks WHERE bank_name = ?
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	newCount := 0
	for _, r := range reviews {
		if r.ID == "" || r.BankName == "" {
			return newCount, fmt.Errorf("review %q: id and bank_name are required", r.ID)
		}
		result, err := stmt.Exec(
			r.ID,
			r.Text,
			r.Rating,
			nullString(r.Date),
			r.SentimentScore,
			string(r.SentimentLabel),
			r.TopicConfidence,
			nullString(r.Theme),
			r.BankName,
		)
		if err != nil {
			return newCount, fmt.Errorf("insert review %q: %w", r.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return newCount, err
		}
		if affected > 0 {
			newCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newCount, nil
}

// Banks returns every registered bank name, sorted.
// Thread-safe: acquires read lock.
func (s *Store) Banks() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT bank_name FROM banks ORDER BY bank_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Reviews returns every stored review ordered by ID.
// Thread-safe: acquires read lock.
func (s *Store) Reviews() ([]model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT r.review_id, r.review_text, r.rating, r.review_date, b.bank_name,
			r.sentiment_score, r.sentiment_label, r.topic_confidence, r.theme
		FROM reviews r
		JOIN banks b ON r.bank_id = b.bank_id
		ORDER BY r.review_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		var date, theme sql.NullString
		var label string
		err := rows.Scan(
			&r.ID,
			&r.Text,
			&r.Rating,
			&date,
			&r.BankName,
			&r.SentimentScore,
			&label,
			&r.TopicConfidence,
			&theme,
		)
		if err != nil {
			return nil, err
		}
		r.Date = date.String
		r.Theme = theme.String
		r.SentimentLabel = model.SentimentLabel(label)
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

// Count returns the number of stored reviews.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&n)
	return n, err
}

// nullString stores empty strings as NULL.
func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
