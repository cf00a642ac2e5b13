package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists the catalog in a SQLite database, one row per book,
// ordered by position.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db dir: %w", ErrIO, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrIO, err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Close closes the DB.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Location() string { return s.path }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            position INTEGER PRIMARY KEY,
            isbn TEXT NOT NULL,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            edition TEXT NOT NULL,
            publication TEXT NOT NULL,
            category TEXT NOT NULL,
            borrowed BOOLEAN NOT NULL DEFAULT 0,
            rating REAL NOT NULL DEFAULT 0,
            review TEXT NOT NULL,
            added_at INTEGER NOT NULL,
            last_borrowed_at INTEGER NOT NULL DEFAULT 0,
            borrower_name TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Persister
// ---------------------------------------------------------------------------

func (s *SQLiteStore) Load(capacity int) ([]Book, error) {
	rows, err := s.db.Query(`
        SELECT isbn,title,author,edition,publication,category,borrowed,rating,review,
               added_at,last_borrowed_at,borrower_name
        FROM books ORDER BY position LIMIT ?`, capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: query books: %w", ErrIO, err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var (
			b                 Book
			added, borrowedAt int64
		)
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &b.Edition, &b.Publication, &b.Category,
			&b.Borrowed, &b.Rating, &b.Review, &added, &borrowedAt, &b.BorrowerName); err != nil {
			return nil, fmt.Errorf("%w: scan book: %w", ErrIO, err)
		}
		b.AddedAt = fromUnix(added)
		b.LastBorrowedAt = fromUnix(borrowedAt)
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read books: %w", ErrIO, err)
	}
	return books, nil
}

// Save replaces every row in one transaction.
func (s *SQLiteStore) Save(books []Book) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return fmt.Errorf("%w: clear books: %w", ErrIO, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO books(position,isbn,title,author,edition,publication,category,
        borrowed,rating,review,added_at,last_borrowed_at,borrower_name) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %w", ErrIO, err)
	}
	defer stmt.Close()

	for i, b := range books {
		if _, err := stmt.Exec(i, b.ISBN, b.Title, b.Author, b.Edition, b.Publication, b.Category,
			b.Borrowed, b.Rating, b.Review, toUnix(b.AddedAt), toUnix(b.LastBorrowedAt), b.BorrowerName); err != nil {
			return fmt.Errorf("%w: insert %q: %w", ErrIO, b.ISBN, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrIO, err)
	}
	return nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
