package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pdxmph/tasks/internal/tasks"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY,
    position INTEGER NOT NULL,
    text TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT 0,
    priority TEXT CHECK (priority IN ('low', 'medium', 'high')) NOT NULL DEFAULT 'medium',
    created_at TIMESTAMP NOT NULL,
    completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks (position);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks (completed);`

// SQLiteBackend keeps the task list in a SQLite database file
type SQLiteBackend struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteBackend opens (or creates) the database at path and applies any
// pending migrations. The caller is responsible for calling Close.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite backend: empty path")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	b := &SQLiteBackend{conn: conn, path: path, logger: slog.Default()}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := b.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return b, nil
}

// Name returns the backend identifier
func (b *SQLiteBackend) Name() string {
	return "sqlite"
}

// Path returns the database file location
func (b *SQLiteBackend) Path() string {
	return b.path
}

// Close closes the database connection
func (b *SQLiteBackend) Close() error {
	return b.conn.Close()
}

// Load returns all tasks in insertion order
func (b *SQLiteBackend) Load() ([]tasks.Task, error) {
	query := `
		SELECT id, text, completed, priority, created_at, completed_at
		FROM tasks
		ORDER BY position
	`

	rows, err := b.conn.Query(query)
	if err != nil {
		return nil, b.loadError(fmt.Errorf("querying tasks: %w", err))
	}
	defer rows.Close()

	loaded := []tasks.Task{}
	for rows.Next() {
		var (
			t           tasks.Task
			priority    string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &priority, &t.CreatedAt, &completedAt); err != nil {
			return nil, b.loadError(fmt.Errorf("scanning task: %w", err))
		}
		t.Priority = tasks.Priority(priority)
		if completedAt.Valid {
			at := completedAt.Time
			t.CompletedAt = &at
		}
		loaded = append(loaded, t)
	}
	if err := rows.Err(); err != nil {
		return nil, b.loadError(err)
	}

	return loaded, nil
}

// Save replaces every stored row with list inside a single transaction
func (b *SQLiteBackend) Save(list []tasks.Task) error {
	tx, err := b.conn.Begin()
	if err != nil {
		return b.saveError(fmt.Errorf("starting transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return b.saveError(fmt.Errorf("clearing tasks: %w", err))
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tasks (id, position, text, completed, priority, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return b.saveError(fmt.Errorf("preparing insert: %w", err))
	}
	defer stmt.Close()

	for i, t := range list {
		var completedAt sql.NullTime
		if t.CompletedAt != nil {
			completedAt = sql.NullTime{Time: *t.CompletedAt, Valid: true}
		}
		if _, err := stmt.Exec(t.ID, i, t.Text, t.Completed, string(t.Priority), t.CreatedAt, completedAt); err != nil {
			return b.saveError(fmt.Errorf("inserting task %d: %w", t.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return b.saveError(fmt.Errorf("committing tasks: %w", err))
	}
	return nil
}

func (b *SQLiteBackend) loadError(err error) error {
	return &tasks.StorageError{Op: "load", Path: b.path, Err: err}
}

func (b *SQLiteBackend) saveError(err error) error {
	return &tasks.StorageError{Op: "save", Path: b.path, Err: err}
}

func init() {
	Register("sqlite", func(path string) (Backend, error) { return NewSQLiteBackend(path) })
}
