// Package inbox persists contact-form submissions in SQLite so a message is
// kept even when the mail relay rejects it.
package inbox

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Message is one contact-form submission.
type Message struct {
	ID        int64
	Name      string
	Email     string
	Body      string
	CreatedAt time.Time
	Sent      bool
	Error     string
}

// Store wraps a SQLite database of contact messages.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the dashboard read while a submission is being written;
	// busy_timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    sent INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);
`)
	return err
}

// Save stores m as unsent and returns its id.
func (s *Store) Save(m Message) (int64, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO messages (name, email, body, created_at) VALUES (?, ?, ?, ?)`,
		m.Name, m.Email, m.Body, m.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(id int64) error {
	_, err := s.db.Exec(`UPDATE messages SET sent = 1, error = '' WHERE id = ?`, id)
	return err
}

// MarkFailed records why delivery failed.
func (s *Store) MarkFailed(id int64, reason string) error {
	_, err := s.db.Exec(`UPDATE messages SET sent = 0, error = ? WHERE id = ?`, reason, id)
	return err
}

// Get returns a single message by id.
func (s *Store) Get(id int64) (Message, error) {
	row := s.db.QueryRow(`SELECT id, name, email, body, created_at, sent, error FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

// List returns the newest messages first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT id, name, email, body, created_at, sent, error FROM messages ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Count returns the number of stored messages.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

// Delete removes a message.
func (s *Store) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(sc scanner) (Message, error) {
	var m Message
	var created string
	var sent int
	if err := sc.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &created, &sent, &m.Error); err != nil {
		return Message{}, err
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, created)
	m.Sent = sent == 1
	return m, nil
}
