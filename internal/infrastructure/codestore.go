package infrastructure

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrCodeNotFound is returned when a login code is unknown, expired or
// already used.
var ErrCodeNotFound = errors.New("login code not found")

// CodeStore persists one-time admin login codes in a local sqlite file so
// a restart between /logincode and the panel login does not strand the
// admin.
type CodeStore struct {
	db *sql.DB
}

func NewCodeStore(path string) (*CodeStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open code store: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS login_codes (
		code TEXT PRIMARY KEY,
		telegram_id INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate code store: %w", err)
	}
	return &CodeStore{db: db}, nil
}

func (s *CodeStore) Close() error { return s.db.Close() }

// Put stores a code with its TTL, replacing any previous code with the
// same value.
func (s *CodeStore) Put(code string, telegramID int64, ttl time.Duration) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO login_codes (code, telegram_id, expires_at) VALUES (?, ?, ?)`,
		code, telegramID, time.Now().Add(ttl).Unix(),
	)
	return err
}

// Take looks a code up and deletes it in the same transaction, so each
// code redeems at most once.
func (s *CodeStore) Take(code string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var telegramID, expiresAt int64
	err = tx.QueryRow(`SELECT telegram_id, expires_at FROM login_codes WHERE code = ?`, code).
		Scan(&telegramID, &expiresAt)
	if err == sql.ErrNoRows {
		return 0, ErrCodeNotFound
	}
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`DELETE FROM login_codes WHERE code = ?`, code); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if time.Now().Unix() > expiresAt {
		return 0, ErrCodeNotFound
	}
	return telegramID, nil
}

// PruneExpired clears stale codes; called opportunistically from the code
// generator.
func (s *CodeStore) PruneExpired() {
	if _, err := s.db.Exec(`DELETE FROM login_codes WHERE expires_at < ?`, time.Now().Unix()); err != nil {
		Log.Warnf("[CodeStore] prune failed: %v", err)
	}
}
