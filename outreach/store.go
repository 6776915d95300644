// Package outreach runs backlink campaigns: prospect discovery, personalized
// email creation, recipient validation, sending, and delivery tracking.
package outreach

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Prospect is a candidate site for backlink outreach.
type Prospect struct {
	ID       int64
	URL      string
	SiteID   int64
	Category string
}

// EmailRecord tracks one sent (or attempted) outreach email.
type EmailRecord struct {
	ID        string
	Recipient string
	Subject   string
	Status    string
	Error     string
	SiteID    int64
	CreatedAt time.Time
}

// Reply is an inbound response to an outreach email, received via webhook.
type Reply struct {
	ID        int64
	Sender    string
	Subject   string
	Body      string
	SiteID    int64
	CreatedAt time.Time
}

// Stats summarizes outreach activity for a site.
type Stats struct {
	ProspectsPending int
	ProspectsUsed    int
	EmailsSent       int
	EmailsBounced    int
	Replies          int
}

// Store wraps a SQLite database tracking prospects, emails, and replies.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write, busy timeout so writers wait instead of
	// returning SQLITE_BUSY, synchronous=NORMAL to avoid an fsync per
	// transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
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
CREATE TABLE IF NOT EXISTS prospects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL,
    site_id INTEGER NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    used INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    UNIQUE(url, site_id)
);
CREATE TABLE IF NOT EXISTS emails (
    id TEXT PRIMARY KEY,
    recipient TEXT NOT NULL,
    subject TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    site_id INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS replies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sender TEXT NOT NULL,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    site_id INTEGER NOT NULL,
    created_at TEXT NOT NULL
);
`)
	return err
}

// SaveProspects inserts prospects, silently skipping URLs already stored for
// the same site.
func (s *Store) SaveProspects(prospects []Prospect) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	saved := 0
	for _, p := range prospects {
		res, err := tx.Exec(`INSERT OR IGNORE INTO prospects (url, site_id, category, created_at) VALUES (?, ?, ?, ?)`,
			p.URL, p.SiteID, p.Category, now)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			saved++
		}
	}
	return saved, tx.Commit()
}

// PopNextProspects returns up to n unused prospects for a site and marks
// them used, so repeated campaigns walk the list instead of re-mailing it.
func (s *Store) PopNextProspects(n int, siteID int64) ([]Prospect, error) {
	rows, err := s.db.Query(`SELECT id, url, site_id, category FROM prospects WHERE site_id = ? AND used = 0 ORDER BY id LIMIT ?`, siteID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prospects []Prospect
	for rows.Next() {
		var p Prospect
		if err := rows.Scan(&p.ID, &p.URL, &p.SiteID, &p.Category); err != nil {
			return nil, err
		}
		prospects = append(prospects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range prospects {
		if _, err := s.db.Exec(`UPDATE prospects SET used = 1 WHERE id = ?`, p.ID); err != nil {
			return nil, err
		}
	}
	return prospects, nil
}

// ClearProspects removes all unused prospects for a site, ahead of a fresh
// discovery run.
func (s *Store) ClearProspects(siteID int64) error {
	_, err := s.db.Exec(`DELETE FROM prospects WHERE site_id = ? AND used = 0`, siteID)
	return err
}

// RecordEmail inserts a tracking row for an outgoing email.
func (s *Store) RecordEmail(r EmailRecord) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO emails (id, recipient, subject, status, error, site_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Recipient, r.Subject, r.Status, r.Error, r.SiteID, created.Format(time.RFC3339))
	return err
}

// UpdateEmailStatus transitions a tracked email (pending -> delivered or
// bounced).
func (s *Store) UpdateEmailStatus(id, status, errMsg string) error {
	res, err := s.db.Exec(`UPDATE emails SET status = ?, error = ? WHERE id = ?`, status, errMsg, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("outreach: no tracked email with id %s", id)
	}
	return nil
}

// RecordReply stores an inbound reply.
func (s *Store) RecordReply(r Reply) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO replies (sender, subject, body, site_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.Sender, r.Subject, r.Body, r.SiteID, created.Format(time.RFC3339))
	return err
}

// Stats returns campaign counters for a site.
func (s *Store) Stats(siteID int64) (Stats, error) {
	var st Stats
	row := s.db.QueryRow(`SELECT
		COALESCE(SUM(CASE WHEN used = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN used = 1 THEN 1 ELSE 0 END), 0)
		FROM prospects WHERE site_id = ?`, siteID)
	if err := row.Scan(&st.ProspectsPending, &st.ProspectsUsed); err != nil {
		return Stats{}, err
	}
	row = s.db.QueryRow(`SELECT
		COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'bounced' THEN 1 ELSE 0 END), 0)
		FROM emails WHERE site_id = ?`, siteID)
	if err := row.Scan(&st.EmailsSent, &st.EmailsBounced); err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM replies WHERE site_id = ?`, siteID).Scan(&st.Replies); err != nil {
		return Stats{}, err
	}
	return st, nil
}
