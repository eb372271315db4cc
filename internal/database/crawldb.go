package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/VespianRex/lib2docscrape/internal/model"
)

// timestampFormats are the layouts SQLite may hand back depending on how
// the value was written.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	time.RFC3339Nano,
}

// CrawlDB provides SQLite-based storage for crawl sessions.
// It manages connection pooling and provides methods for storing and
// querying fetched pages and rejected links.
//
// Design decision: One database file holds every site's sessions rather
// than a file per site. This keeps cross-site queries and backups simple.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned instead of silently creating an empty one.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "docscrape.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; multiple readers gain little for
	// this workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Sessions record one crawl of one seed
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		seed_domain TEXT NOT NULL,
		started DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		pages_crawled INTEGER NOT NULL,
		internal_links INTEGER NOT NULL,
		external_links INTEGER NOT NULL,
		fetch_errors INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_seed ON sessions(seed);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started);

	-- Pages store individual fetches within a session
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		depth INTEGER NOT NULL,
		size INTEGER NOT NULL,
		hash TEXT,
		UNIQUE(session_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(hash);

	-- Rejected links keep the URL engine's diagnostics per session
	CREATE TABLE IF NOT EXISTS rejected_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		raw_url TEXT NOT NULL,
		source_url TEXT NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rejected_session ON rejected_links(session_id);
	CREATE INDEX IF NOT EXISTS idx_rejected_reason ON rejected_links(reason);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport persists a crawl report as a new session, including its
// pages and rejected links. Returns the session ID.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	result, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (seed, seed_domain, started, elapsed_ms, pages_crawled,
			internal_links, external_links, fetch_errors, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Seed,
		report.SeedDomain,
		report.Started.UTC().Format(time.RFC3339),
		report.Elapsed.Milliseconds(),
		report.PagesCrawled(),
		report.InternalLinks,
		report.ExternalLinks,
		report.FetchErrors,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, page := range report.Pages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (session_id, url, status_code, content_type, title, depth, size, hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, url) DO NOTHING`,
			sessionID, page.URL, page.StatusCode, page.ContentType,
			page.Title, page.Depth, page.Size, page.Hash,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page: %w", err)
		}
	}

	for _, rej := range report.Rejected {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rejected_links (session_id, raw_url, source_url, reason)
			VALUES (?, ?, ?, ?)`,
			sessionID, rej.Raw, rej.SourceURL, rej.Reason,
		); err != nil {
			return 0, fmt.Errorf("failed to insert rejected link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return sessionID, nil
}

// SessionMetadata summarizes one stored session.
type SessionMetadata struct {
	ID            int64
	Seed          string
	SeedDomain    string
	Started       time.Time
	PagesCrawled  int
	InternalLinks int
	ExternalLinks int
	FetchErrors   int
}

// ListSessions returns metadata for stored sessions of a seed, newest
// first. An empty seed lists all sessions.
func (cdb *CrawlDB) ListSessions(ctx context.Context, seed string) ([]SessionMetadata, error) {
	query := `
		SELECT id, seed, seed_domain, started, pages_crawled,
			internal_links, external_links, fetch_errors
		FROM sessions`
	args := []any{}
	if seed != "" {
		query += " WHERE seed = ?"
		args = append(args, seed)
	}
	query += " ORDER BY started DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var out []SessionMetadata
	for rows.Next() {
		var m SessionMetadata
		var started string
		if err := rows.Scan(&m.ID, &m.Seed, &m.SeedDomain, &started,
			&m.PagesCrawled, &m.InternalLinks, &m.ExternalLinks, &m.FetchErrors); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		m.Started = parseTimestamp(started)
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetReport retrieves the full report stored for a session.
func (cdb *CrawlDB) GetReport(ctx context.Context, sessionID int64) (*model.CrawlReport, error) {
	var reportJSON string
	err := cdb.db.QueryRowContext(ctx,
		"SELECT report_json FROM sessions WHERE id = ?", sessionID,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &report, nil
}

// GetLatestReport retrieves the most recent report for a seed, or nil if
// none is stored.
func (cdb *CrawlDB) GetLatestReport(ctx context.Context, seed string) (*model.CrawlReport, error) {
	var reportJSON string
	err := cdb.db.QueryRowContext(ctx,
		"SELECT report_json FROM sessions WHERE seed = ? ORDER BY started DESC LIMIT 1", seed,
	).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &report, nil
}

// StoredURLs returns the distinct page URLs recorded across all sessions
// of a seed. The check command re-validates these against the current
// policy.
func (cdb *CrawlDB) StoredURLs(ctx context.Context, seed string) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `
		SELECT DISTINCT p.url
		FROM pages p
		JOIN sessions s ON s.id = p.session_id
		WHERE s.seed = ?
		ORDER BY p.url`, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to query stored URLs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// parseTimestamp parses a timestamp in any of the layouts SQLite emits.
// Unparseable values degrade to the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
