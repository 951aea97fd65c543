package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// SQLStore keeps reports in a single reports table. The same code serves
// SQLite and Postgres; only the driver and placeholders differ.
type SQLStore struct {
	db      *sql.DB
	upsert  string
	load    string
	list    string
	dialect string
}

const createReports = `
CREATE TABLE IF NOT EXISTS reports (
	slug       TEXT PRIMARY KEY,
	company    TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// NewSQLiteStore opens (creating if needed) a SQLite database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	s := &SQLStore{
		db:      db,
		dialect: "sqlite",
		upsert: `INSERT INTO reports (slug, company, body, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET company = excluded.company, body = excluded.body, updated_at = excluded.updated_at`,
		load: `SELECT body FROM reports WHERE slug = ?`,
		list: `SELECT company FROM reports ORDER BY slug`,
	}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore connects to Postgres using a lib/pq DSN.
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &SQLStore{
		db:      db,
		dialect: "postgres",
		upsert: `INSERT INTO reports (slug, company, body, updated_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO UPDATE SET company = EXCLUDED.company, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		load: `SELECT body FROM reports WHERE slug = $1`,
		list: `SELECT company FROM reports ORDER BY slug`,
	}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createReports); err != nil {
		return fmt.Errorf("init %s schema: %w", s.dialect, err)
	}
	return nil
}

// Save upserts the report row.
func (s *SQLStore) Save(ctx context.Context, r *models.Report) error {
	data, err := encode(r)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, utils.Slug(r.Company), r.Company, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("save report %q: %w", r.Company, err)
	}
	return nil
}

// Load fetches the report for company.
func (s *SQLStore) Load(ctx context.Context, company string) (*models.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.load, utils.Slug(company)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report %q: %w", company, err)
	}
	return decode([]byte(body))
}

// List returns every stored company, ordered by slug.
func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.list)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	companies := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
