package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/3dmm/site/internal/metrics"
	"github.com/3dmm/site/internal/model"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS contacts (
		id               TEXT PRIMARY KEY,
		first_name       TEXT NOT NULL,
		last_name        TEXT NOT NULL,
		email            TEXT NOT NULL,
		subject          TEXT NOT NULL,
		message          TEXT NOT NULL,
		sign_up_for_news INTEGER NOT NULL DEFAULT 0,
		created_at       INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS contacts_created_at_idx ON contacts (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS newsletter (
		email         TEXT PRIMARY KEY,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		subscribed_at INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	)`,
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// SQLiteStore provides SQLite-backed persistence for local development.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (or creates) the database file at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.sqlDB.PingContext(ctx) }

func (s *SQLiteStore) Backend() string { return BackendSQLite }

func (s *SQLiteStore) Close(context.Context) error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) Contacts() ContactRepository { return &sqliteContactRepository{db: s.sqlDB} }

func (s *SQLiteStore) Newsletter() NewsletterRepository {
	return &sqliteNewsletterRepository{db: s.sqlDB}
}

type sqliteContactRepository struct {
	db *sql.DB
}

func (r *sqliteContactRepository) Insert(ctx context.Context, msg *model.ContactSubmission) error {
	defer metrics.ObserveStore(BackendSQLite, "insert", ContactsCollection, time.Now())

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, first_name, last_name, email, subject, message, sign_up_for_news, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, msg.FirstName, msg.LastName, msg.Email, msg.Subject, msg.Message, msg.SignUpForNews, toMillis(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	msg.ID = id
	return nil
}

func (r *sqliteContactRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.ContactSubmission, error) {
	defer metrics.ObserveStore(BackendSQLite, "list", ContactsCollection, time.Now())

	opts = opts.Normalize()
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, subject, message, sign_up_for_news, created_at
		 FROM contacts
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []*model.ContactSubmission
	for rows.Next() {
		var (
			m         model.ContactSubmission
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Subject, &m.Message, &m.SignUpForNews, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = fromMillis(createdAt)
		out = append(out, &m)
	}
	return out, rows.Err()
}

type sqliteNewsletterRepository struct {
	db *sql.DB
}

func (r *sqliteNewsletterRepository) Upsert(ctx context.Context, sub *model.NewsletterSubscriber) (bool, error) {
	defer metrics.ObserveStore(BackendSQLite, "upsert", NewsletterCollection, time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var subscribedAt int64
	err = tx.QueryRowContext(ctx, `SELECT subscribed_at FROM newsletter WHERE email = ?`, sub.Email).Scan(&subscribedAt)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return false, fmt.Errorf("lookup subscriber: %w", err)
	}
	if created {
		subscribedAt = toMillis(sub.SubscribedAt)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO newsletter (email, first_name, last_name, subscribed_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE
		    SET first_name = excluded.first_name,
		        last_name  = excluded.last_name,
		        updated_at = excluded.updated_at`,
		sub.Email, sub.FirstName, sub.LastName, subscribedAt, toMillis(sub.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("upsert subscriber: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit upsert: %w", err)
	}
	sub.SubscribedAt = fromMillis(subscribedAt)
	return created, nil
}

func (r *sqliteNewsletterRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.NewsletterSubscriber, error) {
	defer metrics.ObserveStore(BackendSQLite, "list", NewsletterCollection, time.Now())

	opts = opts.Normalize()
	rows, err := r.db.QueryContext(ctx,
		`SELECT email, first_name, last_name, subscribed_at, updated_at
		 FROM newsletter
		 ORDER BY updated_at DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []*model.NewsletterSubscriber
	for rows.Next() {
		var (
			s                       model.NewsletterSubscriber
			subscribedAt, updatedAt int64
		)
		if err := rows.Scan(&s.Email, &s.FirstName, &s.LastName, &subscribedAt, &updatedAt); err != nil {
			return nil, err
		}
		s.SubscribedAt = fromMillis(subscribedAt)
		s.UpdatedAt = fromMillis(updatedAt)
		out = append(out, &s)
	}
	return out, rows.Err()
}
