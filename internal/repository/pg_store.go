package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/3dmm/site/internal/metrics"
	"github.com/3dmm/site/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the PostgreSQL implementation of Store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps an open pool. The schema comes from cmd/migrate.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

var _ Store = (*PgStore)(nil)

func (s *PgStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PgStore) Backend() string { return BackendPostgres }

func (s *PgStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func (s *PgStore) Contacts() ContactRepository {
	return &PgContactRepository{pool: s.pool}
}

func (s *PgStore) Newsletter() NewsletterRepository {
	return &PgNewsletterRepository{pool: s.pool}
}

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Insert adds a contacts row with a client-generated UUID.
func (r *PgContactRepository) Insert(ctx context.Context, msg *model.ContactSubmission) error {
	defer metrics.ObserveStore(BackendPostgres, "insert", ContactsCollection, time.Now())

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contacts (id, first_name, last_name, email, subject, message, sign_up_for_news, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, msg.FirstName, msg.LastName, msg.Email, msg.Subject, msg.Message, msg.SignUpForNews, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	msg.ID = id
	return nil
}

// List returns contacts newest first.
func (r *PgContactRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.ContactSubmission, error) {
	defer metrics.ObserveStore(BackendPostgres, "list", ContactsCollection, time.Now())

	opts = opts.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, email, subject, message, sign_up_for_news, created_at
		 FROM contacts
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []*model.ContactSubmission
	for rows.Next() {
		var m model.ContactSubmission
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Subject, &m.Message, &m.SignUpForNews, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// PgNewsletterRepository is the PostgreSQL implementation of NewsletterRepository.
type PgNewsletterRepository struct {
	pool *pgxpool.Pool
}

var _ NewsletterRepository = (*PgNewsletterRepository)(nil)

// Upsert relies on the newsletter email primary key. xmax = 0 on the returned
// row means the row was freshly inserted.
func (r *PgNewsletterRepository) Upsert(ctx context.Context, sub *model.NewsletterSubscriber) (bool, error) {
	defer metrics.ObserveStore(BackendPostgres, "upsert", NewsletterCollection, time.Now())

	var created bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO newsletter (email, first_name, last_name, subscribed_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE
		    SET first_name = EXCLUDED.first_name,
		        last_name  = EXCLUDED.last_name,
		        updated_at = EXCLUDED.updated_at
		 RETURNING subscribed_at, (xmax = 0)`,
		sub.Email, sub.FirstName, sub.LastName, sub.SubscribedAt, sub.UpdatedAt,
	).Scan(&sub.SubscribedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert subscriber: %w", err)
	}
	return created, nil
}

// List returns subscribers most recently updated first.
func (r *PgNewsletterRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.NewsletterSubscriber, error) {
	defer metrics.ObserveStore(BackendPostgres, "list", NewsletterCollection, time.Now())

	opts = opts.Normalize()
	rows, err := r.pool.Query(ctx,
		`SELECT email, first_name, last_name, subscribed_at, updated_at
		 FROM newsletter
		 ORDER BY updated_at DESC
		 LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []*model.NewsletterSubscriber
	for rows.Next() {
		var s model.NewsletterSubscriber
		if err := rows.Scan(&s.Email, &s.FirstName, &s.LastName, &s.SubscribedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
