package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend names reported by Store.Backend.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// BackendFor returns the backend a connection string routes to, or "" when the
// scheme is not recognised.
func BackendFor(rawURL string) string {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	switch {
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return BackendMongo
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return BackendPostgres
	case strings.HasPrefix(lower, "sqlite://"):
		return BackendSQLite
	default:
		return ""
	}
}

// Open connects to the store named by rawURL. dbName selects the Mongo
// database and is ignored by the SQL backends.
func Open(ctx context.Context, rawURL, dbName string) (Store, error) {
	switch BackendFor(rawURL) {
	case BackendMongo:
		return OpenMongo(ctx, rawURL, dbName)
	case BackendPostgres:
		pool, err := NewPool(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return NewPgStore(pool), nil
	case BackendSQLite:
		return OpenSQLite(ctx, sqlitePath(rawURL))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, redact(rawURL))
	}
}

// indexer is implemented by stores whose indexes are managed from code.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes the store relies on, such as the unique
// newsletter email index on Mongo. Stores whose schema is applied elsewhere
// (Postgres migrations, SQLite on open) are left untouched.
func EnsureIndexes(ctx context.Context, s Store) error {
	ix, ok := s.(indexer)
	if !ok {
		return nil
	}
	return ix.EnsureIndexes(ctx)
}

// NewPool は PostgreSQL 接続プールを生成する
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

func sqlitePath(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	return trimmed[len("sqlite://"):]
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(rawURL string) string {
	if i := strings.Index(rawURL, "://"); i >= 0 {
		return rawURL[:i+3] + "…"
	}
	if len(rawURL) > 8 {
		return rawURL[:8] + "…"
	}
	return rawURL
}
