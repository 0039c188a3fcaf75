package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/socialcosmos/backend/internal/db"
	"github.com/socialcosmos/backend/internal/storage"
)

// PostgresDocumentStore keeps each collection document in one row of the
// collections table.
type PostgresDocumentStore struct {
	pool db.Pool
	now  func() time.Time
}

// NewPostgresDocumentStore constructs a collection backend backed by PostgreSQL.
func NewPostgresDocumentStore(pool db.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// Load fetches the stored document for collection.
func (s *PostgresDocumentStore) Load(ctx context.Context, collection string) ([]byte, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT document
        FROM collections
        WHERE name = $1
    `, collection)

	var document []byte
	if err := row.Scan(&document); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotExist
		}
		return nil, fmt.Errorf("select collection %s: %w", collection, err)
	}

	return document, nil
}

// Save replaces the stored document for collection.
func (s *PostgresDocumentStore) Save(ctx context.Context, collection string, document []byte) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO collections (name, document, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (name)
        DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
    `, collection, document, s.now())
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", collection, err)
	}

	return nil
}

var _ storage.Backend = (*PostgresDocumentStore)(nil)
