package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/core"
	"github.com/markdave123-py/docqa/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var _ core.DbClient = (*DatabaseClient)(nil)

// DatabaseClient is the relational document store, on Postgres (pgx) or SQLite.
type DatabaseClient struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.DBDriver {
	case DriverPostgres:
		dsn, derr := postgresDSN(cfg.DatabaseURL, cfg.SslCertPath)
		if derr != nil {
			return nil, derr
		}
		db, err = sql.Open("pgx", dsn)
	case DriverSQLite:
		db, err = sql.Open("sqlite", cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.DBDriver == DriverSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	return Open(ctx, db, cfg.DBDriver)
}

// Open pings db and bootstraps the schema.
func Open(ctx context.Context, db *sql.DB, driver string) (*DatabaseClient, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db, driver: driver, now: time.Now}, nil
}

// postgresDSN appends verify-ca SSL params when a root certificate is configured.
func postgresDSN(raw, sslCertPath string) (string, error) {
	if sslCertPath == "" {
		return raw, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// CreateDocument inserts doc and fills in its ID and CreatedAt.
func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = c.now().UTC()
	}

	const q = `
		INSERT INTO documents (title, content, file_path, summary, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := c.db.QueryRowContext(ctx, rebind(c.driver, q),
		doc.Title, doc.Content, doc.FilePath, nullString(doc.Summary), doc.OwnerID, doc.CreatedAt,
	).Scan(&doc.ID)
	if err != nil {
		return &core.StorageError{Op: "create document", Err: err}
	}
	return nil
}

func (c *DatabaseClient) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	const q = `
		SELECT id, title, content, file_path, summary, owner_id, created_at
		FROM documents
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := c.db.QueryContext(ctx, rebind(c.driver, q), ownerID)
	if err != nil {
		return nil, &core.StorageError{Op: "list documents", Err: err}
	}
	defer rows.Close()

	out := []models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, &core.StorageError{Op: "list documents", Err: err}
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "list documents", Err: err}
	}
	return out, nil
}

func (c *DatabaseClient) GetDocumentByIDAndOwner(ctx context.Context, id int64, ownerID string) (*models.Document, error) {
	const q = `
		SELECT id, title, content, file_path, summary, owner_id, created_at
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`
	d, err := scanDocument(c.db.QueryRowContext(ctx, rebind(c.driver, q), id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, &core.StorageError{Op: "get document", Err: err}
	}
	return d, nil
}

func (c *DatabaseClient) DeleteDocument(ctx context.Context, id int64, ownerID string) error {
	const q = `DELETE FROM documents WHERE id = $1 AND owner_id = $2`

	res, err := c.db.ExecContext(ctx, rebind(c.driver, q), id, ownerID)
	if err != nil {
		return &core.StorageError{Op: "delete document", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &core.StorageError{Op: "delete document", Err: err}
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		d       models.Document
		summary sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Title, &d.Content, &d.FilePath, &summary, &d.OwnerID, &d.CreatedAt); err != nil {
		return nil, err
	}
	if summary.Valid {
		s := summary.String
		d.Summary = &s
	}
	return &d, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// rebind rewrites $1, $2, ... placeholders to ? for SQLite. Queries must use
// each placeholder once, in ascending order.
func rebind(driver, query string) string {
	if driver != DriverSQLite {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				b.WriteByte('?')
				i = j - 1
				continue
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
