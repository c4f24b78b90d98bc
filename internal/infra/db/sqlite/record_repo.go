package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

// Schema for the analysis documents. created_at is RFC 3339 text in UTC.
const Schema = `
CREATE TABLE IF NOT EXISTS book_analysis (
	project_id TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	document   TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_analysis_created ON book_analysis(created_at);
`

// RecordRepository stores analysis documents in a local SQLite file.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Save inserts a record document.
func (r *RecordRepository) Save(ctx context.Context, d *domain.Document) error {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO book_analysis (project_id, status, document, created_at) VALUES (?, ?, ?, ?)`,
		string(d.ProjectID), string(d.Status), string(d.Body), createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert analysis %s: %w", d.ProjectID, err)
	}
	return nil
}

// Find returns the document for id, or domain.ErrNotFound.
func (r *RecordRepository) Find(ctx context.Context, id domain.ProjectID) (*domain.Document, error) {
	var status, body, created string
	err := r.db.QueryRowContext(ctx,
		`SELECT status, document, created_at FROM book_analysis WHERE project_id = ?`,
		string(id),
	).Scan(&status, &body, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis %s: %w", id, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return &domain.Document{
		ProjectID: id,
		Status:    domain.Status(status),
		CreatedAt: createdAt,
		Body:      []byte(body),
	}, nil
}
