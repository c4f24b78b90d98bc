package postgres

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

// Schema keeps the document as TEXT; jsonb would not preserve the bytes.
const Schema = `
CREATE TABLE IF NOT EXISTS book_analysis (
  project_id TEXT PRIMARY KEY,
  status     TEXT NOT NULL,
  document   TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_analysis_created ON book_analysis (created_at);`

type RecordRepository struct {
    db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
    return &RecordRepository{db: db}
}

func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
    _, err := r.db.ExecContext(ctx, Schema)
    return err
}

// Save inserts a record document
func (r *RecordRepository) Save(ctx context.Context, d *domain.Document) error {
    const q = `
INSERT INTO book_analysis (project_id, status, document, created_at)
VALUES ($1,$2,$3,$4);`
    createdAt := d.CreatedAt
    if createdAt.IsZero() { createdAt = time.Now() }
    _, err := r.db.ExecContext(ctx, q, d.ProjectID, d.Status, string(d.Body), createdAt)
    return err
}

// Find by project id
func (r *RecordRepository) Find(ctx context.Context, id domain.ProjectID) (*domain.Document, error) {
    const q = `
SELECT project_id, status, document, created_at
FROM book_analysis
WHERE project_id=$1
LIMIT 1;`
    var d domain.Document
    var body string
    if err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ProjectID, &d.Status, &body, &d.CreatedAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
        }
        return nil, err
    }
    d.Body = []byte(body)
    return &d, nil
}
