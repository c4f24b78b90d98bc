package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

// Schema for the analysis documents. document is LONGTEXT, not JSON:
// the JSON column type would reformat the stored bytes.
const Schema = `
CREATE TABLE IF NOT EXISTS book_analysis (
  project_id VARCHAR(64)  NOT NULL PRIMARY KEY,
  status     VARCHAR(16)  NOT NULL,
  document   LONGTEXT     NOT NULL,
  created_at DATETIME(6)  NOT NULL,
  INDEX idx_book_analysis_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// EnsureSchema creates the table when missing
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

// Save inserts a record document. Records are never updated, so a
// duplicate id is an error.
func (r *RecordRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO book_analysis (project_id, status, document, created_at)
VALUES (?,?,?,?);`
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, d.ProjectID, d.Status, string(d.Body), createdAt.UTC())
	return err
}

func (r *RecordRepository) Find(ctx context.Context, id domain.ProjectID) (*domain.Document, error) {
	const q = `
SELECT project_id, status, document, created_at
FROM book_analysis
WHERE project_id=?
LIMIT 1;`
	var d domain.Document
	var body string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ProjectID, &d.Status, &body, &d.CreatedAt); err != nil {
		return nil, notFound(id, err)
	}
	d.Body = []byte(body)
	return &d, nil
}
