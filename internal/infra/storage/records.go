package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

const analysisSuffix = "_analysis.json"

// RecordRepository persists analysis documents as <id>_analysis.json blobs
type RecordRepository struct {
	blobs domain.BlobStore
}

func NewRecordRepository(blobs domain.BlobStore) *RecordRepository {
	return &RecordRepository{blobs: blobs}
}

// AnalysisKey is the blob key of a record document
func AnalysisKey(id domain.ProjectID) string {
	return string(id) + analysisSuffix
}

func (r *RecordRepository) Save(ctx context.Context, d *domain.Document) error {
	return r.blobs.Put(ctx, AnalysisKey(d.ProjectID), d.Body)
}

func (r *RecordRepository) Find(ctx context.Context, id domain.ProjectID) (*domain.Document, error) {
	body, err := r.blobs.Get(ctx, AnalysisKey(id))
	if err != nil {
		return nil, err
	}

	// only the indexed columns; the body is returned untouched
	var head struct {
		Status       domain.Status `json:"analysis_status"`
		AnalysisDate time.Time     `json:"analysis_date"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("decode %s: %w", AnalysisKey(id), err)
	}
	return &domain.Document{
		ProjectID: id,
		Status:    head.Status,
		CreatedAt: head.AnalysisDate,
		Body:      body,
	}, nil
}
