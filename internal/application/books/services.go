package books

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bryanwahyu/booklens/internal/application"
	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

// Service implements the upload / analyze / retrieve use-cases.
// It holds no mutable state of its own and is safe for concurrent use
// as long as the ports are.
type Service struct {
	Uploads domain.BlobStore
	Records domain.Repository
	Clock   application.Clock
}

//
// ==== USE CASES ====
//

// UploadCommand carries one submitted file and the submitter identity
type UploadCommand struct {
	UserName  string
	UserEmail string
	Filename  string
	Content   []byte
}

// UploadKey is the blob key of the raw upload: <id>_<sanitized-filename>
func UploadKey(id domain.ProjectID, filename string) string {
	return fmt.Sprintf("%s_%s", id, filename)
}

// Upload validates the file, stores it, analyzes it and persists the record.
// An analysis failure is not an error: the returned record is in the failed
// state and has been persisted like any other.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*domain.AnalysisRecord, error) {
	if err := domain.ValidateFilename(cmd.Filename); err != nil {
		return nil, err
	}

	id := domain.ProjectID(uuid.New().String())
	filename := domain.SanitizeFilename(cmd.Filename)
	key := UploadKey(id, filename)

	if err := s.Uploads.Put(ctx, key, cmd.Content); err != nil {
		return nil, fmt.Errorf("store upload %s: %w", key, err)
	}

	rec := s.analyze(ctx, id, key, filename, cmd)

	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode analysis %s: %w", id, err)
	}
	doc := &domain.Document{
		ProjectID: id,
		Status:    rec.Status,
		CreatedAt: rec.AnalysisDate,
		Body:      body,
	}
	if err := s.Records.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save analysis %s: %w", id, err)
	}
	return rec, nil
}

// analyze reads the stored upload back and builds the record for it
func (s *Service) analyze(ctx context.Context, id domain.ProjectID, key, filename string, cmd UploadCommand) *domain.AnalysisRecord {
	rec := &domain.AnalysisRecord{
		ProjectID:    id,
		UserName:     cmd.UserName,
		UserEmail:    cmd.UserEmail,
		Filename:     filename,
		AnalysisDate: s.Clock.Now(),
	}

	data, err := s.Uploads.Get(ctx, key)
	if err != nil {
		rec.Status = domain.StatusFailed
		rec.Error = err.Error()
		return rec
	}

	a := domain.Analyze(data)
	rec.Statistics = &a.Statistics
	rec.Metadata = &a.Metadata
	rec.ContentPreview = a.ContentPreview
	rec.Status = domain.StatusCompleted
	return rec
}

// Get loads and decodes one record
func (s *Service) Get(ctx context.Context, id domain.ProjectID) (*domain.AnalysisRecord, error) {
	doc, err := s.Records.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	var rec domain.AnalysisRecord
	if err := json.Unmarshal(doc.Body, &rec); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &rec, nil
}

// Document returns the stored JSON of one record, byte for byte
func (s *Service) Document(ctx context.Context, id domain.ProjectID) ([]byte, error) {
	doc, err := s.Records.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}
