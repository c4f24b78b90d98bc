package books

import "time"

// ProjectID identifies one upload and its analysis record
type ProjectID string

// Status enum
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Statistics value object, derived from the decoded text
type Statistics struct {
	WordCount                   int     `json:"word_count"`
	CharacterCount              int     `json:"character_count"`
	LineCount                   int     `json:"line_count"`
	EstimatedReadingTimeMinutes float64 `json:"estimated_reading_time_minutes"`
	EstimatedReadingTimeHours   float64 `json:"estimated_reading_time_hours"`
}

// Metadata holds best-effort guesses; Unknown when nothing matched.
type Metadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// AnalysisRecord is the persisted result of one upload.
// Statistics, Metadata and ContentPreview are only set when Status is completed;
// Error is only set when Status is failed.
type AnalysisRecord struct {
	ProjectID      ProjectID   `json:"project_id"`
	UserName       string      `json:"user_name"`
	UserEmail      string      `json:"user_email"`
	Filename       string      `json:"filename"`
	AnalysisDate   time.Time   `json:"analysis_date"`
	Statistics     *Statistics `json:"statistics,omitempty"`
	Metadata       *Metadata   `json:"metadata,omitempty"`
	ContentPreview string      `json:"content_preview,omitempty"`
	Status         Status      `json:"analysis_status"`
	Error          string      `json:"error,omitempty"`
}

// Failed reports whether the analysis ended in the failed state
func (r *AnalysisRecord) Failed() bool { return r.Status == StatusFailed }

// Document is the stored form of a record: its JSON encoding plus the
// columns repositories index on.
type Document struct {
	ProjectID ProjectID
	Status    Status
	CreatedAt time.Time
	Body      []byte
}
