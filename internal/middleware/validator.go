package middleware

import (
	"fmt"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

// ValidateProjectID accepts only canonical UUIDs, the form ingestion generates.
// Anything else cannot name a stored record.
func ValidateProjectID(id string) error {
	if id == "" {
		return fmt.Errorf("project ID cannot be empty")
	}
	if len(id) != 36 {
		return fmt.Errorf("invalid project ID format")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid project ID format: %w", err)
	}
	return nil
}
