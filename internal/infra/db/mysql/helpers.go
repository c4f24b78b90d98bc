package mysql

import (
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/booklens/internal/domain/books"
)

// notFound maps sql.ErrNoRows to the domain error
func notFound(id domain.ProjectID, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	return err
}
