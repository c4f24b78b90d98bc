package books

import "errors"

var (
	// ErrNoFile is returned when the upload carries no file or an empty filename.
	ErrNoFile = errors.New("no file selected")
	// ErrInvalidExtension is returned for extensions outside the allow-list.
	ErrInvalidExtension = errors.New("invalid file type")
	// ErrFileTooLarge is returned when the upload exceeds the configured cap.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNotFound is returned by stores and repositories for unknown keys.
	ErrNotFound = errors.New("analysis not found")
)
