package pipeline

import "errors"

// Classified pipeline errors. Callers branch on these with errors.Is; none of
// them should ever surface as a panic.
var (
	// ErrUnsupportedDocumentType means no strategy claims the document.
	// Non-fatal, surfaced for manual routing.
	ErrUnsupportedDocumentType = errors.New("unsupported document type")

	// ErrSourceUnavailable means the document bytes could not be fetched.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrExtractionFailed means a strategy ran but yielded no usable data.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrValidationFailed means the mapped record failed required-field
	// validation outright.
	ErrValidationFailed = errors.New("record validation failed")

	// ErrConfiguration means a configuration problem that halts processing.
	// The only fatal class in the taxonomy.
	ErrConfiguration = errors.New("configuration error")
)
